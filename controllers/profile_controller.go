package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profile-editor/middleware"
	"profile-editor/models"
	"profile-editor/services"
)

var errPhotoTooLarge = errors.New("photo exceeds maximum upload size")

// multipartOverhead is the room left for boundaries and part headers on top
// of the photo size limit.
const multipartOverhead = 64 << 10

type ProfileController struct {
	screens       *services.ScreenRegistry
	maxUploadSize int64
	logger        *zap.Logger
}

func NewProfileController(screens *services.ScreenRegistry, maxUploadSize int64, logger *zap.Logger) *ProfileController {
	return &ProfileController{
		screens:       screens,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// formFilePicker serves the "photo" part of a multipart request as the
// picked image. A request without that part counts as a cancelled pick.
type formFilePicker struct {
	c       *gin.Context
	field   string
	maxSize int64
}

func (p formFilePicker) PickImage(_ context.Context) (models.PickedImage, error) {
	header, err := p.c.FormFile(p.field)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return models.PickedImage{}, errPhotoTooLarge
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) || (err == nil && header == nil) {
		return models.PickedImage{Cancelled: true}, nil
	}
	if err != nil {
		return models.PickedImage{}, fmt.Errorf("read form file: %w", err)
	}
	if p.maxSize > 0 && header.Size > p.maxSize {
		return models.PickedImage{}, errPhotoTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return models.PickedImage{}, fmt.Errorf("open form file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.PickedImage{}, fmt.Errorf("read form file: %w", err)
	}
	return models.PickedImage{FileName: header.Filename, Data: data}, nil
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrFieldNotEditable):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrScreenNotMounted):
		return http.StatusNotFound
	case errors.Is(err, errPhotoTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrNoEditSession),
		errors.Is(err, services.ErrEditSessionMismatch),
		errors.Is(err, services.ErrNotHydrated),
		errors.Is(err, services.ErrPipelineBusy):
		return http.StatusConflict
	}
	if _, ok := services.KindOf(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (ctrl *ProfileController) respond(c *gin.Context, screen *services.ProfileScreen, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		ctrl.logger.Error("profile screen request failed",
			zap.String("actor_id", screen.ActorID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	state := screen.View.Snapshot()
	resp := models.ScreenResponse{
		Success:       err == nil,
		Message:       message,
		Notifications: screen.Notifications(),
		Data:          &state,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}

func (ctrl *ProfileController) screen(c *gin.Context) (*services.ProfileScreen, bool) {
	screen, err := ctrl.screens.Get(c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(statusFor(err), models.ErrorResponse{
			Success: false,
			Message: "Profile screen not mounted",
			Error:   err.Error(),
		})
		return nil, false
	}
	return screen, true
}

// MountScreen godoc
// @Summary Mount profile screen
// @Description Create the profile screen state of the current user and load the user record
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ScreenResponse
// @Failure 502 {object} models.ScreenResponse
// @Router /profile/screen [post]
func (ctrl *ProfileController) MountScreen(c *gin.Context) {
	actorID := c.GetString(middleware.ContextUserID)
	if actorID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Unauthorized"})
		return
	}

	screen, err := ctrl.screens.Mount(c.Request.Context(), actorID)
	if err != nil {
		ctrl.respond(c, screen, "Failed to load profile", err)
		return
	}
	ctrl.respond(c, screen, "Profile loaded", nil)
}

// GetScreen godoc
// @Summary Get profile screen state
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ScreenResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/screen [get]
func (ctrl *ProfileController) GetScreen(c *gin.Context) {
	screen, ok := ctrl.screen(c)
	if !ok {
		return
	}
	ctrl.respond(c, screen, "Profile screen retrieved", nil)
}

// UnmountScreen godoc
// @Summary Unmount profile screen
// @Description Discard the profile screen state of the current user
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/screen [delete]
func (ctrl *ProfileController) UnmountScreen(c *gin.Context) {
	if !ctrl.screens.Unmount(c.GetString(middleware.ContextUserID)) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Profile screen not mounted"})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Profile screen closed"})
}

// BeginEdit godoc
// @Summary Start editing a field
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.BeginEditRequest true "Field and current value"
// @Success 200 {object} models.ScreenResponse
// @Failure 400 {object} models.ScreenResponse
// @Router /profile/screen/edit [post]
func (ctrl *ProfileController) BeginEdit(c *gin.Context) {
	screen, ok := ctrl.screen(c)
	if !ok {
		return
	}

	var req models.BeginEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	err := screen.Fields.BeginEdit(req.Field, req.Value)
	if err != nil {
		ctrl.respond(c, screen, "Field cannot be edited", err)
		return
	}
	ctrl.respond(c, screen, "Editing "+string(req.Field), nil)
}

// UpdateDraft godoc
// @Summary Update the pending value of the field being edited
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateDraftRequest true "Draft value"
// @Success 200 {object} models.ScreenResponse
// @Router /profile/screen/edit [patch]
func (ctrl *ProfileController) UpdateDraft(c *gin.Context) {
	screen, ok := ctrl.screen(c)
	if !ok {
		return
	}

	var req models.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	screen.Fields.UpdateDraft(req.Value)
	ctrl.respond(c, screen, "Draft updated", nil)
}

// CancelEdit godoc
// @Summary Cancel the current edit
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ScreenResponse
// @Router /profile/screen/edit [delete]
func (ctrl *ProfileController) CancelEdit(c *gin.Context) {
	screen, ok := ctrl.screen(c)
	if !ok {
		return
	}

	screen.Fields.Cancel()
	ctrl.respond(c, screen, "Edit cancelled", nil)
}

// CommitEdit godoc
// @Summary Save the field being edited
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CommitRequest true "Field to save"
// @Success 200 {object} models.ScreenResponse
// @Failure 409 {object} models.ScreenResponse
// @Failure 502 {object} models.ScreenResponse
// @Router /profile/screen/edit/commit [post]
func (ctrl *ProfileController) CommitEdit(c *gin.Context) {
	screen, ok := ctrl.screen(c)
	if !ok {
		return
	}

	var req models.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request body", Error: err.Error()})
		return
	}

	if err := screen.Fields.Commit(c.Request.Context(), req.Field); err != nil {
		ctrl.respond(c, screen, "Failed to update profile", err)
		return
	}
	ctrl.respond(c, screen, "Profile updated", nil)
}

// UploadPhoto godoc
// @Summary Upload profile photo
// @Description Store the photo, link its public URL to the user record and show it. A request without a photo is treated as a cancelled pick.
// @Tags Profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file false "Profile photo"
// @Success 200 {object} models.ScreenResponse
// @Failure 409 {object} models.ScreenResponse
// @Failure 413 {object} models.ScreenResponse
// @Failure 502 {object} models.ScreenResponse
// @Router /profile/screen/photo [post]
func (ctrl *ProfileController) UploadPhoto(c *gin.Context) {
	screen, ok := ctrl.screen(c)
	if !ok {
		return
	}

	if ctrl.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.maxUploadSize+multipartOverhead)
	}
	picker := formFilePicker{c: c, field: "photo", maxSize: ctrl.maxUploadSize}
	if err := screen.Photo.Upload(c.Request.Context(), picker); err != nil {
		ctrl.respond(c, screen, "Failed to upload profile picture", err)
		return
	}
	ctrl.respond(c, screen, "Profile picture processed", nil)
}

// DeletePhoto godoc
// @Summary Delete profile photo
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ScreenResponse
// @Failure 502 {object} models.ScreenResponse
// @Router /profile/screen/photo [delete]
func (ctrl *ProfileController) DeletePhoto(c *gin.Context) {
	screen, ok := ctrl.screen(c)
	if !ok {
		return
	}

	if err := screen.Photo.Delete(c.Request.Context()); err != nil {
		ctrl.respond(c, screen, "Failed to delete profile picture", err)
		return
	}
	ctrl.respond(c, screen, "Profile picture processed", nil)
}
