package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"profile-editor/models"
)

// ProfileView is the in-memory projection of one user record plus the
// transient flags of the profile screen. The mutex is never held across a
// remote call.
type ProfileView struct {
	records RecordClient
	logger  *zap.Logger
	timeout time.Duration

	mu        sync.Mutex
	record    *models.UserRecord
	loading   bool
	uploading bool
	session   *models.EditSession
	photoBusy bool
}

func NewProfileView(records RecordClient, logger *zap.Logger, timeout time.Duration) *ProfileView {
	return &ProfileView{
		records: records,
		logger:  logger,
		timeout: timeout,
		loading: true,
	}
}

// Hydrate loads the record of actorID. Without an actor nothing happens and
// loading keeps its initial value.
func (v *ProfileView) Hydrate(ctx context.Context, actorID string) error {
	if actorID == "" {
		return nil
	}

	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.loading = false
		v.mu.Unlock()
	}()

	callCtx, cancel := callTimeout(ctx, v.timeout)
	defer cancel()

	record, err := v.records.FetchRecord(callCtx, actorID)
	if err == nil && record == nil {
		err = errors.New("record not found")
	}
	if err != nil {
		v.logger.Error("failed to fetch user record",
			zap.String("user_id", actorID),
			zap.Error(err),
		)
		v.mu.Lock()
		v.record = nil
		v.mu.Unlock()
		return remoteErr(HydrationFailure, "fetch record", err)
	}

	v.mu.Lock()
	v.record = record.Clone()
	v.mu.Unlock()
	return nil
}

func (v *ProfileView) Snapshot() models.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := models.ViewState{
		Record:    v.record.Clone(),
		Loading:   v.loading,
		Uploading: v.uploading,
		Fields:    models.DisplayFields,
	}
	if v.session != nil {
		s := *v.session
		state.Editing = &s
	}
	return state
}

func (v *ProfileView) recordID() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.record == nil {
		return "", false
	}
	return v.record.ID, true
}

func (v *ProfileView) photoURL() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.record == nil {
		return "", false
	}
	return v.record.PhotoURL()
}

func (v *ProfileView) mergeField(f models.Field, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.record != nil {
		v.record.Set(f, value)
	}
}

func (v *ProfileView) setPhotoURL(url *string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.record != nil {
		v.record.ProfilePhotoURL = url
	}
}

func (v *ProfileView) setUploading(on bool) {
	v.mu.Lock()
	v.uploading = on
	v.mu.Unlock()
}

func (v *ProfileView) setSession(s *models.EditSession) {
	v.mu.Lock()
	v.session = s
	v.mu.Unlock()
}

// updateDraft reports false when no session is active.
func (v *ProfileView) updateDraft(value string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil {
		return false
	}
	v.session.Draft = value
	return true
}

func (v *ProfileView) currentSession() (models.EditSession, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil {
		return models.EditSession{}, false
	}
	return *v.session, true
}

// acquirePhoto takes the in-flight token shared by upload and delete.
func (v *ProfileView) acquirePhoto() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.photoBusy {
		return false
	}
	v.photoBusy = true
	return true
}

func (v *ProfileView) releasePhoto() {
	v.mu.Lock()
	v.photoBusy = false
	v.mu.Unlock()
}
