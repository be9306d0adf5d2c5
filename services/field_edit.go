package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"profile-editor/models"
)

// FieldEditController owns the single edit session of a profile screen.
type FieldEditController struct {
	view     *ProfileView
	records  RecordClient
	notifier Notifier
	logger   *zap.Logger
	policy   models.CommitPolicy
	timeout  time.Duration
}

func NewFieldEditController(view *ProfileView, records RecordClient, notifier Notifier, logger *zap.Logger, policy models.CommitPolicy, timeout time.Duration) *FieldEditController {
	if policy == "" {
		policy = models.CommitOptimistic
	}
	return &FieldEditController{
		view:     view,
		records:  records,
		notifier: notifier,
		logger:   logger,
		policy:   policy,
		timeout:  timeout,
	}
}

func (c *FieldEditController) Policy() models.CommitPolicy {
	return c.policy
}

// BeginEdit opens field for editing, dropping any other field's draft.
func (c *FieldEditController) BeginEdit(field models.Field, current string) error {
	if !field.Editable() {
		return ErrFieldNotEditable
	}
	c.view.setSession(&models.EditSession{Field: field, Draft: current})
	return nil
}

func (c *FieldEditController) UpdateDraft(value string) {
	c.view.updateDraft(value)
}

func (c *FieldEditController) Cancel() {
	c.view.setSession(nil)
}

// Commit writes the draft of field to the record. The session is cleared
// whatever the remote outcome. Under CommitOptimistic the draft is merged
// into the view before the write and stays there if the write fails.
func (c *FieldEditController) Commit(ctx context.Context, field models.Field) error {
	session, ok := c.view.currentSession()
	if !ok {
		return ErrNoEditSession
	}
	if session.Field != field {
		return ErrEditSessionMismatch
	}
	id, ok := c.view.recordID()
	if !ok {
		return ErrNotHydrated
	}
	defer c.view.setSession(nil)

	if c.policy == models.CommitOptimistic {
		c.view.mergeField(field, session.Draft)
	}

	callCtx, cancel := callTimeout(ctx, c.timeout)
	defer cancel()

	err := c.records.UpdateRecord(callCtx, id, models.Patch{field: session.Draft})
	if err != nil {
		c.logger.Error("failed to update profile field",
			zap.String("user_id", id),
			zap.String("field", string(field)),
			zap.String("policy", string(c.policy)),
			zap.Error(err),
		)
		c.notifier.Notify(failure(msgProfileFailed))
		return remoteErr(RemoteWriteFailure, "update "+string(field), err)
	}

	if c.policy == models.CommitConfirmed {
		c.view.mergeField(field, session.Draft)
	}
	c.logger.Info("profile field updated",
		zap.String("user_id", id),
		zap.String("field", string(field)),
	)
	c.notifier.Notify(success(msgProfileUpdated))
	return nil
}
