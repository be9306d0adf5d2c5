package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"profile-editor/models"
	"profile-editor/utils"
)

// PhotoSyncController moves the profile photo between the picker, the asset
// store and the record. Photo changes always use CommitConfirmed: the view
// only sees a new locator once the record points at it.
type PhotoSyncController struct {
	view          *ProfileView
	records       RecordClient
	assets        AssetStore
	notifier      Notifier
	logger        *zap.Logger
	timeout       time.Duration
	prunePrevious bool
	now           func() time.Time
}

type PhotoSyncOptions struct {
	Timeout time.Duration
	// PrunePrevious deletes the replaced object after a successful upload.
	// Off by default, so earlier uploads stay in the asset store.
	PrunePrevious bool
	Now           func() time.Time
}

func NewPhotoSyncController(view *ProfileView, records RecordClient, assets AssetStore, notifier Notifier, logger *zap.Logger, opts PhotoSyncOptions) *PhotoSyncController {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &PhotoSyncController{
		view:          view,
		records:       records,
		assets:        assets,
		notifier:      notifier,
		logger:        logger,
		timeout:       opts.Timeout,
		prunePrevious: opts.PrunePrevious,
		now:           now,
	}
}

func (c *PhotoSyncController) Policy() models.CommitPolicy {
	return models.CommitConfirmed
}

// Upload picks an image, stores it, links its public locator to the record
// and finally shows it in the view. Nothing is rolled back on failure.
func (c *PhotoSyncController) Upload(ctx context.Context, picker ImagePicker) error {
	id, ok := c.view.recordID()
	if !ok {
		return ErrNotHydrated
	}
	if !c.view.acquirePhoto() {
		return ErrPipelineBusy
	}
	defer c.view.releasePhoto()

	picked, err := picker.PickImage(ctx)
	if err != nil {
		c.logger.Error("image picker failed", zap.String("user_id", id), zap.Error(err))
		c.notifier.Notify(failure(msgPhotoFailed))
		return fmt.Errorf("pick image: %w", err)
	}
	if picked.Cancelled || len(picked.Data) == 0 {
		c.notifier.Notify(models.Notification{Kind: models.NotificationInfo, Message: msgNoImageSelected})
		return nil
	}

	asset := models.PhotoAsset{
		Name:     utils.PhotoObjectName(id, c.now(), picked.FileName),
		MimeType: utils.MimeType(picked.FileName),
		Data:     picked.Data,
	}
	previous, hadPrevious := c.view.photoURL()

	c.view.setUploading(true)
	defer c.view.setUploading(false)

	c.logger.Info("uploading profile photo",
		zap.String("user_id", id),
		zap.String("object", asset.Name),
		zap.String("mime_type", asset.MimeType),
		zap.Int("size", len(asset.Data)),
	)

	locator, err := c.publish(ctx, id, asset)
	if err != nil {
		c.logger.Error("failed to upload profile photo",
			zap.String("user_id", id),
			zap.String("object", asset.Name),
			zap.Error(err),
		)
		c.notifier.Notify(failure(msgPhotoFailed))
		return err
	}

	c.view.setPhotoURL(&locator)
	c.notifier.Notify(success(msgPhotoUpdated))

	if c.prunePrevious && hadPrevious && previous != locator {
		c.prune(ctx, id, previous)
	}
	return nil
}

func (c *PhotoSyncController) publish(ctx context.Context, id string, asset models.PhotoAsset) (string, error) {
	putCtx, cancel := callTimeout(ctx, c.timeout)
	err := c.assets.PutObject(putCtx, asset.Name, asset.Data, asset.MimeType)
	cancel()
	if err != nil {
		return "", remoteErr(RemoteUploadFailure, "put object", err)
	}

	locCtx, cancel := callTimeout(ctx, c.timeout)
	locator, err := c.assets.GetPublicLocator(locCtx, asset.Name)
	cancel()
	if err != nil {
		return "", remoteErr(RemoteUploadFailure, "public locator", err)
	}

	updCtx, cancel := callTimeout(ctx, c.timeout)
	err = c.records.UpdateRecord(updCtx, id, models.Patch{models.FieldPhotoURL: locator})
	cancel()
	if err != nil {
		return "", remoteErr(RemoteWriteFailure, "link photo", err)
	}
	return locator, nil
}

func (c *PhotoSyncController) prune(ctx context.Context, id, previous string) {
	name := utils.ObjectNameFromLocator(previous)
	if name == "" {
		return
	}
	callCtx, cancel := callTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.assets.DeleteObject(callCtx, name); err != nil {
		c.logger.Warn("failed to delete previous profile photo",
			zap.String("user_id", id),
			zap.String("object", name),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("previous profile photo deleted", zap.String("user_id", id), zap.String("object", name))
}

// Delete removes the current photo from the asset store and unlinks it from
// the record. Without a current photo it does nothing.
func (c *PhotoSyncController) Delete(ctx context.Context) error {
	locator, ok := c.view.photoURL()
	if !ok {
		return nil
	}
	id, _ := c.view.recordID()
	if !c.view.acquirePhoto() {
		return ErrPipelineBusy
	}
	defer c.view.releasePhoto()

	name := utils.ObjectNameFromLocator(locator)

	delCtx, cancel := callTimeout(ctx, c.timeout)
	err := c.assets.DeleteObject(delCtx, name)
	cancel()
	if err != nil {
		c.logger.Error("failed to delete profile photo object",
			zap.String("user_id", id),
			zap.String("object", name),
			zap.Error(err),
		)
		c.notifier.Notify(failure(msgPhotoDelFailed))
		return remoteErr(RemoteUploadFailure, "delete object", err)
	}

	updCtx, cancel := callTimeout(ctx, c.timeout)
	err = c.records.UpdateRecord(updCtx, id, models.Patch{models.FieldPhotoURL: nil})
	cancel()
	if err != nil {
		c.logger.Error("failed to unlink profile photo",
			zap.String("user_id", id),
			zap.Error(err),
		)
		c.notifier.Notify(failure(msgPhotoDelFailed))
		return remoteErr(RemoteWriteFailure, "unlink photo", err)
	}

	c.view.setPhotoURL(nil)
	c.logger.Info("profile photo deleted", zap.String("user_id", id), zap.String("object", name))
	c.notifier.Notify(success(msgPhotoDeleted))
	return nil
}
