package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"profile-editor/models"
)

type ScreenConfig struct {
	CommitPolicy  models.CommitPolicy
	Timeout       time.Duration
	PrunePrevious bool
	Now           func() time.Time
}

// ProfileScreen is one mounted profile screen of an authenticated actor.
type ProfileScreen struct {
	ActorID string
	View    *ProfileView
	Fields  *FieldEditController
	Photo   *PhotoSyncController

	notes *NotificationBuffer
}

// Notifications returns and forgets everything emitted since the last call.
func (s *ProfileScreen) Notifications() []models.Notification {
	return s.notes.Drain()
}

// ScreenRegistry holds the mounted screens, one per actor.
type ScreenRegistry struct {
	records RecordClient
	assets  AssetStore
	logger  *zap.Logger
	cfg     ScreenConfig

	mu      sync.Mutex
	screens map[string]*ProfileScreen
}

func NewScreenRegistry(records RecordClient, assets AssetStore, logger *zap.Logger, cfg ScreenConfig) *ScreenRegistry {
	return &ScreenRegistry{
		records: records,
		assets:  assets,
		logger:  logger,
		cfg:     cfg,
		screens: make(map[string]*ProfileScreen),
	}
}

func (r *ScreenRegistry) newScreen(actorID string) *ProfileScreen {
	logger := r.logger.With(zap.String("actor_id", actorID))
	notes := &NotificationBuffer{}
	notifier := LogNotifier{Next: notes, Logger: logger}
	view := NewProfileView(r.records, logger, r.cfg.Timeout)

	return &ProfileScreen{
		ActorID: actorID,
		View:    view,
		Fields:  NewFieldEditController(view, r.records, notifier, logger, r.cfg.CommitPolicy, r.cfg.Timeout),
		Photo: NewPhotoSyncController(view, r.records, r.assets, notifier, logger, PhotoSyncOptions{
			Timeout:       r.cfg.Timeout,
			PrunePrevious: r.cfg.PrunePrevious,
			Now:           r.cfg.Now,
		}),
		notes: notes,
	}
}

// Mount replaces any screen of actorID with a fresh one and hydrates it.
// The screen stays mounted when hydration fails; its record is then nil.
func (r *ScreenRegistry) Mount(ctx context.Context, actorID string) (*ProfileScreen, error) {
	screen := r.newScreen(actorID)

	r.mu.Lock()
	r.screens[actorID] = screen
	r.mu.Unlock()

	return screen, screen.View.Hydrate(ctx, actorID)
}

func (r *ScreenRegistry) Get(actorID string) (*ProfileScreen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	screen, ok := r.screens[actorID]
	if !ok {
		return nil, ErrScreenNotMounted
	}
	return screen, nil
}

// Unmount drops the screen of actorID and reports whether one existed.
func (r *ScreenRegistry) Unmount(actorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.screens[actorID]
	delete(r.screens, actorID)
	return ok
}
