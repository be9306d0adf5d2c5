package services

import (
	"sync"

	"go.uber.org/zap"

	"profile-editor/models"
)

type Notifier interface {
	Notify(n models.Notification)
}

// NotificationBuffer keeps notifications until the caller drains them.
type NotificationBuffer struct {
	mu    sync.Mutex
	items []models.Notification
}

func (b *NotificationBuffer) Notify(n models.Notification) {
	b.mu.Lock()
	b.items = append(b.items, n)
	b.mu.Unlock()
}

func (b *NotificationBuffer) Drain() []models.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	if out == nil {
		out = []models.Notification{}
	}
	return out
}

// LogNotifier records every notification before passing it on.
type LogNotifier struct {
	Next   Notifier
	Logger *zap.Logger
}

func (l LogNotifier) Notify(n models.Notification) {
	l.Logger.Debug("notification",
		zap.String("kind", string(n.Kind)),
		zap.String("message", n.Message),
	)
	if l.Next != nil {
		l.Next.Notify(n)
	}
}

func success(msg string) models.Notification {
	return models.Notification{Kind: models.NotificationSuccess, Message: msg}
}

func failure(msg string) models.Notification {
	return models.Notification{Kind: models.NotificationError, Message: msg}
}

const (
	msgProfileUpdated  = "Profile updated successfully!"
	msgProfileFailed   = "Failed to update profile."
	msgPhotoUpdated    = "Profile picture updated successfully!"
	msgPhotoFailed     = "Failed to upload profile picture."
	msgPhotoDeleted    = "Profile picture deleted successfully!"
	msgPhotoDelFailed  = "Failed to delete profile picture."
	msgNoImageSelected = "No image selected"
)
