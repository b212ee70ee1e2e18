package service

import "github.com/wanderwise/wanderwise-backend/internal/app/model"

// ModerationNotifier receives committed moderation outcomes. Implementations
// must not block.
type ModerationNotifier interface {
	ModerationApplied(event model.ModerationEvent)
	NotifyAuthor(userID uint, notice model.ReviewStatusNotice)
}

type noopNotifier struct{}

func (noopNotifier) ModerationApplied(model.ModerationEvent)     {}
func (noopNotifier) NotifyAuthor(uint, model.ReviewStatusNotice) {}

// NoopNotifier discards every event.
func NoopNotifier() ModerationNotifier {
	return noopNotifier{}
}
