package model

import "time"

const (
	EventReviewModerated = "review.moderated"
	EventReviewStatus    = "review.status"
)

// ModerationEvent is broadcast to connected admins after a moderation
// transaction commits.
type ModerationEvent struct {
	Type       string       `json:"type"`
	Action     string       `json:"action"`
	ReviewIDs  []uint       `json:"review_ids"`
	Status     ReviewStatus `json:"status"`
	ActorID    uint         `json:"actor_id"`
	ActorName  string       `json:"actor_name"`
	AuditLogID uint         `json:"audit_log_id"`
	At         time.Time    `json:"at"`
}

// ReviewStatusNotice is sent to a review's author when its status changes.
type ReviewStatusNotice struct {
	Type           string         `json:"type"`
	ReviewID       uint           `json:"review_id"`
	ReviewableType ReviewableType `json:"reviewable_type"`
	ReviewableID   uint           `json:"reviewable_id"`
	Status         ReviewStatus   `json:"status"`
	At             time.Time      `json:"at"`
}
