package service

import "errors"

var (
	ErrReviewNotFound        = errors.New("review not found")
	ErrInvalidRating         = errors.New("rating must be an integer between 1 and 5")
	ErrInvalidReviewable     = errors.New("reviewable_type must be destination, activity or accommodation and reviewable_id must be positive")
	ErrPublishedImmutable    = errors.New("published reviews cannot be edited")
	ErrNothingToUpdate       = errors.New("nothing to update")
	ErrNotReviewOwner        = errors.New("not allowed to edit this review")
	ErrCannotPublishRejected = errors.New("cannot publish a rejected review")
	ErrInvalidVote           = errors.New(`vote must be "up", "down" or "remove"`)
	ErrEmptyReply            = errors.New("reply content required")
	ErrInvalidBulkAction     = errors.New(`action must be "publish" or "reject"`)
	ErrEmptyBulkIDs          = errors.New("ids must be a non-empty array")
	ErrNoValidBulkIDs        = errors.New("no valid review ids supplied")
	ErrAuditLogNotFound      = errors.New("audit log not found")
	ErrInvalidDateFilter     = errors.New("date filters must be RFC3339 or YYYY-MM-DD")
	ErrInvalidExportFormat   = errors.New(`format must be "csv" or "xlsx"`)
	ErrInvalidStatusFilter   = errors.New("status must be one of draft, pending, published, rejected, hidden")
)
