package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/repository"
	"github.com/wanderwise/wanderwise-backend/internal/metrics"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	BulkActionPublish = "publish"
	BulkActionReject  = "reject"

	adminListDefaultLimit = 50
	adminListMaxLimit     = 200
)

// AdminReviewQuery is the moderation listing request as received from the
// client; ReviewableType is normalized by the service.
type AdminReviewQuery struct {
	Status         string
	ReviewableType string
	ReviewableID   uint
	Query          string
	SortBy         string
	SortOrder      string
	Page           int
	Limit          int
}

type BulkResult struct {
	Action          string                   `json:"-"`
	UpdatedCount    int                      `json:"updatedCount"`
	Reviews         []model.ReviewWithAuthor `json:"reviews"`
	SkippedRejected []uint                   `json:"skippedRejected,omitempty"`
	AuditLogID      uint                     `json:"-"`
}

type ModerationService interface {
	Publish(ctx context.Context, reviewID, actorID uint) (*model.ReviewWithAuthor, error)
	Reject(ctx context.Context, reviewID, actorID uint) (*model.ReviewWithAuthor, error)
	// Bulk applies action to every coercible id in rawIDs inside one
	// transaction and writes a single audit entry.
	Bulk(ctx context.Context, action string, rawIDs []interface{}, actorID uint) (*BulkResult, error)
	List(ctx context.Context, q AdminReviewQuery) ([]model.ReviewWithAuthor, model.Pagination, error)
}

type moderationService struct {
	db       *gorm.DB
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	audit    repository.AuditLogWriter
	notifier ModerationNotifier
}

func NewModerationService(
	db *gorm.DB,
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	audit repository.AuditLogWriter,
	notifier ModerationNotifier,
) ModerationService {
	if notifier == nil {
		notifier = NoopNotifier()
	}
	return &moderationService{
		db:       db,
		reviews:  reviews,
		users:    users,
		audit:    audit,
		notifier: notifier,
	}
}

// actor snapshots the acting user inside tx. A missing user still yields
// an audit row carrying the bare id.
func (s *moderationService) actor(ctx context.Context, tx *gorm.DB, actorID uint) (model.Actor, error) {
	user, err := s.users.WithTx(tx).FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Actor{ID: actorID}, nil
		}
		return model.Actor{}, err
	}
	return user.Actor(), nil
}

func (s *moderationService) Publish(ctx context.Context, reviewID, actorID uint) (*model.ReviewWithAuthor, error) {
	return s.setStatus(ctx, reviewID, actorID, model.ReviewStatusPublished, model.AuditActionPublish)
}

func (s *moderationService) Reject(ctx context.Context, reviewID, actorID uint) (*model.ReviewWithAuthor, error) {
	return s.setStatus(ctx, reviewID, actorID, model.ReviewStatusRejected, model.AuditActionReject)
}

func (s *moderationService) setStatus(ctx context.Context, reviewID, actorID uint, target model.ReviewStatus, action string) (*model.ReviewWithAuthor, error) {
	var (
		updated *model.ReviewWithAuthor
		actor   model.Actor
		entry   *model.AuditLog
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := s.reviews.WithTx(tx)

		review, err := reviews.FindByIDForUpdate(ctx, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		allowed := review.Status.CanReject()
		if target == model.ReviewStatusPublished {
			allowed = review.Status.CanPublish()
		}
		if !allowed {
			return ErrCannotPublishRejected
		}

		if _, err := reviews.UpdateStatus(ctx, []uint{reviewID}, target); err != nil {
			return err
		}

		actor, err = s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		entry, err = model.NewAuditLog(actor, action, []uint{reviewID}, review.ReviewableType, model.SingleActionDetails{Single: true})
		if err != nil {
			return err
		}
		if err := s.audit.Insert(ctx, tx, entry); err != nil {
			return err
		}

		updated, err = reviews.FindWithAuthor(ctx, reviewID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) || errors.Is(err, ErrCannotPublishRejected) {
			logger.Warn("Moderation refused", map[string]interface{}{
				"action":    action,
				"review_id": reviewID,
				"actor_id":  actorID,
				"reason":    err.Error(),
			})
		} else {
			logger.Error("Moderation transaction failed", err, map[string]interface{}{
				"action":    action,
				"review_id": reviewID,
				"actor_id":  actorID,
			})
		}
		return nil, err
	}

	logger.Info("Review moderated", map[string]interface{}{
		"action":       action,
		"review_id":    reviewID,
		"actor_id":     actorID,
		"audit_log_id": entry.ID,
	})
	s.announce(action, target, actor, entry.ID, []model.ReviewWithAuthor{*updated})
	return updated, nil
}

func (s *moderationService) Bulk(ctx context.Context, action string, rawIDs []interface{}, actorID uint) (*BulkResult, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action != BulkActionPublish && action != BulkActionReject {
		return nil, ErrInvalidBulkAction
	}
	if len(rawIDs) == 0 {
		return nil, ErrEmptyBulkIDs
	}
	ids := CoerceIDs(rawIDs)
	if len(ids) == 0 {
		return nil, ErrNoValidBulkIDs
	}

	target := model.ReviewStatusRejected
	auditAction := model.AuditActionBulkReject
	if action == BulkActionPublish {
		target = model.ReviewStatusPublished
		auditAction = model.AuditActionBulkPublish
	}

	result := &BulkResult{Action: action}
	var actor model.Actor

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := s.reviews.WithTx(tx)

		current, err := reviews.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		var details interface{}
		updateIDs := make([]uint, 0, len(current))
		if action == BulkActionPublish {
			skipped := make([]uint, 0)
			for _, r := range current {
				if r.Status.CanPublish() {
					updateIDs = append(updateIDs, r.ID)
				} else {
					skipped = append(skipped, r.ID)
				}
			}
			result.SkippedRejected = skipped
			details = model.BulkPublishDetails{Count: len(updateIDs), SkippedRejected: skipped}
		} else {
			types := make(map[string]int)
			for _, r := range current {
				updateIDs = append(updateIDs, r.ID)
				types[string(r.ReviewableType)]++
			}
			details = model.BulkRejectDetails{Count: len(updateIDs), Types: types}
		}

		if _, err := reviews.UpdateStatus(ctx, updateIDs, target); err != nil {
			return err
		}

		actor, err = s.actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		entry, err := model.NewAuditLog(actor, auditAction, updateIDs, "", details)
		if err != nil {
			return err
		}
		if err := s.audit.Insert(ctx, tx, entry); err != nil {
			return err
		}
		result.AuditLogID = entry.ID

		result.Reviews, err = reviews.FindWithAuthorByIDs(ctx, updateIDs)
		if err != nil {
			return err
		}
		result.UpdatedCount = len(updateIDs)
		return nil
	})
	if err != nil {
		logger.Error("Bulk moderation failed", err, map[string]interface{}{
			"action":   action,
			"ids":      ids,
			"actor_id": actorID,
		})
		return nil, err
	}

	logger.Info("Bulk moderation applied", map[string]interface{}{
		"action":           action,
		"updated_count":    result.UpdatedCount,
		"skipped_rejected": result.SkippedRejected,
		"actor_id":         actorID,
		"audit_log_id":     result.AuditLogID,
	})
	s.announce(auditAction, target, actor, result.AuditLogID, result.Reviews)
	return result, nil
}

// announce runs only after commit so listeners never see rolled-back work.
func (s *moderationService) announce(action string, status model.ReviewStatus, actor model.Actor, auditLogID uint, reviews []model.ReviewWithAuthor) {
	metrics.RecordModeration(action, len(reviews))

	now := time.Now().UTC()
	ids := make([]uint, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
		if r.UserID != nil {
			s.notifier.NotifyAuthor(*r.UserID, model.ReviewStatusNotice{
				Type:           model.EventReviewStatus,
				ReviewID:       r.ID,
				ReviewableType: r.ReviewableType,
				ReviewableID:   r.ReviewableID,
				Status:         status,
				At:             now,
			})
		}
	}

	s.notifier.ModerationApplied(model.ModerationEvent{
		Type:       model.EventReviewModerated,
		Action:     action,
		ReviewIDs:  ids,
		Status:     status,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		AuditLogID: auditLogID,
		At:         now,
	})
}

func (s *moderationService) List(ctx context.Context, q AdminReviewQuery) ([]model.ReviewWithAuthor, model.Pagination, error) {
	filter := repository.AdminReviewFilter{
		ReviewableID: q.ReviewableID,
		Query:        strings.TrimSpace(q.Query),
		SortBy:       q.SortBy,
		SortOrder:    q.SortOrder,
	}
	if q.Status != "" {
		status := model.ReviewStatus(strings.ToLower(strings.TrimSpace(q.Status)))
		if !status.Valid() {
			return nil, model.Pagination{}, ErrInvalidStatusFilter
		}
		filter.Status = status
	}
	if q.ReviewableType != "" {
		rt, ok := model.NormalizeReviewableType(q.ReviewableType)
		if !ok {
			return nil, model.Pagination{}, ErrInvalidReviewable
		}
		filter.ReviewableType = rt
	}

	page := model.NewPage(q.Page, q.Limit, adminListDefaultLimit, adminListMaxLimit)
	rows, total, err := s.reviews.ListAdmin(ctx, filter, page)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return rows, model.NewPagination(page, total), nil
}

// CoerceIDs converts decoded JSON values (numbers or numeric strings) to
// positive ids, dropping everything else and duplicates. Order is kept.
func CoerceIDs(raw []interface{}) []uint {
	seen := make(map[uint]struct{}, len(raw))
	out := make([]uint, 0, len(raw))
	for _, v := range raw {
		id, ok := coerceID(v)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func coerceID(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case float64:
		if n < 1 || n != math.Trunc(n) || n > math.MaxUint32 {
			return 0, false
		}
		return uint(n), true
	case int:
		if n < 1 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, n > 0
	case json.Number:
		return parseID(n.String())
	case string:
		return parseID(n)
	}
	return 0, false
}

func parseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
