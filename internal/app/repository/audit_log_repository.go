package repository

import (
	"context"
	"time"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
	"gorm.io/gorm"
)

// AuditLogFilter holds the optional filters shared by listing and export.
type AuditLogFilter struct {
	Action         string
	ReviewableType string
	ActorName      string
	Query          string
	// From is inclusive, Until is exclusive.
	From      *time.Time
	Until     *time.Time
	SortBy    string
	SortOrder string
}

var auditLogSort = SortSpec{
	Columns: map[string]string{
		"id":         "audit_logs.id",
		"audit_id":   "audit_logs.id",
		"created_at": "audit_logs.created_at",
		"action":     "audit_logs.action",
		"actor_name": "audit_logs.actor_name",
	},
	DefaultKey: "created_at",
	TieBreaker: "audit_logs.id",
}

// AuditLogWriter appends audit entries on the caller's transaction.
type AuditLogWriter interface {
	Insert(ctx context.Context, tx *gorm.DB, entry *model.AuditLog) error
}

type AuditLogRepository interface {
	AuditLogWriter
	FindByID(ctx context.Context, id uint) (*model.AuditLog, error)
	List(ctx context.Context, filter AuditLogFilter, page model.Page) ([]model.AuditLog, int64, error)
	// Each streams every matching row in sort order, batchSize rows at a time.
	Each(ctx context.Context, filter AuditLogFilter, batchSize int, fn func(batch []model.AuditLog) error) error
	Count(ctx context.Context, filter AuditLogFilter) (int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Insert(ctx context.Context, tx *gorm.DB, entry *model.AuditLog) error {
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Error("Failed to insert audit log", err, map[string]interface{}{
			"action": entry.Action,
		})
		return err
	}
	return nil
}

func (r *auditLogRepository) FindByID(ctx context.Context, id uint) (*model.AuditLog, error) {
	var entry model.AuditLog
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func auditLogFilter(f AuditLogFilter) *QueryFilter {
	qf := NewQueryFilter().
		AddIf(f.Action != "", "audit_logs.action = ?", f.Action).
		AddIf(f.ReviewableType != "", "audit_logs.reviewable_type = ?", f.ReviewableType).
		AddIf(f.From != nil, "audit_logs.created_at >= ?", f.From).
		AddIf(f.Until != nil, "audit_logs.created_at < ?", f.Until)
	if f.ActorName != "" {
		qf.Add(LikeClause("audit_logs.actor_name"), ContainsPattern(f.ActorName))
	}
	if f.Query != "" {
		cols := []string{"audit_logs.actor_name", "audit_logs.action", "CAST(audit_logs.details AS TEXT)"}
		qf.Add(LikeClause(cols...), repeatArg(ContainsPattern(f.Query), len(cols))...)
	}
	return qf
}

func (r *auditLogRepository) scoped(ctx context.Context, f AuditLogFilter) *gorm.DB {
	return auditLogFilter(f).Apply(r.db.WithContext(ctx).Model(&model.AuditLog{}))
}

func (r *auditLogRepository) Count(ctx context.Context, filter AuditLogFilter) (int64, error) {
	var total int64
	err := r.scoped(ctx, filter).Count(&total).Error
	return total, err
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter, page model.Page) ([]model.AuditLog, int64, error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		logger.Error("Failed to count audit logs", err)
		return nil, 0, err
	}

	logs := []model.AuditLog{}
	err = r.scoped(ctx, filter).
		Order(auditLogSort.Order(filter.SortBy, filter.SortOrder)).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&logs).Error
	if err != nil {
		logger.Error("Failed to list audit logs", err)
		return nil, 0, err
	}
	return logs, total, nil
}

// Each resolves the ordered id set in a single statement, then loads rows
// by id. Entries committed after that statement are not exported, and
// offsets cannot shift under concurrent inserts.
func (r *auditLogRepository) Each(ctx context.Context, filter AuditLogFilter, batchSize int, fn func(batch []model.AuditLog) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	var ids []uint
	err := r.scoped(ctx, filter).
		Order(auditLogSort.Order(filter.SortBy, filter.SortOrder)).
		Pluck("audit_logs.id", &ids).Error
	if err != nil {
		return err
	}

	for start := 0; start < len(ids); start += batchSize {
		chunk := ids[start:min(start+batchSize, len(ids))]

		var rows []model.AuditLog
		if err := r.db.WithContext(ctx).Where("id IN ?", chunk).Find(&rows).Error; err != nil {
			return err
		}
		byID := make(map[uint]model.AuditLog, len(rows))
		for _, row := range rows {
			byID[row.ID] = row
		}

		batch := make([]model.AuditLog, 0, len(chunk))
		for _, id := range chunk {
			if row, ok := byID[id]; ok {
				batch = append(batch, row)
			}
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}
