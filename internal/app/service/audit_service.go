package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/repository"
	"github.com/wanderwise/wanderwise-backend/pkg/export"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	auditListDefaultLimit = 50
	auditListMaxLimit     = 200
	auditExportBatch      = 500
	auditSheetName        = "Audit Logs"
	dateOnlyLayout        = "2006-01-02"
)

// AuditExportColumns is the header of every audit export.
var AuditExportColumns = []string{
	"id", "actor_id", "actor_name", "action", "review_ids", "reviewable_type", "details", "created_at",
}

// AuditQuery is the audit listing/export request as received from the client.
type AuditQuery struct {
	Action         string
	ReviewableType string
	ActorName      string
	Query          string
	DateFrom       string
	DateTo         string
	SortBy         string
	SortOrder      string
	Page           int
	Limit          int
}

type ExportResult struct {
	Rows int
}

type AuditService interface {
	List(ctx context.Context, q AuditQuery) ([]model.AuditLog, model.Pagination, error)
	Get(ctx context.Context, id uint) (*model.AuditLog, error)
	// Export writes every row matching q, unpaginated, in the listing order.
	Export(ctx context.Context, q AuditQuery, format export.Format, w io.Writer) (ExportResult, error)
	// ExportRange writes entries created in [from, until) oldest first as CSV.
	ExportRange(ctx context.Context, from, until time.Time, w io.Writer) (ExportResult, error)
}

type auditService struct {
	logs repository.AuditLogRepository
}

func NewAuditService(logs repository.AuditLogRepository) AuditService {
	return &auditService{logs: logs}
}

// parseDateBound accepts RFC3339 or YYYY-MM-DD. A date-only upper bound
// covers the whole day.
func parseDateBound(s string, upper bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		if upper {
			t = t.Add(time.Nanosecond)
		}
		return &t, nil
	}
	t, err := time.ParseInLocation(dateOnlyLayout, s, time.UTC)
	if err != nil {
		return nil, ErrInvalidDateFilter
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

func (s *auditService) filter(q AuditQuery) (repository.AuditLogFilter, error) {
	f := repository.AuditLogFilter{
		Action:    strings.TrimSpace(q.Action),
		ActorName: strings.TrimSpace(q.ActorName),
		Query:     strings.TrimSpace(q.Query),
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	if q.ReviewableType != "" {
		rt, ok := model.NormalizeReviewableType(q.ReviewableType)
		if !ok {
			return f, ErrInvalidReviewable
		}
		f.ReviewableType = string(rt)
	}

	var err error
	if f.From, err = parseDateBound(q.DateFrom, false); err != nil {
		return f, err
	}
	if f.Until, err = parseDateBound(q.DateTo, true); err != nil {
		return f, err
	}
	return f, nil
}

func (s *auditService) List(ctx context.Context, q AuditQuery) ([]model.AuditLog, model.Pagination, error) {
	f, err := s.filter(q)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	page := model.NewPage(q.Page, q.Limit, auditListDefaultLimit, auditListMaxLimit)
	logs, total, err := s.logs.List(ctx, f, page)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return logs, model.NewPagination(page, total), nil
}

func (s *auditService) Get(ctx context.Context, id uint) (*model.AuditLog, error) {
	entry, err := s.logs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditLogNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *auditService) Export(ctx context.Context, q AuditQuery, format export.Format, w io.Writer) (ExportResult, error) {
	f, err := s.filter(q)
	if err != nil {
		return ExportResult{}, err
	}
	out, err := export.NewWriter(format, w, auditSheetName)
	if err != nil {
		return ExportResult{}, ErrInvalidExportFormat
	}

	res, err := s.write(ctx, f, out)
	if err != nil {
		logger.Error("Audit export failed", err, map[string]interface{}{
			"format": format,
		})
		return res, err
	}

	logger.Info("Audit logs exported", map[string]interface{}{
		"format": format,
		"rows":   res.Rows,
	})
	return res, nil
}

func (s *auditService) ExportRange(ctx context.Context, from, until time.Time, w io.Writer) (ExportResult, error) {
	from, until = from.UTC(), until.UTC()
	f := repository.AuditLogFilter{
		From:      &from,
		Until:     &until,
		SortBy:    "id",
		SortOrder: "asc",
	}
	return s.write(ctx, f, export.NewCSVWriter(w))
}

func (s *auditService) write(ctx context.Context, f repository.AuditLogFilter, out export.Writer) (ExportResult, error) {
	var res ExportResult
	closed := false
	defer func() {
		if !closed {
			out.Abort()
		}
	}()

	if err := out.WriteHeader(AuditExportColumns); err != nil {
		return res, err
	}

	err := s.logs.Each(ctx, f, auditExportBatch, func(batch []model.AuditLog) error {
		for i := range batch {
			if err := out.WriteRow(AuditRow(&batch[i])); err != nil {
				return err
			}
			res.Rows++
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	closed = true
	return res, out.Close()
}

// AuditRow renders one entry in export column order.
func AuditRow(l *model.AuditLog) []string {
	actorID := ""
	if l.ActorID != nil {
		actorID = strconv.FormatUint(uint64(*l.ActorID), 10)
	}
	return []string{
		strconv.FormatUint(uint64(l.ID), 10),
		actorID,
		derefString(l.ActorName),
		l.Action,
		l.ReviewIDs.String(),
		derefString(l.ReviewableType),
		string(l.Details),
		l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
