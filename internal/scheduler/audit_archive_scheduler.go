package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
	"github.com/wanderwise/wanderwise-backend/pkg/export"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
)

const archiveTimeout = 5 * time.Minute

// ArchiveUploader stores one archive object.
type ArchiveUploader interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
}

// AuditArchiveScheduler uploads the previous UTC day's audit entries as CSV.
type AuditArchiveScheduler struct {
	cron     *cron.Cron
	schedule string
	prefix   string
	audit    service.AuditService
	uploader ArchiveUploader
	now      func() time.Time
}

func NewAuditArchiveScheduler(schedule, prefix string, audit service.AuditService, uploader ArchiveUploader) *AuditArchiveScheduler {
	return &AuditArchiveScheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: schedule,
		prefix:   prefix,
		audit:    audit,
		uploader: uploader,
		now:      time.Now,
	}
}

func (s *AuditArchiveScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		day := s.now().UTC().AddDate(0, 0, -1)
		if _, err := s.ArchiveDay(ctx, day); err != nil {
			logger.Error("Scheduled audit archive failed", err, map[string]interface{}{
				"day": day.Format("2006-01-02"),
			})
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for audit archive", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Audit archive scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// Stop waits for a running archive to finish.
func (s *AuditArchiveScheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Audit archive scheduler stopped")
}

// ArchiveKey is <prefix>/YYYY/MM/audit-logs-YYYY-MM-DD-<uuid>.csv. The
// random suffix keeps manual re-runs from overwriting earlier uploads.
func ArchiveKey(prefix string, day time.Time) string {
	day = day.UTC()
	name := fmt.Sprintf("audit-logs-%s-%s.%s", day.Format("2006-01-02"), uuid.NewString(), export.FormatCSV.Extension())
	return path.Join(prefix, day.Format("2006"), day.Format("01"), name)
}

// ArchiveDay exports entries created on day (UTC) and uploads them. Days
// without entries are skipped and return an empty key.
func (s *AuditArchiveScheduler) ArchiveDay(ctx context.Context, day time.Time) (string, error) {
	d := day.UTC()
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	res, err := s.audit.ExportRange(ctx, from, from.AddDate(0, 0, 1), &buf)
	if err != nil {
		return "", fmt.Errorf("export audit logs: %w", err)
	}
	if res.Rows == 0 {
		logger.Info("No audit entries to archive", map[string]interface{}{
			"day": from.Format("2006-01-02"),
		})
		return "", nil
	}

	key := ArchiveKey(s.prefix, from)
	if err := s.uploader.Put(ctx, key, export.FormatCSV.ContentType(), &buf, int64(buf.Len())); err != nil {
		return "", err
	}

	logger.Info("Audit logs archived", map[string]interface{}{
		"day":  from.Format("2006-01-02"),
		"rows": res.Rows,
		"key":  key,
	})
	return key, nil
}
