package controller

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
	apperrors "github.com/wanderwise/wanderwise-backend/internal/errors"
	"github.com/xuri/excelize/v2"
)

// moderate produces three audit rows through the API and returns the id of
// the review skipped by the bulk publish.
func moderate(t *testing.T, s *testServer, adminToken string, author *model.User) uint {
	t.Helper()
	a := s.review(t, author, model.ReviewStatusPending)
	b := s.review(t, author, model.ReviewStatusPending)
	c := s.review(t, author, model.ReviewStatusRejected)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, path("/api/admin/reviews/%d/publish", a.ID), adminToken, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, path("/api/admin/reviews/%d/reject", b.ID), adminToken, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/admin/reviews/bulk", adminToken, map[string]interface{}{
		"action": "publish",
		"ids":    []uint{a.ID, c.ID},
	}).Code)
	return c.ID
}

func TestAdminAuditController_ListAndGet(t *testing.T) {
	s := setupTestServer(t)
	_, adminToken := s.account(t, "Ada", model.RoleAdmin)
	author, _ := s.account(t, "author", model.RoleUser)
	skipped := moderate(t, s, adminToken, author)

	w := s.do(t, http.MethodGet, "/api/admin/audit-logs", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	logs := body["logs"].([]interface{})
	require.Len(t, logs, 3)
	newest := logs[0].(map[string]interface{})
	assert.Equal(t, "bulk_publish", newest["action"])
	assert.Equal(t, "Ada", newest["actor_name"])
	assert.Equal(t, map[string]interface{}{
		"count":           float64(1),
		"skippedRejected": []interface{}{float64(skipped)},
	}, newest["details"])
	assert.Nil(t, newest["reviewable_type"])

	w = s.do(t, http.MethodGet, "/api/admin/audit-logs?action=reject&sort_by=id&sort_order=asc", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["logs"], 1)

	w = s.do(t, http.MethodGet, "/api/admin/audit-logs?date_from=yesterday", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuditInvalidDate, decode(t, w)["code"])

	id := uint(newest["id"].(float64))
	w = s.do(t, http.MethodGet, path("/api/admin/audit-logs/%d", id), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bulk_publish", decode(t, w)["log"].(map[string]interface{})["action"])

	w = s.do(t, http.MethodGet, "/api/admin/audit-logs/777", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.AuditLogNotFound, decode(t, w)["code"])
}

func TestAdminAuditController_ExportCSV(t *testing.T) {
	s := setupTestServer(t)
	_, adminToken := s.account(t, "Ada", model.RoleAdmin)
	author, _ := s.account(t, "author", model.RoleUser)
	moderate(t, s, adminToken, author)

	w := s.do(t, http.MethodGet, "/api/admin/audit-logs/export?action=publish", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Equal(t, "1", w.Header().Get("X-Export-Rows"))

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, service.AuditExportColumns, records[0])
	assert.Equal(t, "publish", records[1][3])
	assert.Equal(t, `{"single":true}`, records[1][6])
}

func TestAdminAuditController_ExportXLSX(t *testing.T) {
	s := setupTestServer(t)
	_, adminToken := s.account(t, "Ada", model.RoleAdmin)
	author, _ := s.account(t, "author", model.RoleUser)
	moderate(t, s, adminToken, author)

	w := s.do(t, http.MethodGet, "/api/admin/audit-logs/export?format=XLSX", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Audit Logs")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestAdminAuditController_ExportRejectsBadInput(t *testing.T) {
	s := setupTestServer(t)
	_, adminToken := s.account(t, "Ada", model.RoleAdmin)

	w := s.do(t, http.MethodGet, "/api/admin/audit-logs/export?format=pdf", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuditInvalidExportFmt, decode(t, w)["code"])
	assert.Empty(t, w.Header().Get("Content-Disposition"))

	w = s.do(t, http.MethodGet, "/api/admin/audit-logs/export?date_to=31-12-2026", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuditInvalidDate, decode(t, w)["code"])
}
