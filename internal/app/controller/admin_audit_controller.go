package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
	"github.com/wanderwise/wanderwise-backend/pkg/export"
)

type AdminAuditController struct {
	auditService service.AuditService
}

func NewAdminAuditController(auditService service.AuditService) *AdminAuditController {
	return &AdminAuditController{auditService: auditService}
}

func auditQuery(c *gin.Context) service.AuditQuery {
	page, limit := pageQuery(c)
	return service.AuditQuery{
		Action:         c.Query("action"),
		ReviewableType: c.Query("reviewable_type"),
		ActorName:      c.Query("actor_name"),
		Query:          c.Query("q"),
		DateFrom:       c.Query("date_from"),
		DateTo:         c.Query("date_to"),
		SortBy:         c.Query("sort_by"),
		SortOrder:      c.Query("sort_order"),
		Page:           page,
		Limit:          limit,
	}
}

// List returns audit entries newest first
// GET /api/admin/audit-logs
func (ctrl *AdminAuditController) List(c *gin.Context) {
	logs, pagination, err := ctrl.auditService.List(c.Request.Context(), auditQuery(c))
	if err != nil {
		respondError(c, err, "audit logs")
		return
	}
	c.JSON(http.StatusOK, paginated("logs", logs, pagination))
}

// Get returns one audit entry
// GET /api/admin/audit-logs/:id
func (ctrl *AdminAuditController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := ctrl.auditService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "audit log")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"log":     entry,
	})
}

// Export downloads every entry matching the list filters
// GET /api/admin/audit-logs/export?format=csv|xlsx
func (ctrl *AdminAuditController) Export(c *gin.Context) {
	format, ok := export.ParseFormat(c.Query("format"))
	if !ok {
		respondError(c, service.ErrInvalidExportFormat, "audit logs")
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	res, err := ctrl.auditService.Export(c.Request.Context(), auditQuery(c), format, &buf)
	if err != nil {
		respondError(c, err, "audit logs")
		return
	}

	filename := fmt.Sprintf("audit-logs-%s.%s", time.Now().UTC().Format("20060102-150405"), format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Export-Rows", strconv.Itoa(res.Rows))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
