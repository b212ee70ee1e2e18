package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
)

type AdminReviewController struct {
	moderationService service.ModerationService
}

func NewAdminReviewController(moderationService service.ModerationService) *AdminReviewController {
	return &AdminReviewController{moderationService: moderationService}
}

// BulkModerationRequest keeps ids loosely typed; numbers and numeric
// strings are coerced by the service.
type BulkModerationRequest struct {
	Action string        `json:"action"`
	IDs    []interface{} `json:"ids"`
}

// List returns reviews in any status for moderation
// GET /api/admin/reviews
func (ctrl *AdminReviewController) List(c *gin.Context) {
	reviewableID, ok := optionalUintQuery(c, "reviewable_id")
	if !ok {
		return
	}
	page, limit := pageQuery(c)

	reviews, pagination, err := ctrl.moderationService.List(c.Request.Context(), service.AdminReviewQuery{
		Status:         c.Query("status"),
		ReviewableType: c.Query("reviewable_type"),
		ReviewableID:   reviewableID,
		Query:          c.Query("q"),
		SortBy:         c.Query("sort_by"),
		SortOrder:      c.Query("sort_order"),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		respondError(c, err, "reviews")
		return
	}
	c.JSON(http.StatusOK, paginated("reviews", reviews, pagination))
}

// Publish makes a review public
// POST /api/admin/reviews/:reviewId/publish
func (ctrl *AdminReviewController) Publish(c *gin.Context) {
	ctrl.moderate(c, ctrl.moderationService.Publish, "Review published")
}

// Reject hides a review from the public listing
// POST /api/admin/reviews/:reviewId/reject
func (ctrl *AdminReviewController) Reject(c *gin.Context) {
	ctrl.moderate(c, ctrl.moderationService.Reject, "Review rejected")
}

func (ctrl *AdminReviewController) moderate(c *gin.Context, apply func(ctx context.Context, reviewID, actorID uint) (*model.ReviewWithAuthor, error), message string) {
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	review, err := apply(c.Request.Context(), reviewID, actorID)
	if err != nil {
		respondError(c, err, "review")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"review":  review,
	})
}

// Bulk publishes or rejects many reviews at once
// POST /api/admin/reviews/bulk
func (ctrl *AdminReviewController) Bulk(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req BulkModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := ctrl.moderationService.Bulk(c.Request.Context(), req.Action, req.IDs, actorID)
	if err != nil {
		respondError(c, err, "reviews")
		return
	}

	resp := gin.H{
		"success":      true,
		"updatedCount": result.UpdatedCount,
		"reviews":      result.Reviews,
	}
	if result.SkippedRejected != nil {
		resp["skippedRejected"] = result.SkippedRejected
	}
	c.JSON(http.StatusOK, resp)
}
