package controller

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
	apperrors "github.com/wanderwise/wanderwise-backend/internal/errors"
	"github.com/wanderwise/wanderwise-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// CreateReviewRequest may omit reviewable_type/reviewable_id when they are
// given in the query string or the route.
type CreateReviewRequest struct {
	ReviewableType string   `json:"reviewable_type" binding:"omitempty,reviewable"`
	ReviewableID   uint     `json:"reviewable_id"`
	Rating         *float64 `json:"rating"`
	Title          *string  `json:"title" binding:"omitempty,max=255"`
	Body           *string  `json:"body"`
}

type UpdateReviewRequest struct {
	Title   *string  `json:"title" binding:"omitempty,max=255"`
	Rating  *float64 `json:"rating"`
	Content *string  `json:"content"`
}

type VoteRequest struct {
	Vote string `json:"vote" binding:"required,vote"`
}

type ReplyRequest struct {
	Content string `json:"content"`
}

// wholeRating rejects fractional ratings; the range is checked by the service.
func wholeRating(r *float64) (*int, error) {
	if r == nil {
		return nil, nil
	}
	if *r != math.Trunc(*r) || math.IsInf(*r, 0) || math.Abs(*r) > math.MaxInt32 {
		return nil, service.ErrInvalidRating
	}
	n := int(*r)
	return &n, nil
}

// List returns published reviews of one reviewable
// GET /api/reviews?reviewable_type=&reviewable_id=
func (ctrl *ReviewController) List(c *gin.Context) {
	rawType := c.Query("reviewable_type")
	id, ok := optionalUintQuery(c, "reviewable_id")
	if !ok {
		return
	}
	if rawType == "" || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "reviewable_type and reviewable_id are required")
		return
	}
	ctrl.list(c, rawType, id)
}

// ListFor serves GET /api/{destinations|activities|accommodations}/:id/reviews
func (ctrl *ReviewController) ListFor(rt model.ReviewableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		ctrl.list(c, string(rt), id)
	}
}

func (ctrl *ReviewController) list(c *gin.Context, rawType string, id uint) {
	reviews, err := ctrl.reviewService.ListPublished(c.Request.Context(), rawType, id, middleware.OptionalUserID(c))
	if err != nil {
		respondError(c, err, "reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
	})
}

// Create submits a review for moderation
// POST /api/reviews
func (ctrl *ReviewController) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.ReviewableType == "" {
		req.ReviewableType = c.Query("reviewable_type")
	}
	if req.ReviewableID == 0 {
		id, ok := optionalUintQuery(c, "reviewable_id")
		if !ok {
			return
		}
		req.ReviewableID = id
	}
	ctrl.create(c, req)
}

// CreateFor serves POST /api/{destinations|activities|accommodations}/:id/reviews
func (ctrl *ReviewController) CreateFor(rt model.ReviewableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		req.ReviewableType = string(rt)
		req.ReviewableID = id
		ctrl.create(c, req)
	}
}

func (ctrl *ReviewController) create(c *gin.Context, req CreateReviewRequest) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rating, err := wholeRating(req.Rating)
	if err != nil {
		respondError(c, err, "review")
		return
	}

	review, err := ctrl.reviewService.Create(c.Request.Context(), userID, service.CreateReviewInput{
		ReviewableType: req.ReviewableType,
		ReviewableID:   req.ReviewableID,
		Rating:         rating,
		Title:          req.Title,
		Body:           req.Body,
	})
	if err != nil {
		respondError(c, err, "review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Review submitted for moderation",
		"review":  review,
	})
}

// Mine lists the caller's own reviews in every status
// GET /api/reviews/mine
func (ctrl *ReviewController) Mine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, limit := pageQuery(c)

	reviews, pagination, err := ctrl.reviewService.ListMine(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err, "reviews")
		return
	}
	c.JSON(http.StatusOK, paginated("reviews", reviews, pagination))
}

// Update edits a review that is not yet published
// PUT /api/reviews/:id
func (ctrl *ReviewController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller, ok := currentCaller(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rating, err := wholeRating(req.Rating)
	if err != nil {
		respondError(c, err, "review")
		return
	}

	review, err := ctrl.reviewService.Update(c.Request.Context(), id, caller, service.UpdateReviewInput{
		Title:   req.Title,
		Rating:  rating,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err, "review")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
	})
}

// Vote records, changes or removes the caller's helpful vote
// POST /api/reviews/:id/vote
func (ctrl *ReviewController) Vote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	summary, err := ctrl.reviewService.Vote(c.Request.Context(), id, userID, req.Vote)
	if err != nil {
		respondError(c, err, "vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"up_count":      summary.UpCount,
		"down_count":    summary.DownCount,
		"helpful_count": summary.HelpfulCount,
		"my_vote":       summary.MyVote,
	})
}

// Votes returns the vote counts, with voters for the owner or an admin
// GET /api/reviews/:id/votes
func (ctrl *ReviewController) Votes(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.reviewService.VoteDetail(c.Request.Context(), id, optionalCaller(c))
	if err != nil {
		respondError(c, err, "votes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"up_count":      detail.UpCount,
		"down_count":    detail.DownCount,
		"helpful_count": detail.HelpfulCount,
		"my_vote":       detail.MyVote,
		"voters":        detail.Voters,
	})
}

// Replies lists replies oldest first
// GET /api/reviews/:id/replies
func (ctrl *ReviewController) Replies(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	replies, err := ctrl.reviewService.ListReplies(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "replies")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"replies": replies,
	})
}

// AddReply appends a reply to a review
// POST /api/reviews/:id/replies
func (ctrl *ReviewController) AddReply(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reply, err := ctrl.reviewService.AddReply(c.Request.Context(), id, userID, req.Content)
	if err != nil {
		respondError(c, err, "reply")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"reply":   reply,
	})
}
