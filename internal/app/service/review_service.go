package service

import (
	"context"
	"errors"
	"strings"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/repository"
	"github.com/wanderwise/wanderwise-backend/internal/metrics"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	mineDefaultLimit = 12
	mineMaxLimit     = 100
)

// Caller is the authenticated identity performing a request.
type Caller struct {
	UserID uint
	Role   model.UserRole
}

func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

type CreateReviewInput struct {
	ReviewableType string
	ReviewableID   uint
	Rating         *int
	Title          *string
	Body           *string
}

// UpdateReviewInput carries only the fields the client sent.
type UpdateReviewInput struct {
	Title   *string
	Rating  *int
	Content *string
}

func (in UpdateReviewInput) empty() bool {
	return in.Title == nil && in.Rating == nil && in.Content == nil
}

// VoteDetail is the vote summary of one review plus, for its owner or an
// admin, the individual voters.
type VoteDetail struct {
	model.VoteSummary
	Voters []model.Voter `json:"voters"`
}

type ReviewService interface {
	ListPublished(ctx context.Context, rawType string, reviewableID uint, viewerID *uint) ([]model.ReviewView, error)
	ListMine(ctx context.Context, userID uint, page, limit int) ([]model.ReviewView, model.Pagination, error)
	Create(ctx context.Context, authorID uint, in CreateReviewInput) (*model.ReviewView, error)
	Update(ctx context.Context, reviewID uint, caller Caller, in UpdateReviewInput) (*model.ReviewView, error)
	Vote(ctx context.Context, reviewID, userID uint, token string) (model.VoteSummary, error)
	VoteDetail(ctx context.Context, reviewID uint, caller *Caller) (*VoteDetail, error)
	ListReplies(ctx context.Context, reviewID uint) ([]model.ReviewReply, error)
	AddReply(ctx context.Context, reviewID, userID uint, content string) (*model.ReviewReply, error)
}

type reviewService struct {
	reviews    repository.ReviewRepository
	votes      repository.VoteRepository
	replies    repository.ReplyRepository
	aggregator VoteAggregator
}

func NewReviewService(
	reviews repository.ReviewRepository,
	votes repository.VoteRepository,
	replies repository.ReplyRepository,
	aggregator VoteAggregator,
) ReviewService {
	return &reviewService{
		reviews:    reviews,
		votes:      votes,
		replies:    replies,
		aggregator: aggregator,
	}
}

// optionalText trims s and maps blank input to nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func (s *reviewService) loadReview(ctx context.Context, id uint) (*model.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) view(ctx context.Context, id uint, viewerID *uint) (*model.ReviewView, error) {
	row, err := s.reviews.FindWithAuthor(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	views, err := s.aggregator.Enrich(ctx, []model.ReviewWithAuthor{*row}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *reviewService) ListPublished(ctx context.Context, rawType string, reviewableID uint, viewerID *uint) ([]model.ReviewView, error) {
	rt, ok := model.NormalizeReviewableType(rawType)
	if !ok || reviewableID == 0 {
		return nil, ErrInvalidReviewable
	}

	rows, err := s.reviews.ListPublished(ctx, rt, reviewableID)
	if err != nil {
		logger.Error("Failed to list published reviews", err, map[string]interface{}{
			"reviewable_type": rt,
			"reviewable_id":   reviewableID,
		})
		return nil, err
	}
	return s.aggregator.Enrich(ctx, rows, viewerID)
}

func (s *reviewService) ListMine(ctx context.Context, userID uint, page, limit int) ([]model.ReviewView, model.Pagination, error) {
	p := model.NewPage(page, limit, mineDefaultLimit, mineMaxLimit)

	rows, total, err := s.reviews.ListByUser(ctx, userID, p)
	if err != nil {
		logger.Error("Failed to list user reviews", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, model.Pagination{}, err
	}

	views, err := s.aggregator.Enrich(ctx, rows, &userID)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return views, model.NewPagination(p, total), nil
}

func (s *reviewService) Create(ctx context.Context, authorID uint, in CreateReviewInput) (*model.ReviewView, error) {
	rt, ok := model.NormalizeReviewableType(in.ReviewableType)
	if !ok || in.ReviewableID == 0 {
		return nil, ErrInvalidReviewable
	}
	if in.Rating == nil || !model.ValidRating(*in.Rating) {
		return nil, ErrInvalidRating
	}

	review := &model.Review{
		ReviewableType: rt,
		ReviewableID:   in.ReviewableID,
		UserID:         &authorID,
		Rating:         *in.Rating,
		Title:          optionalText(in.Title),
		Body:           optionalText(in.Body),
		Status:         model.ReviewStatusPending,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":       review.ID,
		"user_id":         authorID,
		"reviewable_type": rt,
		"reviewable_id":   in.ReviewableID,
	})
	return s.view(ctx, review.ID, &authorID)
}

func (s *reviewService) Update(ctx context.Context, reviewID uint, caller Caller, in UpdateReviewInput) (*model.ReviewView, error) {
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(caller.UserID) && !caller.IsAdmin() {
		logger.Warn("Review edit denied", map[string]interface{}{
			"review_id": reviewID,
			"user_id":   caller.UserID,
		})
		return nil, ErrNotReviewOwner
	}
	if !review.Status.IsEditable() {
		return nil, ErrPublishedImmutable
	}
	if in.Rating != nil && !model.ValidRating(*in.Rating) {
		return nil, ErrInvalidRating
	}
	if in.empty() {
		return nil, ErrNothingToUpdate
	}

	fields := make(map[string]interface{}, 3)
	if in.Title != nil {
		fields["title"] = optionalText(in.Title)
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	if in.Content != nil {
		fields["body"] = optionalText(in.Content)
	}
	updated, err := s.reviews.UpdateEditable(ctx, reviewID, fields)
	if err != nil {
		logger.Error("Failed to update review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return nil, err
	}
	// Published between the check above and the write.
	if updated == 0 {
		return nil, ErrPublishedImmutable
	}

	return s.view(ctx, reviewID, &caller.UserID)
}

func (s *reviewService) Vote(ctx context.Context, reviewID, userID uint, token string) (model.VoteSummary, error) {
	vote, ok := model.ParseVoteToken(token)
	if !ok {
		return model.VoteSummary{}, ErrInvalidVote
	}
	if _, err := s.loadReview(ctx, reviewID); err != nil {
		return model.VoteSummary{}, err
	}

	var err error
	if vote == 0 {
		err = s.votes.Delete(ctx, reviewID, userID)
	} else {
		err = s.votes.Upsert(ctx, reviewID, userID, vote)
	}
	if err != nil {
		logger.Error("Failed to record vote", err, map[string]interface{}{
			"review_id": reviewID,
			"user_id":   userID,
		})
		return model.VoteSummary{}, err
	}
	metrics.RecordVote(strings.ToLower(strings.TrimSpace(token)))

	summaries, err := s.aggregator.Aggregate(ctx, []uint{reviewID}, &userID)
	if err != nil {
		return model.VoteSummary{}, err
	}
	return summaries[reviewID], nil
}

func (s *reviewService) VoteDetail(ctx context.Context, reviewID uint, caller *Caller) (*VoteDetail, error) {
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	var viewerID *uint
	if caller != nil {
		viewerID = &caller.UserID
	}
	summaries, err := s.aggregator.Aggregate(ctx, []uint{reviewID}, viewerID)
	if err != nil {
		return nil, err
	}

	detail := &VoteDetail{VoteSummary: summaries[reviewID]}
	if caller != nil && (caller.IsAdmin() || review.IsOwnedBy(caller.UserID)) {
		detail.Voters, err = s.votes.Voters(ctx, reviewID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func (s *reviewService) ListReplies(ctx context.Context, reviewID uint) ([]model.ReviewReply, error) {
	return s.replies.ListByReview(ctx, reviewID)
}

func (s *reviewService) AddReply(ctx context.Context, reviewID, userID uint, content string) (*model.ReviewReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyReply
	}
	if _, err := s.loadReview(ctx, reviewID); err != nil {
		return nil, err
	}

	reply := &model.ReviewReply{ReviewID: reviewID, UserID: userID, Content: content}
	if err := s.replies.Create(ctx, reply); err != nil {
		logger.Error("Failed to create reply", err, map[string]interface{}{
			"review_id": reviewID,
			"user_id":   userID,
		})
		return nil, err
	}
	return s.replies.FindByID(ctx, reply.ID)
}
