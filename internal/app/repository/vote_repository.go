package repository

import (
	"context"
	"time"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteCounts is the raw up/down tally of one review.
type VoteCounts struct {
	ReviewID  uint
	UpCount   int64
	DownCount int64
}

type VoteRepository interface {
	// CountByReviews returns tallies only for reviews that have votes.
	CountByReviews(ctx context.Context, reviewIDs []uint) (map[uint]VoteCounts, error)
	// VotesByUser returns the user's vote per review, omitting reviews the
	// user has not voted on.
	VotesByUser(ctx context.Context, reviewIDs []uint, userID uint) (map[uint]int, error)
	Upsert(ctx context.Context, reviewID, userID uint, vote int) error
	Delete(ctx context.Context, reviewID, userID uint) error
	Voters(ctx context.Context, reviewID uint) ([]model.Voter, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) CountByReviews(ctx context.Context, reviewIDs []uint) (map[uint]VoteCounts, error) {
	out := make(map[uint]VoteCounts, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return out, nil
	}

	var rows []VoteCounts
	err := r.db.WithContext(ctx).
		Model(&model.HelpfulVote{}).
		Select(`review_id,
			SUM(CASE WHEN vote = 1 THEN 1 ELSE 0 END) AS up_count,
			SUM(CASE WHEN vote = -1 THEN 1 ELSE 0 END) AS down_count`).
		Where("review_id IN ?", reviewIDs).
		Group("review_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ReviewID] = row
	}
	return out, nil
}

func (r *voteRepository) VotesByUser(ctx context.Context, reviewIDs []uint, userID uint) (map[uint]int, error) {
	out := make(map[uint]int)
	if len(reviewIDs) == 0 {
		return out, nil
	}

	var votes []model.HelpfulVote
	err := r.db.WithContext(ctx).
		Select("review_id", "vote").
		Where("review_id IN ? AND user_id = ?", reviewIDs, userID).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}

	for _, v := range votes {
		out[v.ReviewID] = v.Vote
	}
	return out, nil
}

// Upsert relies on the (review_id, user_id) unique index so a repeated vote
// replaces the previous one instead of adding a row.
func (r *voteRepository) Upsert(ctx context.Context, reviewID, userID uint, vote int) error {
	now := time.Now().UTC()
	row := model.HelpfulVote{
		ReviewID:  reviewID,
		UserID:    userID,
		Vote:      vote,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote", "updated_at"}),
	}).Create(&row).Error
}

func (r *voteRepository) Delete(ctx context.Context, reviewID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("review_id = ? AND user_id = ?", reviewID, userID).
		Delete(&model.HelpfulVote{}).Error
}

func (r *voteRepository) Voters(ctx context.Context, reviewID uint) ([]model.Voter, error) {
	voters := []model.Voter{}
	err := r.db.WithContext(ctx).
		Model(&model.HelpfulVote{}).
		Select("helpful_votes.user_id, helpful_votes.vote, users.full_name").
		Joins("JOIN users ON users.id = helpful_votes.user_id").
		Where("helpful_votes.review_id = ?", reviewID).
		Order("helpful_votes.created_at ASC, helpful_votes.id ASC").
		Scan(&voters).Error
	return voters, err
}
