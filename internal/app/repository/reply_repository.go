package repository

import (
	"context"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"gorm.io/gorm"
)

type ReplyRepository interface {
	Create(ctx context.Context, reply *model.ReviewReply) error
	FindByID(ctx context.Context, id uint) (*model.ReviewReply, error)
	ListByReview(ctx context.Context, reviewID uint) ([]model.ReviewReply, error)
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.ReviewReply{}).
		Select("review_replies.*, users.full_name AS author_name").
		Joins("LEFT JOIN users ON users.id = review_replies.user_id")
}

func (r *replyRepository) Create(ctx context.Context, reply *model.ReviewReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *replyRepository) FindByID(ctx context.Context, id uint) (*model.ReviewReply, error) {
	var reply model.ReviewReply
	if err := r.withAuthor(ctx).Where("review_replies.id = ?", id).First(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListByReview returns replies oldest first.
func (r *replyRepository) ListByReview(ctx context.Context, reviewID uint) ([]model.ReviewReply, error) {
	replies := []model.ReviewReply{}
	err := r.withAuthor(ctx).
		Where("review_replies.review_id = ?", reviewID).
		Order("review_replies.created_at ASC, review_replies.id ASC").
		Find(&replies).Error
	return replies, err
}
