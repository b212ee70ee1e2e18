package repository

import (
	"context"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminReviewFilter holds the optional filters of the moderation listing.
// Zero values mean "no filter".
type AdminReviewFilter struct {
	Status         model.ReviewStatus
	ReviewableType model.ReviewableType
	ReviewableID   uint
	Query          string
	SortBy         string
	SortOrder      string
}

var adminReviewSort = SortSpec{
	Columns: map[string]string{
		"created_at": "reviews.created_at",
		"rating":     "reviews.rating",
		"status":     "reviews.status",
		"id":         "reviews.id",
	},
	DefaultKey: "created_at",
	TieBreaker: "reviews.id",
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id uint) (*model.Review, error)
	// FindByIDForUpdate locks the row for the rest of the transaction on
	// engines that support it.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Review, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Review, error)
	FindWithAuthor(ctx context.Context, id uint) (*model.ReviewWithAuthor, error)
	FindWithAuthorByIDs(ctx context.Context, ids []uint) ([]model.ReviewWithAuthor, error)
	ListPublished(ctx context.Context, reviewableType model.ReviewableType, reviewableID uint) ([]model.ReviewWithAuthor, error)
	ListByUser(ctx context.Context, userID uint, page model.Page) ([]model.ReviewWithAuthor, int64, error)
	ListAdmin(ctx context.Context, filter AdminReviewFilter, page model.Page) ([]model.ReviewWithAuthor, int64, error)
	// UpdateEditable applies fields only while the review is not published
	// and reports how many rows changed.
	UpdateEditable(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	UpdateStatus(ctx context.Context, ids []uint, status model.ReviewStatus) (int64, error)
	CountByStatus(ctx context.Context) (map[model.ReviewStatus]int64, error)
	WithTx(tx *gorm.DB) ReviewRepository
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

// withAuthor selects review columns plus the author's full name.
func (r *reviewRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("reviews.*, users.full_name AS author_name").
		Joins("LEFT JOIN users ON users.id = reviews.user_id")
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"reviewable_type": review.ReviewableType,
			"reviewable_id":   review.ReviewableID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Review, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var review model.Review
	if err := q.First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Review, error) {
	var reviews []model.Review
	if len(ids) == 0 {
		return reviews, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) FindWithAuthor(ctx context.Context, id uint) (*model.ReviewWithAuthor, error) {
	var rows []model.ReviewWithAuthor
	if err := r.withAuthor(ctx).Where("reviews.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *reviewRepository) FindWithAuthorByIDs(ctx context.Context, ids []uint) ([]model.ReviewWithAuthor, error) {
	rows := []model.ReviewWithAuthor{}
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.withAuthor(ctx).Where("reviews.id IN ?", ids).Order("reviews.id ASC").Scan(&rows).Error
	return rows, err
}

func (r *reviewRepository) ListPublished(ctx context.Context, reviewableType model.ReviewableType, reviewableID uint) ([]model.ReviewWithAuthor, error) {
	rows := []model.ReviewWithAuthor{}
	err := r.withAuthor(ctx).
		Where("reviews.reviewable_type = ? AND reviews.reviewable_id = ? AND reviews.status = ?",
			reviewableType, reviewableID, model.ReviewStatusPublished).
		Order("reviews.created_at DESC, reviews.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uint, page model.Page) ([]model.ReviewWithAuthor, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Review{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []model.ReviewWithAuthor{}
	err := r.withAuthor(ctx).
		Where("reviews.user_id = ?", userID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func adminReviewFilter(f AdminReviewFilter) *QueryFilter {
	qf := NewQueryFilter().
		AddIf(f.Status != "", "reviews.status = ?", f.Status).
		AddIf(f.ReviewableType != "", "reviews.reviewable_type = ?", f.ReviewableType).
		AddIf(f.ReviewableID > 0, "reviews.reviewable_id = ?", f.ReviewableID)
	if f.Query != "" {
		cols := []string{"reviews.title", "reviews.body", "users.full_name"}
		qf.Add(LikeClause(cols...), repeatArg(ContainsPattern(f.Query), len(cols))...)
	}
	return qf
}

func (r *reviewRepository) ListAdmin(ctx context.Context, filter AdminReviewFilter, page model.Page) ([]model.ReviewWithAuthor, int64, error) {
	qf := adminReviewFilter(filter)
	logger.Debug("Listing admin reviews", map[string]interface{}{
		"filters": qf.Len(),
		"page":    page.Page,
		"limit":   page.Limit,
	})

	var total int64
	countQuery := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Joins("LEFT JOIN users ON users.id = reviews.user_id")
	if err := qf.Apply(countQuery).Count(&total).Error; err != nil {
		logger.Error("Failed to count admin reviews", err)
		return nil, 0, err
	}

	rows := []model.ReviewWithAuthor{}
	err := qf.Apply(r.withAuthor(ctx)).
		Order(adminReviewSort.Order(filter.SortBy, filter.SortOrder)).
		Offset(page.Offset()).
		Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to list admin reviews", err)
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *reviewRepository) UpdateEditable(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("id = ? AND status <> ?", id, model.ReviewStatusPublished).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *reviewRepository) UpdateStatus(ctx context.Context, ids []uint, status model.ReviewStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("id IN ?", ids).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *reviewRepository) CountByStatus(ctx context.Context) (map[model.ReviewStatus]int64, error) {
	var rows []struct {
		Status model.ReviewStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[model.ReviewStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
