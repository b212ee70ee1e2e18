package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/repository"
	"github.com/wanderwise/wanderwise-backend/internal/db"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	users      repository.UserRepository
	reviews    repository.ReviewRepository
	votes      repository.VoteRepository
	replies    repository.ReplyRepository
	auditLogs  repository.AuditLogRepository
	aggregator VoteAggregator
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	votes := repository.NewVoteRepository(testDB)
	return &testEnv{
		db:         testDB,
		users:      repository.NewUserRepository(testDB),
		reviews:    repository.NewReviewRepository(testDB),
		votes:      votes,
		replies:    repository.NewReplyRepository(testDB),
		auditLogs:  repository.NewAuditLogRepository(testDB),
		aggregator: NewVoteAggregator(votes),
	}
}

func (e *testEnv) reviewService() ReviewService {
	return NewReviewService(e.reviews, e.votes, e.replies, e.aggregator)
}

func (e *testEnv) user(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Email:        fmt.Sprintf("%s@wanderwise.test", name),
		PasswordHash: "hash",
		FullName:     name,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) review(t *testing.T, author *model.User, rt model.ReviewableType, status model.ReviewStatus) *model.Review {
	t.Helper()
	title := "A " + string(status) + " review"
	r := &model.Review{
		ReviewableType: rt,
		ReviewableID:   1,
		UserID:         &author.ID,
		Rating:         4,
		Title:          &title,
		Status:         status,
	}
	require.NoError(t, e.reviews.Create(context.Background(), r))
	return r
}

func (e *testEnv) statusOf(t *testing.T, id uint) model.ReviewStatus {
	t.Helper()
	r, err := e.reviews.FindByID(context.Background(), id)
	require.NoError(t, err)
	return r.Status
}

func (e *testEnv) auditCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.AuditLog{}).Count(&n).Error)
	return n
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }
