package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/db"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, conn *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Email:        fmt.Sprintf("%s@wanderwise.test", name),
		PasswordHash: "hashedpassword",
		FullName:     name,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, NewUserRepository(conn).Create(context.Background(), user))
	return user
}

func createReview(t *testing.T, conn *gorm.DB, author *model.User, rt model.ReviewableType, rid uint, rating int, status model.ReviewStatus, title string) *model.Review {
	t.Helper()
	review := &model.Review{
		ReviewableType: rt,
		ReviewableID:   rid,
		UserID:         &author.ID,
		Rating:         rating,
		Title:          &title,
		Status:         status,
	}
	require.NoError(t, NewReviewRepository(conn).Create(context.Background(), review))
	return review
}
