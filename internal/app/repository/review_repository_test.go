package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"gorm.io/gorm"
)

func TestReviewRepository_ListPublished(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)
	ctx := context.Background()

	author := createUser(t, conn, "lin", model.RoleUser)
	createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusPublished, "kayak tour")
	createReview(t, conn, author, model.ReviewableActivity, 1, 3, model.ReviewStatusPending, "pending one")
	createReview(t, conn, author, model.ReviewableActivity, 2, 4, model.ReviewStatusPublished, "other activity")
	createReview(t, conn, author, model.ReviewableDestination, 1, 4, model.ReviewStatusPublished, "other type")
	newest := createReview(t, conn, author, model.ReviewableActivity, 1, 2, model.ReviewStatusPublished, "second")

	rows, err := repo.ListPublished(ctx, model.ReviewableActivity, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID, "newest first")
	require.NotNil(t, rows[0].AuthorName)
	assert.Equal(t, "lin", *rows[0].AuthorName)
}

func TestReviewRepository_ListByUser(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)
	ctx := context.Background()

	me := createUser(t, conn, "me", model.RoleUser)
	other := createUser(t, conn, "other", model.RoleUser)
	for i := 0; i < 5; i++ {
		createReview(t, conn, me, model.ReviewableDestination, uint(i+1), 4, model.ReviewStatusPending, "mine")
	}
	createReview(t, conn, other, model.ReviewableDestination, 1, 4, model.ReviewStatusPending, "theirs")

	rows, total, err := repo.ListByUser(ctx, me.ID, model.Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.True(t, r.IsOwnedBy(me.ID))
	}
}

func TestReviewRepository_ListAdmin(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)
	ctx := context.Background()

	alice := createUser(t, conn, "Alice Walker", model.RoleUser)
	bob := createUser(t, conn, "Bob Stone", model.RoleUser)
	createReview(t, conn, alice, model.ReviewableActivity, 7, 5, model.ReviewStatusPending, "Sunset Cruise")
	createReview(t, conn, alice, model.ReviewableDestination, 3, 2, model.ReviewStatusRejected, "Crowded beach")
	createReview(t, conn, bob, model.ReviewableActivity, 7, 1, model.ReviewStatusPublished, "Boring")
	createReview(t, conn, bob, model.ReviewableAccommodation, 9, 4, model.ReviewStatusPending, "100% cozy")

	tests := []struct {
		name      string
		filter    AdminReviewFilter
		wantTotal int64
	}{
		{"no filter", AdminReviewFilter{}, 4},
		{"status", AdminReviewFilter{Status: model.ReviewStatusPending}, 2},
		{"type and id", AdminReviewFilter{ReviewableType: model.ReviewableActivity, ReviewableID: 7}, 2},
		{"search title case-insensitive", AdminReviewFilter{Query: "sunset"}, 1},
		{"search author name", AdminReviewFilter{Query: "bob"}, 2},
		{"search literal percent", AdminReviewFilter{Query: "100%"}, 1},
		{"combined", AdminReviewFilter{Status: model.ReviewStatusPending, Query: "alice"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, total, err := repo.ListAdmin(ctx, tt.filter, model.Page{Page: 1, Limit: 50})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, rows, int(tt.wantTotal))
		})
	}

	t.Run("sort by rating asc", func(t *testing.T) {
		rows, _, err := repo.ListAdmin(ctx, AdminReviewFilter{SortBy: "rating", SortOrder: "asc"}, model.Page{Page: 1, Limit: 50})
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, 1, rows[0].Rating)
		assert.Equal(t, 5, rows[3].Rating)
	})

	t.Run("pagination", func(t *testing.T) {
		rows, total, err := repo.ListAdmin(ctx, AdminReviewFilter{}, model.Page{Page: 2, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, rows, 1)
	})
}

func TestReviewRepository_UpdateStatus(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)
	ctx := context.Background()

	author := createUser(t, conn, "kim", model.RoleUser)
	r1 := createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusPending, "a")
	r2 := createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusPending, "b")

	n, err := repo.UpdateStatus(ctx, []uint{r1.ID, r2.ID}, model.ReviewStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.UpdateStatus(ctx, nil, model.ReviewStatusPublished)
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := repo.FindByIDs(ctx, []uint{r2.ID, r1.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, r1.ID, rows[0].ID)
	assert.Equal(t, model.ReviewStatusPublished, rows[1].Status)

	draft := createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusDraft, "c")
	n, err = repo.UpdateEditable(ctx, draft.ID, map[string]interface{}{"rating": 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	found, err := repo.FindWithAuthor(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Rating)

	n, err = repo.UpdateEditable(ctx, r2.ID, map[string]interface{}{"rating": 1})
	require.NoError(t, err)
	assert.Zero(t, n, "published rows are not touched")
	found, err = repo.FindWithAuthor(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Rating)

	_, err = repo.FindWithAuthor(ctx, 4242)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.WithTx(conn).FindByIDForUpdate(ctx, 4242)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReviewRepository_CountByStatus(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReviewRepository(conn)

	author := createUser(t, conn, "kim", model.RoleUser)
	createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusPending, "a")
	createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusPending, "b")
	createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusRejected, "c")

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[model.ReviewStatus]int64{
		model.ReviewStatusPending:  2,
		model.ReviewStatusRejected: 1,
	}, counts)
}
