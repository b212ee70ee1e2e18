package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
)

func TestVoteRepository_UpsertKeepsOneRowPerUser(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewVoteRepository(conn)
	ctx := context.Background()

	author := createUser(t, conn, "author", model.RoleUser)
	voter := createUser(t, conn, "voter", model.RoleUser)
	review := createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusPublished, "t")

	require.NoError(t, repo.Upsert(ctx, review.ID, voter.ID, model.VoteUp))
	require.NoError(t, repo.Upsert(ctx, review.ID, voter.ID, model.VoteUp))

	var rows int64
	require.NoError(t, conn.Model(&model.HelpfulVote{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	require.NoError(t, repo.Upsert(ctx, review.ID, voter.ID, model.VoteDown))
	counts, err := repo.CountByReviews(ctx, []uint{review.ID})
	require.NoError(t, err)
	assert.Equal(t, VoteCounts{ReviewID: review.ID, UpCount: 0, DownCount: 1}, counts[review.ID])

	require.NoError(t, repo.Delete(ctx, review.ID, voter.ID))
	counts, err = repo.CountByReviews(ctx, []uint{review.ID})
	require.NoError(t, err)
	_, ok := counts[review.ID]
	assert.False(t, ok)
}

func TestVoteRepository_CountsAndViewerVotes(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewVoteRepository(conn)
	ctx := context.Background()

	author := createUser(t, conn, "author", model.RoleUser)
	r1 := createReview(t, conn, author, model.ReviewableActivity, 1, 5, model.ReviewStatusPublished, "one")
	r2 := createReview(t, conn, author, model.ReviewableActivity, 1, 4, model.ReviewStatusPublished, "two")

	var voters []*model.User
	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		voters = append(voters, createUser(t, conn, name, model.RoleUser))
	}
	require.NoError(t, repo.Upsert(ctx, r1.ID, voters[0].ID, model.VoteUp))
	require.NoError(t, repo.Upsert(ctx, r1.ID, voters[1].ID, model.VoteUp))
	require.NoError(t, repo.Upsert(ctx, r1.ID, voters[2].ID, model.VoteUp))
	require.NoError(t, repo.Upsert(ctx, r1.ID, voters[3].ID, model.VoteDown))
	require.NoError(t, repo.Upsert(ctx, r2.ID, voters[3].ID, model.VoteUp))

	counts, err := repo.CountByReviews(ctx, []uint{r1.ID, r2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[r1.ID].UpCount)
	assert.Equal(t, int64(1), counts[r1.ID].DownCount)
	assert.Equal(t, int64(1), counts[r2.ID].UpCount)

	mine, err := repo.VotesByUser(ctx, []uint{r1.ID, r2.ID}, voters[3].ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{r1.ID: -1, r2.ID: 1}, mine)

	list, err := repo.Voters(ctx, r1.ID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, model.Voter{UserID: voters[0].ID, Vote: 1, FullName: "u1"}, list[0])

	empty, err := repo.CountByReviews(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
