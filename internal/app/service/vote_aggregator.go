package service

import (
	"context"

	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/repository"
)

// VoteAggregator computes helpful-vote summaries. It never writes.
type VoteAggregator interface {
	// Aggregate returns one summary per distinct id; reviews without votes
	// get zero counts and my_vote is 0 for anonymous viewers.
	Aggregate(ctx context.Context, reviewIDs []uint, viewerID *uint) (map[uint]model.VoteSummary, error)
	Enrich(ctx context.Context, reviews []model.ReviewWithAuthor, viewerID *uint) ([]model.ReviewView, error)
}

type voteAggregator struct {
	votes repository.VoteRepository
}

func NewVoteAggregator(votes repository.VoteRepository) VoteAggregator {
	return &voteAggregator{votes: votes}
}

func (a *voteAggregator) Aggregate(ctx context.Context, reviewIDs []uint, viewerID *uint) (map[uint]model.VoteSummary, error) {
	out := make(map[uint]model.VoteSummary, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(reviewIDs))
	for _, id := range reviewIDs {
		if _, seen := out[id]; !seen {
			out[id] = model.VoteSummary{}
			ids = append(ids, id)
		}
	}

	counts, err := a.votes.CountByReviews(ctx, ids)
	if err != nil {
		return nil, err
	}

	var mine map[uint]int
	if viewerID != nil && *viewerID != 0 {
		mine, err = a.votes.VotesByUser(ctx, ids, *viewerID)
		if err != nil {
			return nil, err
		}
	}

	for _, id := range ids {
		c := counts[id]
		out[id] = model.VoteSummary{
			UpCount:      c.UpCount,
			DownCount:    c.DownCount,
			HelpfulCount: c.UpCount - c.DownCount,
			MyVote:       mine[id],
		}
	}
	return out, nil
}

func (a *voteAggregator) Enrich(ctx context.Context, reviews []model.ReviewWithAuthor, viewerID *uint) ([]model.ReviewView, error) {
	views := make([]model.ReviewView, len(reviews))
	if len(reviews) == 0 {
		return views, nil
	}

	ids := make([]uint, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}
	summaries, err := a.Aggregate(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	for i, r := range reviews {
		views[i] = model.ReviewView{ReviewWithAuthor: r, VoteSummary: summaries[r.ID]}
	}
	return views, nil
}
