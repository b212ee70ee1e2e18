package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReviewableType(t *testing.T) {
	tests := []struct {
		in   string
		want ReviewableType
		ok   bool
	}{
		{"destination", ReviewableDestination, true},
		{"Destinations", ReviewableDestination, true},
		{"activities", ReviewableActivity, true},
		{"ACTIVITY", ReviewableActivity, true},
		{" accommodations ", ReviewableAccommodation, true},
		{"hotel", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeReviewableType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReviewStatusTransitions(t *testing.T) {
	for _, s := range []ReviewStatus{ReviewStatusDraft, ReviewStatusPending, ReviewStatusPublished, ReviewStatusHidden} {
		assert.True(t, s.CanPublish(), s)
	}
	assert.False(t, ReviewStatusRejected.CanPublish())

	assert.True(t, ReviewStatusRejected.CanReject())
	assert.True(t, ReviewStatusPublished.CanReject())

	assert.False(t, ReviewStatusPublished.IsEditable())
	assert.True(t, ReviewStatusPending.IsEditable())
	assert.True(t, ReviewStatusRejected.IsEditable())

	assert.False(t, ReviewStatus("archived").Valid())
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}

func TestParseVoteToken(t *testing.T) {
	v, ok := ParseVoteToken("up")
	assert.True(t, ok)
	assert.Equal(t, VoteUp, v)

	v, ok = ParseVoteToken("DOWN")
	assert.True(t, ok)
	assert.Equal(t, VoteDown, v)

	v, ok = ParseVoteToken("remove")
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	_, ok = ParseVoteToken("sideways")
	assert.False(t, ok)
}

func TestIDList(t *testing.T) {
	t.Run("empty list is NULL and renders []", func(t *testing.T) {
		v, err := IDList{}.Value()
		require.NoError(t, err)
		assert.Nil(t, v)

		var l IDList
		require.NoError(t, l.Scan(nil))
		raw, err := json.Marshal(l)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})

	t.Run("round trip through array literal", func(t *testing.T) {
		v, err := IDList{1, 3}.Value()
		require.NoError(t, err)
		assert.Equal(t, "{1,3}", v)

		var l IDList
		require.NoError(t, l.Scan([]byte("{1,3}")))
		assert.Equal(t, IDList{1, 3}, l)
		assert.Equal(t, "{1,3}", l.String())
	})

	t.Run("normalize drops zero ids", func(t *testing.T) {
		assert.Equal(t, IDList{4, 5}, NormalizeIDs([]uint{0, 4, 0, 5}))
	})
}

func TestNewAuditLog(t *testing.T) {
	entry, err := NewAuditLog(Actor{ID: 9, Name: "Ada Admin"}, AuditActionPublish, []uint{7}, ReviewableActivity, SingleActionDetails{Single: true})
	require.NoError(t, err)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, uint(9), *entry.ActorID)
	assert.Equal(t, "Ada Admin", *entry.ActorName)
	assert.Equal(t, "activity", *entry.ReviewableType)
	assert.JSONEq(t, `{"single":true}`, string(entry.Details))

	anon, err := NewAuditLog(Actor{}, AuditActionBulkReject, nil, "", nil)
	require.NoError(t, err)
	assert.Nil(t, anon.ActorID)
	assert.Nil(t, anon.ActorName)
	assert.Nil(t, anon.ReviewableType)
	assert.Empty(t, anon.ReviewIDs)
}

func TestPagination(t *testing.T) {
	p := NewPage(0, 0, 50, 200)
	assert.Equal(t, Page{Page: 1, Limit: 50}, p)
	assert.Equal(t, 0, p.Offset())

	p = NewPage(3, 500, 12, 100)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset())

	pg := NewPagination(Page{Page: 2, Limit: 10}, 21)
	assert.Equal(t, 3, pg.TotalPages)
	assert.Equal(t, int64(21), pg.Total)
}
