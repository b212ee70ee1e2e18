package model

import (
	"strings"
	"time"
)

// ReviewableType is the kind of entity a review is attached to.
type ReviewableType string

const (
	ReviewableDestination   ReviewableType = "destination"
	ReviewableActivity      ReviewableType = "activity"
	ReviewableAccommodation ReviewableType = "accommodation"
)

// NormalizeReviewableType folds case and plural forms ("Activities",
// "destinations") into the canonical singular type.
func NormalizeReviewableType(raw string) (ReviewableType, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasSuffix(s, "ies"):
		s = strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	}

	t := ReviewableType(s)
	switch t {
	case ReviewableDestination, ReviewableActivity, ReviewableAccommodation:
		return t, true
	}
	return "", false
}

const (
	MinRating = 1
	MaxRating = 5
)

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

type Review struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	ReviewableType ReviewableType `gorm:"type:varchar(20);not null;index:idx_reviews_reviewable" json:"reviewable_type"`
	ReviewableID   uint           `gorm:"not null;index:idx_reviews_reviewable" json:"reviewable_id"`
	UserID         *uint          `gorm:"index" json:"user_id"`
	Rating         int            `gorm:"not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5" json:"rating"`
	Title          *string        `gorm:"type:varchar(255)" json:"title"`
	Body           *string        `gorm:"type:text" json:"body"`
	Status         ReviewStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

// IsOwnedBy reports whether userID authored the review.
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID != nil && *r.UserID == userID
}

// ReviewWithAuthor is the row shape of listings that join the author name.
type ReviewWithAuthor struct {
	Review
	AuthorName *string `json:"author_name"`
}

// ReviewView is a review enriched with its vote aggregate.
type ReviewView struct {
	ReviewWithAuthor
	VoteSummary
}

// HelpfulVote is one user's up or down vote on a review.
type HelpfulVote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ReviewID  uint      `gorm:"not null;uniqueIndex:idx_helpful_votes_review_user" json:"review_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_helpful_votes_review_user;index" json:"user_id"`
	Vote      int       `gorm:"not null;check:chk_helpful_votes_vote,vote = 1 OR vote = -1" json:"vote"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Review *Review `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"-"`
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (HelpfulVote) TableName() string {
	return "helpful_votes"
}

const (
	VoteUp   = 1
	VoteDown = -1
)

// ParseVoteToken maps the client tokens "up", "down" and "remove" to a vote
// value; remove is reported as 0.
func ParseVoteToken(token string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "up":
		return VoteUp, true
	case "down":
		return VoteDown, true
	case "remove":
		return 0, true
	}
	return 0, false
}

// VoteSummary is the aggregate for one review as seen by one viewer.
type VoteSummary struct {
	UpCount      int64 `json:"up_count"`
	DownCount    int64 `json:"down_count"`
	HelpfulCount int64 `json:"helpful_count"`
	MyVote       int   `json:"my_vote"`
}

// Voter is a single vote joined with the voter's name.
type Voter struct {
	UserID   uint   `json:"user_id"`
	Vote     int    `json:"vote"`
	FullName string `json:"full_name"`
}

// ReviewReply is an append-only comment on a review.
type ReviewReply struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ReviewID  uint      `gorm:"not null;index" json:"review_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AuthorName string `gorm:"->;-:migration" json:"author_name"`

	Review *Review `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"-"`
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ReviewReply) TableName() string {
	return "review_replies"
}
