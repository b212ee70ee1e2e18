package model

type ReviewStatus string

const (
	ReviewStatusDraft     ReviewStatus = "draft"
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusPublished ReviewStatus = "published"
	ReviewStatusRejected  ReviewStatus = "rejected"
	ReviewStatusHidden    ReviewStatus = "hidden"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusDraft, ReviewStatusPending, ReviewStatusPublished, ReviewStatusRejected, ReviewStatusHidden:
		return true
	}
	return false
}

// CanPublish: a rejected review can never be published directly.
func (s ReviewStatus) CanPublish() bool {
	return s != ReviewStatusRejected
}

// CanReject is unconditional; rejecting twice is a no-op update.
func (s ReviewStatus) CanReject() bool {
	return true
}

// IsEditable: published reviews are frozen for owners and admins alike.
func (s ReviewStatus) IsEditable() bool {
	return s != ReviewStatusPublished
}
