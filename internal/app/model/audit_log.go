package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	AuditActionPublish     = "publish"
	AuditActionReject      = "reject"
	AuditActionBulkPublish = "bulk_publish"
	AuditActionBulkReject  = "bulk_reject"
)

// AuditLog is a write-once record of a moderation action.
type AuditLog struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	ActorID        *uint          `gorm:"index" json:"actor_id"`
	ActorName      *string        `gorm:"type:varchar(255)" json:"actor_name"`
	Action         string         `gorm:"type:varchar(50);not null;index" json:"action"`
	ReviewIDs      IDList         `gorm:"column:review_ids" json:"review_ids"`
	ReviewableType *string        `gorm:"type:varchar(20);index" json:"reviewable_type"`
	Details        datatypes.JSON `json:"details"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog builds an entry for actor. ids are normalized and details are
// marshalled to JSON.
func NewAuditLog(actor Actor, action string, ids []uint, reviewableType ReviewableType, details interface{}) (*AuditLog, error) {
	entry := &AuditLog{
		Action:    action,
		ReviewIDs: NormalizeIDs(ids),
	}
	if actor.ID != 0 {
		id := actor.ID
		entry.ActorID = &id
	}
	if actor.Name != "" {
		name := actor.Name
		entry.ActorName = &name
	}
	if reviewableType != "" {
		rt := string(reviewableType)
		entry.ReviewableType = &rt
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("marshal audit details: %w", err)
		}
		entry.Details = datatypes.JSON(raw)
	}
	return entry, nil
}

// IDList is an integer array column (integer[] on PostgreSQL). An empty
// list is stored as NULL and rendered as [].
type IDList []uint

// NormalizeIDs drops zero ids.
func NormalizeIDs(ids []uint) IDList {
	out := make(IDList, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}

func (l IDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	arr := make(pq.Int64Array, len(l))
	for i, id := range l {
		arr[i] = int64(id)
	}
	return arr.Value()
}

func (l *IDList) Scan(src interface{}) error {
	if src == nil {
		*l = IDList{}
		return nil
	}
	var arr pq.Int64Array
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("scan review ids: %w", err)
	}
	out := make(IDList, 0, len(arr))
	for _, v := range arr {
		if v > 0 {
			out = append(out, uint(v))
		}
	}
	*l = out
	return nil
}

func (l IDList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]uint(l))
}

func (IDList) GormDataType() string {
	return "integer[]"
}

func (IDList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "integer[]"
	}
	return "text"
}

// String renders ids the way they appear in CSV exports: {1,2,3}.
func (l IDList) String() string {
	if len(l) == 0 {
		return ""
	}
	v, _ := l.Value()
	s, _ := v.(string)
	return s
}

// BulkPublishDetails is the details payload of bulk_publish entries.
type BulkPublishDetails struct {
	Count           int    `json:"count"`
	SkippedRejected []uint `json:"skippedRejected"`
}

// BulkRejectDetails is the details payload of bulk_reject entries.
type BulkRejectDetails struct {
	Count int            `json:"count"`
	Types map[string]int `json:"types"`
}

// SingleActionDetails is the details payload of publish and reject entries.
type SingleActionDetails struct {
	Single bool `json:"single"`
}
