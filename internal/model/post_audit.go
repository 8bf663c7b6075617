// internal/model/post_audit.go
package model

import "time"

const (
	AuditOutcomePosted = "posted"
	AuditOutcomeFailed = "failed"
)

// PostAudit is the out-of-band record of one external post attempt. It is
// written outside the campaign transaction so it survives a rollback, which is
// what lets operators reconcile comments that were already posted when a later
// target in the same run failed.
type PostAudit struct {
	ID         int       `db:"id" json:"id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	OwnerID    int       `db:"owner_id" json:"owner_id"`
	TargetID   string    `db:"target_id" json:"target_id"`
	Comment    string    `db:"comment" json:"comment"`
	PostedAt   time.Time `db:"posted_at" json:"posted_at"`
	Outcome    string    `db:"outcome" json:"outcome"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
