// internal/model/campaign_event.go
package model

import "time"

const EventOutcomePosted = "posted"

// CampaignEvent records one successfully posted comment. Rows are append-only
// and exist only for targets that succeeded.
type CampaignEvent struct {
	ID         int       `db:"id" json:"id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	TargetID   string    `db:"target_id" json:"target_id"`
	Comment    string    `db:"comment" json:"comment"`
	PostedAt   time.Time `db:"posted_at" json:"posted_at"`
	Outcome    string    `db:"outcome" json:"outcome"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
