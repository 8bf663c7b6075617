// internal/model/campaign.go
package model

import (
	"time"

	"github.com/lib/pq"
)

// Terminal campaign statuses; "running" only ever exists inside the run
// transaction.
const (
	CampaignStatusRunning    = "running"
	CampaignStatusCommitted  = "committed"
	CampaignStatusRolledBack = "rolled_back"
)

type Campaign struct {
	ID           int            `db:"id" json:"id"`
	OwnerID      int            `db:"owner_id" json:"owner_id"`
	CredentialID int            `db:"credential_id" json:"credential_id"`
	Comments     pq.StringArray `db:"comments" json:"comments"`
	TargetIDs    pq.StringArray `db:"target_ids" json:"target_ids"`
	Status       string         `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
