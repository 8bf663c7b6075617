package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vi8hal/ytc-sub000/internal/model"
)

// AuditRepositoryInterface is the append-only post audit log. Inserts happen
// outside the campaign transaction, so audit rows survive a rollback.
type AuditRepositoryInterface interface {
	Insert(a *model.PostAudit) error
	ListByCampaign(campaignID int) ([]model.PostAudit, error)
}

type AuditRepository struct {
	DB *sqlx.DB
}

func (r *AuditRepository) Insert(a *model.PostAudit) error {
	a.CreatedAt = time.Now()
	query := `
		INSERT INTO post_audits (campaign_id, owner_id, target_id, comment, posted_at, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRow(
		query,
		a.CampaignID,
		a.OwnerID,
		a.TargetID,
		a.Comment,
		a.PostedAt,
		a.Outcome,
		a.Detail,
		a.CreatedAt,
	).Scan(&a.ID)
}

func (r *AuditRepository) ListByCampaign(campaignID int) ([]model.PostAudit, error) {
	query := `
		SELECT id, campaign_id, owner_id, target_id, comment, posted_at, outcome, detail, created_at
		FROM post_audits
		WHERE campaign_id=$1
		ORDER BY id
	`
	audits := []model.PostAudit{}
	if err := r.DB.Select(&audits, query, campaignID); err != nil {
		return nil, err
	}
	return audits, nil
}

var _ AuditRepositoryInterface = (*AuditRepository)(nil)
