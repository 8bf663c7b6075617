package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vi8hal/ytc-sub000/internal/model"
)

// CampaignTxStoreInterface opens the transaction scope a campaign run lives
// in. The orchestrator acquires it at the start of a run and releases it on
// every exit path, so no connection leaks past a run.
type CampaignTxStoreInterface interface {
	Begin(ctx context.Context) (CampaignTx, error)
}

// CampaignTx is the transactional unit of one campaign run: the campaign row
// and its events commit together or not at all.
type CampaignTx interface {
	CreateCampaign(c *model.Campaign) error
	CreateEvent(e *model.CampaignEvent) error
	UpdateCampaignStatus(campaignID int, status string) error
	Commit() error
	Rollback() error
}

// CampaignRepositoryInterface holds the read queries consumed by the
// presentation layer plus the non-transactional rolled-back re-insert.
type CampaignRepositoryInterface interface {
	GetForOwner(id, ownerID int) (*model.Campaign, error)
	ListRecent(ownerID, limit int) ([]*model.Campaign, error)
	CountEventsByCampaign(campaignID int) (int, error)
	ListEventsByCampaign(campaignID int) ([]model.CampaignEvent, error)
	RecordRolledBack(c *model.Campaign) error
}

type CampaignRepository struct {
	DB *sqlx.DB
}

// ====================== Transaction scope ======================

func (r *CampaignRepository) Begin(ctx context.Context) (CampaignTx, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &campaignTx{tx: tx}, nil
}

type campaignTx struct {
	tx *sqlx.Tx
}

func (t *campaignTx) CreateCampaign(c *model.Campaign) error {
	if c.Status == "" {
		c.Status = model.CampaignStatusRunning
	}
	query := `
		INSERT INTO campaigns (owner_id, credential_id, comments, target_ids, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return t.tx.QueryRow(query, c.OwnerID, c.CredentialID, c.Comments, c.TargetIDs, c.Status, c.CreatedAt).Scan(&c.ID)
}

func (t *campaignTx) CreateEvent(e *model.CampaignEvent) error {
	if e.Outcome == "" {
		e.Outcome = model.EventOutcomePosted
	}
	e.CreatedAt = time.Now()
	query := `
		INSERT INTO campaign_events (campaign_id, target_id, comment, posted_at, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return t.tx.QueryRow(query, e.CampaignID, e.TargetID, e.Comment, e.PostedAt, e.Outcome, e.CreatedAt).Scan(&e.ID)
}

func (t *campaignTx) UpdateCampaignStatus(campaignID int, status string) error {
	query := `UPDATE campaigns SET status=$1 WHERE id=$2`
	_, err := t.tx.Exec(query, status, campaignID)
	return err
}

func (t *campaignTx) Commit() error {
	return t.tx.Commit()
}

func (t *campaignTx) Rollback() error {
	return t.tx.Rollback()
}

// ====================== Reads ======================

func (r *CampaignRepository) GetForOwner(id, ownerID int) (*model.Campaign, error) {
	query := `
		SELECT id, owner_id, credential_id, comments, target_ids, status, created_at
		FROM campaigns WHERE id=$1 AND owner_id=$2
	`
	var c model.Campaign
	if err := r.DB.Get(&c, query, id, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListRecent(ownerID, limit int) ([]*model.Campaign, error) {
	query := `
		SELECT id, owner_id, credential_id, comments, target_ids, status, created_at
		FROM campaigns
		WHERE owner_id=$1
		ORDER BY id DESC
		LIMIT $2
	`
	campaigns := []*model.Campaign{}
	if err := r.DB.Select(&campaigns, query, ownerID, limit); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *CampaignRepository) CountEventsByCampaign(campaignID int) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaign_events WHERE campaign_id=$1`, campaignID).Scan(&count)
	return count, err
}

func (r *CampaignRepository) ListEventsByCampaign(campaignID int) ([]model.CampaignEvent, error) {
	query := `
		SELECT id, campaign_id, target_id, comment, posted_at, outcome, created_at
		FROM campaign_events
		WHERE campaign_id=$1
		ORDER BY id
	`
	events := []model.CampaignEvent{}
	if err := r.DB.Select(&events, query, campaignID); err != nil {
		return nil, err
	}
	return events, nil
}

// RecordRolledBack re-inserts a campaign whose transaction was rolled back,
// keeping its original id (the sequence value survives the rollback) and the
// terminal rolled_back status. Runs outside any transaction: this row plus the
// post audit log is what operators reconcile against.
func (r *CampaignRepository) RecordRolledBack(c *model.Campaign) error {
	query := `
		INSERT INTO campaigns (id, owner_id, credential_id, comments, target_ids, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	c.Status = model.CampaignStatusRolledBack
	_, err := r.DB.Exec(query, c.ID, c.OwnerID, c.CredentialID, c.Comments, c.TargetIDs, c.Status, c.CreatedAt)
	return err
}

var _ CampaignTxStoreInterface = (*CampaignRepository)(nil)
var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
