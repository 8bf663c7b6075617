package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vi8hal/ytc-sub000/internal/model"
)

// CredentialRepositoryInterface defines the credential operations used by the
// services. Token fields are written only by the token refresher and the OAuth
// callback; UpdateClient is the explicit credential-edit path and resets both
// tokens and the connected flag.
type CredentialRepositoryInterface interface {
	GetForOwner(id, ownerID int) (*model.Credential, error)
	ListByOwner(ownerID int) ([]model.Credential, error)
	Create(c *model.Credential) error
	UpdateClient(id, ownerID int, clientID, clientSecret, redirectURI string) error
	UpdateTokens(id int, accessToken, refreshToken string, expiry time.Time) error
	MarkConnected(id int, accessToken, refreshToken string, expiry time.Time) error
}

type CredentialRepository struct {
	DB *sqlx.DB
}

const credentialColumns = `id, owner_id, name, api_key, client_id, client_secret, redirect_uri,
		access_token, refresh_token, token_expiry, connected, created_at, updated_at`

// GetForOwner fetches a credential scoped to its owner. Returns nil when no
// matching row exists.
func (r *CredentialRepository) GetForOwner(id, ownerID int) (*model.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE id = $1 AND owner_id = $2
	`
	var c model.Credential
	if err := r.DB.Get(&c, query, id, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

func (r *CredentialRepository) ListByOwner(ownerID int) ([]model.Credential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM credentials
		WHERE owner_id = $1
		ORDER BY id
	`
	credentials := []model.Credential{}
	if err := r.DB.Select(&credentials, query, ownerID); err != nil {
		return nil, err
	}
	return credentials, nil
}

func (r *CredentialRepository) Create(c *model.Credential) error {
	c.CreatedAt = time.Now()
	query := `
		INSERT INTO credentials (owner_id, name, api_key, client_id, client_secret, redirect_uri, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRow(query, c.OwnerID, c.Name, c.APIKey, c.ClientID, c.ClientSecret, c.RedirectURI, c.CreatedAt).Scan(&c.ID)
}

// UpdateClient edits the OAuth client fields. Tokens are cleared and connected
// reset: a credential edited this way has to go through the consent flow again.
func (r *CredentialRepository) UpdateClient(id, ownerID int, clientID, clientSecret, redirectURI string) error {
	query := `
		UPDATE credentials
		SET client_id=$1, client_secret=$2, redirect_uri=$3,
			access_token='', refresh_token='', token_expiry=NULL, connected=FALSE,
			updated_at=NOW()
		WHERE id=$4 AND owner_id=$5
	`
	res, err := r.DB.Exec(query, clientID, clientSecret, redirectURI, id, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CredentialRepository) UpdateTokens(id int, accessToken, refreshToken string, expiry time.Time) error {
	query := `
		UPDATE credentials
		SET access_token=$1, refresh_token=$2, token_expiry=$3, updated_at=NOW()
		WHERE id=$4
	`
	_, err := r.DB.Exec(query, accessToken, refreshToken, expiry, id)
	return err
}

// MarkConnected persists the tokens from a successful code exchange and flips
// the connected flag.
func (r *CredentialRepository) MarkConnected(id int, accessToken, refreshToken string, expiry time.Time) error {
	query := `
		UPDATE credentials
		SET access_token=$1, refresh_token=$2, token_expiry=$3, connected=TRUE, updated_at=NOW()
		WHERE id=$4
	`
	_, err := r.DB.Exec(query, accessToken, refreshToken, expiry, id)
	return err
}

var _ CredentialRepositoryInterface = (*CredentialRepository)(nil)
