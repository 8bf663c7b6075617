// internal/model/credential.go
package model

import "time"

// Credential is a named API key + OAuth client bundle belonging to one user.
// Connected is true only after a successful OAuth code exchange; editing the
// client id/secret/redirect clears the token fields and resets it.
type Credential struct {
	ID           int        `db:"id" json:"id"`
	OwnerID      int        `db:"owner_id" json:"owner_id"`
	Name         string     `db:"name" json:"name"`
	APIKey       string     `db:"api_key" json:"-"`
	ClientID     string     `db:"client_id" json:"client_id"`
	ClientSecret string     `db:"client_secret" json:"-"`
	RedirectURI  string     `db:"redirect_uri" json:"redirect_uri"`
	AccessToken  string     `db:"access_token" json:"-"`
	RefreshToken string     `db:"refresh_token" json:"-"`
	TokenExpiry  *time.Time `db:"token_expiry" json:"token_expiry,omitempty"`
	Connected    bool       `db:"connected" json:"connected"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
