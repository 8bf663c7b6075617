// internal/service/oauth_service.go
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	appErrors "github.com/vi8hal/ytc-sub000/internal/errors"
	"github.com/vi8hal/ytc-sub000/internal/model"
	"github.com/vi8hal/ytc-sub000/internal/repository"
)

// Scope that allows posting comments on behalf of the connected channel.
const commentScope = "https://www.googleapis.com/auth/youtube.force-ssl"

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// OAuthService implements the two-phase connect flow (authorize URL, code
// exchange) and the refresh grant the token refresher uses.
type OAuthService struct {
	CredentialRepo repository.CredentialRepositoryInterface
	Endpoint       oauth2.Endpoint // overridable in tests, defaults to Google
}

// oauthState travels through the provider as the opaque state parameter and
// carries the credential identity back to the callback.
type oauthState struct {
	CredentialID int    `json:"credential_id"`
	OwnerID      int    `json:"owner_id"`
	Nonce        string `json:"nonce"`
}

// AuthorizeURL builds the provider consent URL for a credential set.
func (s *OAuthService) AuthorizeURL(ownerID, credentialID int) (string, error) {
	cred, err := s.CredentialRepo.GetForOwner(credentialID, ownerID)
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", appErrors.NewCredentialNotFound(credentialID)
	}
	if cred.ClientID == "" || cred.ClientSecret == "" || cred.RedirectURI == "" {
		return "", appErrors.NewValidation("credential %d has no OAuth client configured", credentialID)
	}

	state, err := encodeState(oauthState{
		CredentialID: credentialID,
		OwnerID:      ownerID,
		Nonce:        uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	return s.config(cred).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// HandleCallback exchanges the authorization code returned by the provider,
// persists the tokens and marks the credential connected.
func (s *OAuthService) HandleCallback(ctx context.Context, code, state string) (*model.Credential, error) {
	st, err := decodeState(state)
	if err != nil {
		return nil, appErrors.NewValidation("invalid oauth state")
	}

	cred, err := s.CredentialRepo.GetForOwner(st.CredentialID, st.OwnerID)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, appErrors.NewCredentialNotFound(st.CredentialID)
	}

	tok, err := s.config(cred).Exchange(ctx, code)
	if err != nil {
		return nil, appErrors.NewCredentialRefresh(cred.ID, err)
	}

	refreshToken := tok.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}

	if err := s.CredentialRepo.MarkConnected(cred.ID, tok.AccessToken, refreshToken, tok.Expiry); err != nil {
		return nil, err
	}

	cred.AccessToken = tok.AccessToken
	cred.RefreshToken = refreshToken
	expiry := tok.Expiry
	cred.TokenExpiry = &expiry
	cred.Connected = true
	return cred, nil
}

// Refresh implements TokenExchanger with the provider's refresh grant.
func (s *OAuthService) Refresh(ctx context.Context, cred *model.Credential) (*oauth2.Token, error) {
	src := s.config(cred).TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	return src.Token()
}

func (s *OAuthService) config(cred *model.Credential) *oauth2.Config {
	endpoint := s.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = googleEndpoint
	}
	return &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		RedirectURL:  cred.RedirectURI,
		Scopes:       []string{commentScope},
		Endpoint:     endpoint,
	}
}

func encodeState(st oauthState) (string, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeState(state string) (oauthState, error) {
	var st oauthState
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(raw, &st)
	return st, err
}

var _ TokenExchanger = (*OAuthService)(nil)
