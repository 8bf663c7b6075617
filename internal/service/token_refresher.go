// internal/service/token_refresher.go
package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	appErrors "github.com/vi8hal/ytc-sub000/internal/errors"
	"github.com/vi8hal/ytc-sub000/internal/model"
	"github.com/vi8hal/ytc-sub000/internal/repository"
)

// Tokens this close to expiry are refreshed before use.
const refreshWindow = 5 * time.Minute

// TokenExchanger performs the provider's refresh-grant exchange.
type TokenExchanger interface {
	Refresh(ctx context.Context, cred *model.Credential) (*oauth2.Token, error)
}

// ClientProvider turns an owner-scoped credential into a live authenticated
// client. This is the dependency the orchestrator sees.
type ClientProvider interface {
	ObtainClient(ctx context.Context, ownerID, credentialID int) (*resty.Client, error)
}

type TokenRefresher struct {
	CredentialRepo repository.CredentialRepositoryInterface
	Exchanger      TokenExchanger
	Now            func() time.Time // defaults to time.Now

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// ObtainClient returns an HTTP client authenticated for the credential set,
// refreshing the stored tokens first when the expiry is unset or within five
// minutes. Refresh-and-persist is serialized per credential id: last-writer-
// wins between two concurrent refreshes would silently drop a rotated refresh
// token.
func (t *TokenRefresher) ObtainClient(ctx context.Context, ownerID, credentialID int) (*resty.Client, error) {
	lock := t.lockFor(credentialID)
	lock.Lock()
	defer lock.Unlock()

	cred, err := t.CredentialRepo.GetForOwner(credentialID, ownerID)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, appErrors.NewCredentialNotFound(credentialID)
	}
	if cred.AccessToken == "" || cred.RefreshToken == "" {
		return nil, appErrors.NewCredentialIncomplete(credentialID)
	}

	if t.needsRefresh(cred) {
		if err := t.refresh(ctx, cred); err != nil {
			return nil, err
		}
	}

	client := resty.New().SetAuthToken(cred.AccessToken)
	if cred.APIKey != "" {
		client.SetQueryParam("key", cred.APIKey)
	}
	return client, nil
}

func (t *TokenRefresher) needsRefresh(cred *model.Credential) bool {
	if cred.TokenExpiry == nil {
		return true
	}
	return cred.TokenExpiry.Before(t.now().Add(refreshWindow))
}

func (t *TokenRefresher) refresh(ctx context.Context, cred *model.Credential) error {
	tok, err := t.Exchanger.Refresh(ctx, cred)
	if err != nil {
		return appErrors.NewCredentialRefresh(cred.ID, err)
	}

	refreshToken := tok.RefreshToken
	if refreshToken == "" {
		// Provider did not rotate; keep the stored one.
		refreshToken = cred.RefreshToken
	}

	if err := t.CredentialRepo.UpdateTokens(cred.ID, tok.AccessToken, refreshToken, tok.Expiry); err != nil {
		return err
	}

	cred.AccessToken = tok.AccessToken
	cred.RefreshToken = refreshToken
	expiry := tok.Expiry
	cred.TokenExpiry = &expiry
	log.Println("🔑 refreshed access token for credential", cred.ID)
	return nil
}

func (t *TokenRefresher) lockFor(credentialID int) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locks == nil {
		t.locks = make(map[int]*sync.Mutex)
	}
	lock, ok := t.locks[credentialID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[credentialID] = lock
	}
	return lock
}

func (t *TokenRefresher) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

var _ ClientProvider = (*TokenRefresher)(nil)
