package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	appErrors "github.com/vi8hal/ytc-sub000/internal/errors"
	"github.com/vi8hal/ytc-sub000/internal/model"
)

//fakeCredentialRepo keeps credentials in memory and counts token writes.
type fakeCredentialRepo struct {
	mu           sync.Mutex
	creds        map[int]*model.Credential
	tokenUpdates int
}

func (f *fakeCredentialRepo) GetForOwner(id, ownerID int) (*model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[id]
	if !ok || c.OwnerID != ownerID {
		return nil, nil
	}
	cp := *c
	if c.TokenExpiry != nil {
		expiry := *c.TokenExpiry
		cp.TokenExpiry = &expiry
	}
	return &cp, nil
}

func (f *fakeCredentialRepo) UpdateTokens(id int, accessToken, refreshToken string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.creds[id]
	c.AccessToken = accessToken
	c.RefreshToken = refreshToken
	e := expiry
	c.TokenExpiry = &e
	f.tokenUpdates++
	return nil
}

func (f *fakeCredentialRepo) ListByOwner(ownerID int) ([]model.Credential, error) { return nil, nil }
func (f *fakeCredentialRepo) Create(c *model.Credential) error                    { return nil }
func (f *fakeCredentialRepo) UpdateClient(id, ownerID int, clientID, clientSecret, redirectURI string) error {
	return nil
}
func (f *fakeCredentialRepo) MarkConnected(id int, accessToken, refreshToken string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.creds[id]
	c.AccessToken = accessToken
	c.RefreshToken = refreshToken
	e := expiry
	c.TokenExpiry = &e
	c.Connected = true
	return nil
}

func (f *fakeCredentialRepo) stored(id int) model.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.creds[id]
}

type fakeExchanger struct {
	mu    sync.Mutex
	calls int
	fn    func(cred *model.Credential) (*oauth2.Token, error)
}

func (f *fakeExchanger) Refresh(ctx context.Context, cred *model.Credential) (*oauth2.Token, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(cred)
}

func (f *fakeExchanger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func connectedCredential(expiry *time.Time) *model.Credential {
	return &model.Credential{
		ID:           1,
		OwnerID:      10,
		Name:         "main",
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost/cb",
		AccessToken:  "access-0",
		RefreshToken: "refresh-0",
		TokenExpiry:  expiry,
		Connected:    true,
	}
}

func TestObtainClientCredentialNotFound(t *testing.T) {
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{}}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: &fakeExchanger{}}

	_, err := refresher.ObtainClient(context.Background(), 10, 99)

	var notFound *appErrors.ErrCredentialNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 99, notFound.CredentialID)
}

func TestObtainClientWrongOwnerIsNotFound(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{1: connectedCredential(&expiry)}}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: &fakeExchanger{}}

	_, err := refresher.ObtainClient(context.Background(), 11, 1)

	var notFound *appErrors.ErrCredentialNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestObtainClientCredentialIncomplete(t *testing.T) {
	cred := connectedCredential(nil)
	cred.AccessToken = ""
	cred.RefreshToken = ""
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{1: cred}}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: &fakeExchanger{}}

	_, err := refresher.ObtainClient(context.Background(), 10, 1)

	var incomplete *appErrors.ErrCredentialIncomplete
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 1, incomplete.CredentialID)
}

func TestObtainClientSkipsRefreshWhenTokenFresh(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{1: connectedCredential(&expiry)}}
	exchanger := &fakeExchanger{}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: exchanger}

	client, err := refresher.ObtainClient(context.Background(), 10, 1)

	require.NoError(t, err)
	assert.Equal(t, 0, exchanger.callCount())
	assert.Equal(t, "access-0", client.Token)
	assert.Equal(t, 0, repo.tokenUpdates)
}

func TestObtainClientRefreshesNearExpiry(t *testing.T) {
	expiry := time.Now().Add(2 * time.Minute)
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{1: connectedCredential(&expiry)}}
	newExpiry := time.Now().Add(time.Hour)
	exchanger := &fakeExchanger{fn: func(cred *model.Credential) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: newExpiry}, nil
	}}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: exchanger}

	client, err := refresher.ObtainClient(context.Background(), 10, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, exchanger.callCount())
	assert.Equal(t, "access-1", client.Token)

	stored := repo.stored(1)
	assert.Equal(t, "access-1", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
	assert.True(t, stored.TokenExpiry.Equal(newExpiry))
}

func TestObtainClientRefreshesWhenExpiryUnset(t *testing.T) {
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{1: connectedCredential(nil)}}
	exchanger := &fakeExchanger{fn: func(cred *model.Credential) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "access-1", Expiry: time.Now().Add(time.Hour)}, nil
	}}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: exchanger}

	_, err := refresher.ObtainClient(context.Background(), 10, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, exchanger.callCount())
}

// The provider is not required to rotate the refresh token. A response without
// one must keep the stored token; a rotated one must replace it exactly once.
func TestRefreshTokenRotationIsOptional(t *testing.T) {
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{1: connectedCredential(nil)}}
	rotate := false
	exchanger := &fakeExchanger{fn: func(cred *model.Credential) (*oauth2.Token, error) {
		tok := &oauth2.Token{AccessToken: "access-1"} // Expiry zero: still stale
		if rotate {
			tok.RefreshToken = "refresh-rotated"
		}
		return tok, nil
	}}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: exchanger}

	_, err := refresher.ObtainClient(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, "refresh-0", repo.stored(1).RefreshToken)

	_, err = refresher.ObtainClient(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, "refresh-0", repo.stored(1).RefreshToken)

	rotate = true
	_, err = refresher.ObtainClient(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, "refresh-rotated", repo.stored(1).RefreshToken)
	assert.Equal(t, 3, repo.tokenUpdates)
}

func TestObtainClientRefreshFailure(t *testing.T) {
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{1: connectedCredential(nil)}}
	exchanger := &fakeExchanger{fn: func(cred *model.Credential) (*oauth2.Token, error) {
		return nil, errors.New("invalid_grant")
	}}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: exchanger}

	_, err := refresher.ObtainClient(context.Background(), 10, 1)

	var refreshErr *appErrors.ErrCredentialRefresh
	require.ErrorAs(t, err, &refreshErr)
	assert.Equal(t, 1, refreshErr.CredentialID)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Equal(t, 0, repo.tokenUpdates)
}

// Two concurrent refreshes for the same credential must not race: the second
// caller re-reads inside the critical section, sees the fresh token the first
// caller persisted, and skips its own exchange.
func TestConcurrentRefreshSerialized(t *testing.T) {
	repo := &fakeCredentialRepo{creds: map[int]*model.Credential{1: connectedCredential(nil)}}
	exchanger := &fakeExchanger{fn: func(cred *model.Credential) (*oauth2.Token, error) {
		time.Sleep(20 * time.Millisecond)
		return &oauth2.Token{
			AccessToken:  "access-" + cred.RefreshToken,
			RefreshToken: "rotated-" + cred.RefreshToken,
			Expiry:       time.Now().Add(time.Hour),
		}, nil
	}}
	refresher := &TokenRefresher{CredentialRepo: repo, Exchanger: exchanger}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := refresher.ObtainClient(context.Background(), 10, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, exchanger.callCount())
	assert.Equal(t, "rotated-refresh-0", repo.stored(1).RefreshToken)
}
