// internal/controller/credential_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/vi8hal/ytc-sub000/internal/model"
	"github.com/vi8hal/ytc-sub000/internal/repository"
	"github.com/vi8hal/ytc-sub000/internal/service"
)

type CredentialController struct {
	CredentialRepo repository.CredentialRepositoryInterface
	OAuth          *service.OAuthService
}

type createCredentialBody struct {
	Name         string `json:"name"`
	APIKey       string `json:"api_key"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

func (b createCredentialBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Name, v.Required, v.Length(1, 100)),
		v.Field(&b.RedirectURI, is.URL),
	)
}

type updateClientBody struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

func (b updateClientBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.ClientID, v.Required),
		v.Field(&b.ClientSecret, v.Required),
		v.Field(&b.RedirectURI, v.Required, is.URL),
	)
}

func (c *CredentialController) CreateCredential(w http.ResponseWriter, r *http.Request) {
	ownerID, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body createCredentialBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := body.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	cred := &model.Credential{
		OwnerID:      ownerID,
		Name:         body.Name,
		APIKey:       body.APIKey,
		ClientID:     body.ClientID,
		ClientSecret: body.ClientSecret,
		RedirectURI:  body.RedirectURI,
	}
	if err := c.CredentialRepo.Create(cred); err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cred)
}

func (c *CredentialController) ListCredentials(w http.ResponseWriter, r *http.Request) {
	ownerID, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	credentials, err := c.CredentialRepo.ListByOwner(ownerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": credentials,
	})
}

// UpdateCredential edits the OAuth client fields. The repository clears token
// state and the connected flag as part of the same update.
func (c *CredentialController) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	ownerID, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var body updateClientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := body.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	if err := c.CredentialRepo.UpdateClient(id, ownerID, body.ClientID, body.ClientSecret, body.RedirectURI); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":        id,
		"connected": false,
	})
}

// Connect starts the OAuth flow: phase one of two.
func (c *CredentialController) Connect(w http.ResponseWriter, r *http.Request) {
	ownerID, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	url, err := c.OAuth.AuthorizeURL(ownerID, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"authorize_url": url,
	})
}

// OAuthCallback is phase two: the provider redirects back here with a code and
// the state issued by Connect. Identity comes from the state, not a header.
func (c *CredentialController) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "missing code or state", http.StatusBadRequest)
		return
	}

	cred, err := c.OAuth.HandleCallback(r.Context(), code, state)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"credential_id": cred.ID,
		"connected":     cred.Connected,
	})
}
