// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"

	v "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/vi8hal/ytc-sub000/internal/service"
)

// CampaignRunner is the orchestrator surface the controller needs.
type CampaignRunner interface {
	RunCampaign(ctx context.Context, ownerID, credentialID int, comments []string, targetIDs []string) (*service.RunCampaignResult, error)
}

type CampaignController struct {
	CampaignService CampaignRunner
}

type runCampaignBody struct {
	CredentialID int      `json:"credential_id"`
	Comments     []string `json:"comments"`
	VideoIDs     []string `json:"video_ids"`
}

func (b runCampaignBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.CredentialID, v.Required, v.Min(1)),
		v.Field(&b.Comments, v.Required, v.Length(service.CommentCount, service.CommentCount), v.Each(v.Required)),
		v.Field(&b.VideoIDs, v.Required, v.Length(1, service.MaxTargets), v.Each(v.Required)),
	)
}

func (c *CampaignController) RunCampaign(w http.ResponseWriter, r *http.Request) {
	ownerID, err := CallerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body runCampaignBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := body.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	result, err := c.CampaignService.RunCampaign(r.Context(), ownerID, body.CredentialID, body.Comments, body.VideoIDs)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
