// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vi8hal/ytc-sub000/internal/controller"
	"github.com/vi8hal/ytc-sub000/internal/repository"
)

// CampaignHandler serves the read-only campaign history consumed by the
// presentation layer
type CampaignHandler struct {
	Repo repository.CampaignRepositoryInterface
}

// GetCampaignHandlerWithEvents returns one campaign with its event log
func (h *CampaignHandler) GetCampaignHandlerWithEvents(w http.ResponseWriter, r *http.Request) {
	ownerID, err := controller.CallerID(r)
	if err != nil {
		controller.WriteError(w, err)
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	campaign, err := h.Repo.GetForOwner(id, ownerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if campaign == nil {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}

	events, err := h.Repo.ListEventsByCampaign(id)
	if err != nil {
		log.Println("Failed to list campaign events:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign":    campaign,
		"events":      events,
		"event_count": len(events),
	})
}

// ListCampaignsHandler returns the caller's recent campaigns with event counts
func (h *CampaignHandler) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := controller.CallerID(r)
	if err != nil {
		controller.WriteError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	campaigns, err := h.Repo.ListRecent(ownerID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type campaignRow struct {
		ID         int    `json:"id"`
		Status     string `json:"status"`
		EventCount int    `json:"event_count"`
		Targets    int    `json:"targets"`
	}

	rows := make([]campaignRow, 0, len(campaigns))
	for _, c := range campaigns {
		count, err := h.Repo.CountEventsByCampaign(c.ID)
		if err != nil {
			log.Println("Failed to count events for campaign", c.ID, ":", err)
			count = 0
		}
		rows = append(rows, campaignRow{
			ID:         c.ID,
			Status:     c.Status,
			EventCount: count,
			Targets:    len(c.TargetIDs),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": rows,
	})
}
