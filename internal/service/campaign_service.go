// internal/service/campaign_service.go
package service

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lib/pq"

	appErrors "github.com/vi8hal/ytc-sub000/internal/errors"
	"github.com/vi8hal/ytc-sub000/internal/model"
	"github.com/vi8hal/ytc-sub000/internal/queue"
	"github.com/vi8hal/ytc-sub000/internal/repository"
)

const (
	// CommentCount is the number of pre-written comments a run chooses from.
	CommentCount = 4
	// MaxTargets bounds how many videos a single run may post to.
	MaxTargets = 10
	// DefaultPostTimeout bounds each external posting call.
	DefaultPostTimeout = 30 * time.Second
)

// Poster submits one comment to one target using an authenticated client.
type Poster interface {
	Post(ctx context.Context, client *resty.Client, targetID, comment string) error
}

type CampaignService struct {
	Store        repository.CampaignTxStoreInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Clients      ClientProvider
	Poster       Poster
	Queue        queue.Queue

	Rand        *rand.Rand       // injected in tests; nil means a fresh source per run
	Now         func() time.Time // defaults to time.Now
	PostTimeout time.Duration    // defaults to DefaultPostTimeout
}

type TargetResult struct {
	TargetID string    `json:"target_id"`
	Comment  string    `json:"comment"`
	PostedAt time.Time `json:"posted_at"`
}

// Result struct for RunCampaign
type RunCampaignResult struct {
	CampaignID int            `json:"campaign_id"`
	Status     string         `json:"status"`
	Results    []TargetResult `json:"results"`
}

// RunCampaign posts one randomly chosen comment to each target, in input
// order, under a single transaction. All targets succeed and the campaign
// commits, or the first posting failure rolls everything back. The whole run
// is synchronous: one call in, one terminal result out, no mid-run abort.
func (s *CampaignService) RunCampaign(ctx context.Context, ownerID, credentialID int, comments []string, targetIDs []string) (*RunCampaignResult, error) {
	if err := validateRun(comments, targetIDs); err != nil {
		return nil, err
	}
	var picks [CommentCount]string
	copy(picks[:], comments)

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	startTime := s.now()
	campaign := &model.Campaign{
		OwnerID:      ownerID,
		CredentialID: credentialID,
		Comments:     pq.StringArray(comments),
		TargetIDs:    pq.StringArray(targetIDs),
		Status:       model.CampaignStatusRunning,
		CreatedAt:    startTime,
	}
	if err := tx.CreateCampaign(campaign); err != nil {
		s.rollback(tx)
		return nil, err
	}

	// Credential problems abort before any target is contacted; the rollback
	// leaves nothing persisted.
	client, err := s.Clients.ObtainClient(ctx, ownerID, credentialID)
	if err != nil {
		s.rollback(tx)
		return nil, err
	}

	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]TargetResult, 0, len(targetIDs))
	for _, targetID := range targetIDs {
		index, offset := SelectComment(picks, rng)
		comment := picks[index]
		postedAt := startTime.Add(offset)

		if err := s.post(ctx, client, targetID, comment); err != nil {
			s.audit(campaign, targetID, comment, postedAt, model.AuditOutcomeFailed, err.Error())
			s.rollback(tx)
			if rbErr := s.CampaignRepo.RecordRolledBack(campaign); rbErr != nil {
				log.Println("⚠️ failed to record rolled back campaign:", rbErr)
			}
			return nil, err
		}
		s.audit(campaign, targetID, comment, postedAt, model.AuditOutcomePosted, "")

		if err := tx.CreateEvent(&model.CampaignEvent{
			CampaignID: campaign.ID,
			TargetID:   targetID,
			Comment:    comment,
			PostedAt:   postedAt,
			Outcome:    model.EventOutcomePosted,
		}); err != nil {
			s.rollback(tx)
			return nil, err
		}

		results = append(results, TargetResult{TargetID: targetID, Comment: comment, PostedAt: postedAt})
	}

	if err := tx.UpdateCampaignStatus(campaign.ID, model.CampaignStatusCommitted); err != nil {
		s.rollback(tx)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	campaign.Status = model.CampaignStatusCommitted

	return &RunCampaignResult{
		CampaignID: campaign.ID,
		Status:     campaign.Status,
		Results:    results,
	}, nil
}

func validateRun(comments, targetIDs []string) error {
	if len(comments) != CommentCount {
		return appErrors.NewValidation("exactly %d comments are required, got %d", CommentCount, len(comments))
	}
	for i, c := range comments {
		if strings.TrimSpace(c) == "" {
			return appErrors.NewValidation("comment %d is empty", i+1)
		}
	}
	if len(targetIDs) == 0 {
		return appErrors.NewValidation("at least one target video is required")
	}
	if len(targetIDs) > MaxTargets {
		return appErrors.NewValidation("at most %d target videos per run, got %d", MaxTargets, len(targetIDs))
	}
	for i, t := range targetIDs {
		if strings.TrimSpace(t) == "" {
			return appErrors.NewValidation("target %d is empty", i+1)
		}
	}
	return nil
}

// post runs one external call under the bounded per-call timeout and
// guarantees the returned error is a PostingError.
func (s *CampaignService) post(ctx context.Context, client *resty.Client, targetID, comment string) error {
	timeout := s.PostTimeout
	if timeout <= 0 {
		timeout = DefaultPostTimeout
	}
	postCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.Poster.Post(postCtx, client, targetID, comment)
	if err == nil {
		return nil
	}
	var postingErr *appErrors.PostingError
	if errors.As(err, &postingErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.NewPostingTimeout(targetID, err)
	}
	return appErrors.NewPostingError(targetID, err)
}

// audit publishes the out-of-band record of one post attempt. Best effort: a
// publish failure is logged, never surfaced into the run.
func (s *CampaignService) audit(c *model.Campaign, targetID, comment string, postedAt time.Time, outcome, detail string) {
	if s.Queue == nil {
		return
	}
	a := &model.PostAudit{
		CampaignID: c.ID,
		OwnerID:    c.OwnerID,
		TargetID:   targetID,
		Comment:    comment,
		PostedAt:   postedAt,
		Outcome:    outcome,
		Detail:     detail,
	}
	if err := s.Queue.Publish(queue.AuditTopic, a); err != nil {
		log.Println("⚠️ failed to publish post audit:", err)
	}
}

// rollback is best effort on every abort path; its own failure is reported
// but never masks the error that caused the abort.
func (s *CampaignService) rollback(tx repository.CampaignTx) {
	if err := tx.Rollback(); err != nil {
		log.Println("⚠️ rollback failed:", err)
	}
}

func (s *CampaignService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
