// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/vi8hal/ytc-sub000/internal/controller"
	"github.com/vi8hal/ytc-sub000/internal/db"
	"github.com/vi8hal/ytc-sub000/internal/handler"
	"github.com/vi8hal/ytc-sub000/internal/queue"
	"github.com/vi8hal/ytc-sub000/internal/repository"
	"github.com/vi8hal/ytc-sub000/internal/service"
	"github.com/vi8hal/ytc-sub000/internal/youtube"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	credentialRepo := &repository.CredentialRepository{DB: db.DB}
	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	auditRepo := &repository.AuditRepository{DB: db.DB}

	// Post audits flow through a queue: RabbitMQ when configured, otherwise
	// the in-memory queue drained by an in-process subscriber.
	var q queue.Queue
	if url := os.Getenv("AMQP_URL"); url != "" {
		amqpQueue, err := queue.DialAMQP(url)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		q = amqpQueue
		log.Println("✅ Connected to RabbitMQ, audits relayed via", queue.AuditTopic)
	} else {
		memQueue := queue.NewInMemoryQueue()
		queue.StartAuditSubscriber(memQueue, auditRepo)
		q = memQueue
	}

	oauthService := &service.OAuthService{CredentialRepo: credentialRepo}

	refresher := &service.TokenRefresher{
		CredentialRepo: credentialRepo,
		Exchanger:      oauthService,
	}

	campaignService := &service.CampaignService{
		Store:        campaignRepo,
		CampaignRepo: campaignRepo,
		Clients:      refresher,
		Poster:       &youtube.CommentPoster{},
		Queue:        q,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}

	credentialController := &controller.CredentialController{
		CredentialRepo: credentialRepo,
		OAuth:          oauthService,
	}

	campaignHandler := &handler.CampaignHandler{
		Repo: campaignRepo,
	}

	r := chi.NewRouter()

	// Credential routes
	r.Post("/credentials", credentialController.CreateCredential)
	r.Get("/credentials", credentialController.ListCredentials)
	r.Put("/credentials/{id}", credentialController.UpdateCredential)
	r.Get("/credentials/{id}/connect", credentialController.Connect)
	r.Get("/oauth2/callback", credentialController.OAuthCallback)

	// Campaign routes
	r.Post("/campaigns/run", campaignController.RunCampaign)
	r.Get("/campaigns", campaignHandler.ListCampaignsHandler)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaignHandlerWithEvents)

	log.Println("🚀 Server running on :8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}
