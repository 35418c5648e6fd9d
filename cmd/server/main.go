// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jobfairhq/notification-service-go/internal/channel"
	"github.com/jobfairhq/notification-service-go/internal/config"
	"github.com/jobfairhq/notification-service-go/internal/controller"
	"github.com/jobfairhq/notification-service-go/internal/db"
	"github.com/jobfairhq/notification-service-go/internal/handler"
	"github.com/jobfairhq/notification-service-go/internal/queue"
	"github.com/jobfairhq/notification-service-go/internal/repository"
	"github.com/jobfairhq/notification-service-go/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	conn, err := db.Init(cfg.DatabaseURL())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := db.ApplyMigrations(cfg.DatabaseURL(), cfg.MigrationsPath); err != nil {
		log.Fatal(err)
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	recipientRepo := &repository.RecipientRepository{DB: conn}
	assignmentRepo := &repository.AssignmentRepository{DB: conn}

	emailSender := channel.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromName)
	smsSender := channel.NewGatewaySender(cfg.SMSGatewayURL, cfg.SMSAPIKey, cfg.SMSSenderID)

	// Scheduled campaigns go through RabbitMQ when available; the
	// in-memory queue keeps single-binary deployments working.
	var q queue.Queue
	amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPUrl)
	if err != nil {
		log.Println("⚠️ RabbitMQ unavailable, using in-memory dispatch queue:", err)
		q = queue.NewInMemoryQueue()
	} else {
		defer amqpQueue.Close()
		q = amqpQueue
	}

	campaignService := &service.CampaignService{
		CampaignRepo:   campaignRepo,
		RecipientRepo:  recipientRepo,
		AssignmentRepo: assignmentRepo,
		Email:          emailSender,
		SMS:            smsSender,
		Queue:          q,
		EventName:      cfg.EventName,
		SendDelay:      cfg.SendDelay,
	}

	if inMem, ok := q.(*queue.InMemoryQueue); ok {
		if err := queue.StartDispatchSubscriber(inMem, campaignService); err != nil {
			log.Fatal("failed to start dispatch subscriber:", err)
		}
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}
	campaignHandler := &handler.CampaignHandler{
		Service: campaignService,
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignHandler.ListCampaignsHandler)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaignStatsHandler)
	r.Post("/campaigns/{id}/retry", campaignController.RetryFailed)
	r.Post("/campaigns/{id}/personalized-preview", campaignController.PersonalizedPreview)

	log.Println("🚀 Server running on", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
