package main

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"

	"github.com/jobfairhq/notification-service-go/internal/channel"
	"github.com/jobfairhq/notification-service-go/internal/config"
	"github.com/jobfairhq/notification-service-go/internal/db"
	"github.com/jobfairhq/notification-service-go/internal/queue"
	"github.com/jobfairhq/notification-service-go/internal/repository"
	"github.com/jobfairhq/notification-service-go/internal/service"
)

const maxDispatchRetries = 3

// requeueHeaders returns the headers for the next delivery attempt, or
// ok=false once the retry cap is exhausted.
func requeueHeaders(headers amqp.Table) (amqp.Table, bool) {
	var count int32
	if v, ok := headers["x-retry-count"].(int32); ok {
		count = v
	}
	if count >= maxDispatchRetries {
		return nil, false
	}
	return amqp.Table{"x-retry-count": count + 1}, true
}

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

	campaignRepo := &repository.CampaignRepository{DB: conn}
	recipientRepo := &repository.RecipientRepository{DB: conn}
	assignmentRepo := &repository.AssignmentRepository{DB: conn}

	campaignService := &service.CampaignService{
		CampaignRepo:   campaignRepo,
		RecipientRepo:  recipientRepo,
		AssignmentRepo: assignmentRepo,
		Email:          channel.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromName),
		SMS:            channel.NewGatewaySender(cfg.SMSGatewayURL, cfg.SMSAPIKey, cfg.SMSSenderID),
		EventName:      cfg.EventName,
		SendDelay:      cfg.SendDelay,
	}

	// Connect to RabbitMQ
	amqpConn, err := amqp.Dial(cfg.AMQPUrl)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer amqpConn.Close()

	ch, err := amqpConn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue.TopicDispatch,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job queue.DispatchJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Println("Invalid job:", err)
				d.Ack(false)
				continue
			}

			if err := campaignService.DispatchRecipient(job.RecipientID); err != nil {
				log.Println("Failed to dispatch recipient:", err)
				// Nack would requeue the message unchanged, so the
				// retry cap is carried by republishing with a bumped
				// counter. Beyond the cap the row keeps whatever
				// channel state it reached.
				headers, ok := requeueHeaders(d.Headers)
				if !ok {
					log.Println("Dropping dispatch job after repeated failures:", string(d.Body))
					d.Ack(false)
					continue
				}
				err := ch.Publish("", q.Name, false, false, amqp.Publishing{
					ContentType:  "application/json",
					DeliveryMode: amqp.Persistent,
					Headers:      headers,
					Body:         d.Body,
				})
				if err != nil {
					log.Println("Failed to requeue dispatch job:", err)
					d.Nack(false, true)
					continue
				}
			}

			d.Ack(false)
		}
	}()

	log.Println("Worker running, waiting for messages...")
	<-forever
}
