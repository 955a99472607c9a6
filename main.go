package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"

	"productapi/internal/app"
	"productapi/internal/config"
	"productapi/internal/services"
)

func main() {
	// --- Configuration ---
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Application ---
	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("Error releasing resources: %v", err)
		}
	}()

	// --- Product event consumer ---
	// Logs every published product event as an audit trail.
	if application.MQ != nil {
		if err := application.MQ.ConsumeProductEvents(logProductEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- HTTP server ---
	go func() {
		log.Printf("Starting server on %s", cfg.AppPort)
		if err := application.Listen(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if err := application.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

func logProductEvent(msg amqp.Delivery) error {
	var event services.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return err
	}
	log.Printf("Product event %s (tag %d): product %d", msg.RoutingKey, msg.DeliveryTag, event.Product.ID)
	return nil
}
