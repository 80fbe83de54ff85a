package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"

	"motomarket/internal/app/services/scheduling"
	"motomarket/internal/infra/broker/kafka"
	"motomarket/internal/infra/config"
	"motomarket/internal/infra/obs"
)

// notifier consumes booking lifecycle events and emits one notification
// per event. Delivery channels (email, push) hang off this log for now.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS is required for the notifier")
		os.Exit(1)
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "motomarket-notifier", nil, bookingEventHandler{logger: logger}, logger)
	if err != nil {
		logger.Error("kafka consumer setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("consumer close failed", "error", err)
		}
	}()

	topic := cfg.KafkaTopicPrefix + kafka.BookingEventsTopic
	logger.Info("notifier consuming", "topic", topic, "brokers", cfg.KafkaBrokers)
	if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notifier stopped")
}

type bookingEventHandler struct {
	logger *slog.Logger
}

func (h bookingEventHandler) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	var event scheduling.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Warn("undecodable booking event skipped",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return nil
	}

	recipient, message := composeNotification(event)
	h.logger.Info("notification dispatched",
		"event", event.Type,
		"booking_id", event.BookingID,
		"recipient", recipient,
		"message", message,
	)
	return nil
}

// composeNotification decides who hears about an event. Requests go to the
// provider; everything else goes to the customer who booked.
func composeNotification(event scheduling.Event) (recipient, message string) {
	when := event.Date + " " + event.Time
	switch event.Type {
	case scheduling.EventBookingRequested:
		return event.Provider, "New booking request for " + when
	case scheduling.EventBookingConfirmed:
		return event.UserID, "Your booking on " + when + " is confirmed"
	case scheduling.EventBookingDeclined:
		return event.UserID, "Your booking on " + when + " was declined"
	case scheduling.EventBookingCompleted:
		return event.UserID, "Your service visit is complete, leave a review"
	case scheduling.EventBookingCancelled:
		return event.Provider, "Booking for " + when + " was cancelled"
	case scheduling.EventBookingRescheduled:
		return event.Provider, "Booking moved to " + when
	default:
		return event.UserID, "Booking update: " + event.Status
	}
}
