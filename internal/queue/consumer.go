package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vespanova/booking-api/internal/repository"
	queue_publisher "github.com/vespanova/booking-api/internal/service"
)

// Consumer drains the booking.events queue and delivers each event to
// the external automation endpoint with a single HTTP POST. Every
// attempt, success or failure, becomes an email_log row; a successful
// call additionally sets the event's workflow flag on the booking.
// Delivery is at-most-once: a failed webhook call is logged and acked,
// not requeued; retries are the automation system's responsibility.
type Consumer struct {
	Bookings   *repository.BookingRepo
	Emails     *repository.EmailLogRepo
	WebhookURL string

	client *http.Client
}

// NewConsumer wires a consumer against the given repositories and
// webhook endpoint.
func NewConsumer(bookings *repository.BookingRepo, emails *repository.EmailLogRepo, webhookURL string) *Consumer {
	return &Consumer{
		Bookings:   bookings,
		Emails:     emails,
		WebhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Run connects to the broker and consumes until ctx is cancelled. It
// keeps a reconnect loop with backoff so a broker restart does not
// take the server down.
func (cs *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(queue_publisher.BrokerURL())
		if err != nil {
			log.Printf("event-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := cs.consumeLoop(ctx, conn); err != nil {
			log.Printf("event-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (cs *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("event-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(EventsQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(EventsQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := cs.handleMessage(ctx, d.Body); err != nil {
				log.Printf("event-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // malformed payload, do not requeue
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleMessage delivers one event. Only an unparseable payload
// returns an error; webhook failures are absorbed here after logging
// so the message is still acked.
func (cs *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var payload struct {
		Event     string `json:"event"`
		BookingID uint64 `json:"booking_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if payload.Event == "" {
		return errors.New("payload missing event name")
	}

	emailType, ok := emailTypes[payload.Event]
	if !ok {
		emailType = payload.Event
	}

	if err := cs.post(ctx, body); err != nil {
		log.Printf("event-consumer: webhook delivery failed for %s (booking %d): %v",
			payload.Event, payload.BookingID, err)
		if logErr := cs.Emails.Append(ctx, payload.BookingID, emailType, "failed", err.Error()); logErr != nil {
			log.Printf("event-consumer: email log append failed: %v", logErr)
		}
		return nil
	}

	if err := cs.Emails.Append(ctx, payload.BookingID, emailType, "success", ""); err != nil {
		log.Printf("event-consumer: email log append failed: %v", err)
	}
	if flag, ok := workflowFlags[payload.Event]; ok {
		if err := cs.Bookings.SetWorkflowFlag(ctx, payload.BookingID, flag); err != nil {
			log.Printf("event-consumer: workflow flag update failed: %v", err)
		}
	}
	return nil
}

func (cs *Consumer) post(ctx context.Context, body []byte) error {
	if cs.WebhookURL == "" {
		return errors.New("no webhook url configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cs.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := cs.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
