package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"pazar/internal/models"
	"pazar/internal/repositories"
	"pazar/pkg/rabbitmq"
)

// Service turns events into inbox messages.
type Service struct {
	messages repositories.MessageRepository
}

// NewService creates a new notification service.
func NewService(messages repositories.MessageRepository) *Service {
	return &Service{messages: messages}
}

// Handle stores the message for one event.
func (s *Service) Handle(ctx context.Context, event Event) error {
	msg := &models.Message{
		SenderID:   event.SenderID,
		ReceiverID: event.RecipientID,
		ListingID:  event.ListingID,
		Content:    event.Content(),
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// Inbox lists the newest messages received by userID.
func (s *Service) Inbox(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	return s.messages.ListMessagesByReceiver(ctx, userID, limit)
}

// Bindings routes every event type to Handle for an AMQP consumer. Malformed
// bodies are dropped; storage failures are requeued.
func (s *Service) Bindings() map[string]rabbitmq.Handler {
	handle := func(body []byte) bool {
		var event Event
		if err := json.Unmarshal(body, &event); err != nil {
			log.Printf("component=notification msg=\"malformed event dropped\" err=%v", err)
			return true
		}
		if err := s.Handle(context.Background(), event); err != nil {
			log.Printf("component=notification msg=\"delivery failed\" type=%s err=%v", event.Type, err)
			return false
		}
		return true
	}

	bindings := make(map[string]rabbitmq.Handler, len(AllEventTypes))
	for _, t := range AllEventTypes {
		bindings[string(t)] = handle
	}
	return bindings
}
