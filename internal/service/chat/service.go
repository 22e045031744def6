package chat

import (
	"context"
	"strings"
	"time"

	"github.com/matcha-app/matcha-core/internal/app"
	"github.com/matcha-app/matcha-core/internal/db"
	apperr "github.com/matcha-app/matcha-core/internal/errors"
	"github.com/matcha-app/matcha-core/internal/notify"
	"github.com/matcha-app/matcha-core/internal/repository"
)

// Service is the messaging gate: it authorizes chat access on connection
// and block state and reads/appends the message log. The wire delivery of
// messages is the external real-time layer's job.
type Service struct {
	appCtx    *app.AppContext
	graphRepo *repository.GraphRepository
	chatRepo  *repository.ChatRepository
}

// NewService creates the chat service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		graphRepo: repository.NewGraphRepository(appCtx.DB),
		chatRepo:  repository.NewChatRepository(appCtx.DB),
	}
}

// Message is one chat message as handed to callers.
type Message struct {
	SenderID    uint64
	RecipientID uint64
	SentAt      time.Time
	Body        string
}

// List returns the conversation between the requester and the other user,
// ascending by timestamp.
//
// Behavior:
//   - Fails with ErrNotConnected when no connection exists for the pair.
//   - Fails with ErrBlocked when a block exists in either direction,
//     even for pairs that are still connected.
func (s *Service) List(ctx context.Context, requesterID, otherID uint64) ([]Message, error) {
	s.appCtx.Logger.Debug("List called", "requester", requesterID, "other", otherID)

	if err := s.authorize(ctx, requesterID, otherID); err != nil {
		return nil, err
	}

	rows, err := s.chatRepo.ListBetween(ctx, requesterID, otherID)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, Message{
			SenderID:    row.SenderID,
			RecipientID: row.RecipientID,
			SentAt:      row.SentAt,
			Body:        row.Body,
		})
	}
	return messages, nil
}

// Send appends a message from sender to recipient and emits a message event
// for the real-time delivery layer. The body is stored verbatim; delivery
// failures never fail the send.
//
// Same authorization preconditions as List, plus ErrValidation on an empty
// body.
func (s *Service) Send(ctx context.Context, senderID, recipientID uint64, body string) (*Message, error) {
	s.appCtx.Logger.Debug("Send called", "sender", senderID, "recipient", recipientID)

	if strings.TrimSpace(body) == "" {
		return nil, apperr.Validationf("message body is empty")
	}
	if err := s.authorize(ctx, senderID, recipientID); err != nil {
		return nil, err
	}

	msg := db.ChatMessage{
		SenderID:    senderID,
		RecipientID: recipientID,
		SentAt:      time.Now().UTC(),
		Body:        body,
	}
	if err := s.chatRepo.Append(ctx, &msg); err != nil {
		return nil, err
	}

	if s.appCtx.Notifier != nil {
		ev := notify.Event{
			Type:        notify.EventMessage,
			ActorID:     senderID,
			RecipientID: recipientID,
			At:          msg.SentAt,
		}
		if err := s.appCtx.Notifier.Dispatch(ctx, ev); err != nil {
			s.appCtx.Logger.Warn("message notification failed",
				"recipient", recipientID, "err", err)
		}
	}

	return &Message{
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		SentAt:      msg.SentAt,
		Body:        msg.Body,
	}, nil
}

// authorize enforces the chat gate: connection required, no block in either
// direction.
func (s *Service) authorize(ctx context.Context, userA, userB uint64) error {
	connected, err := s.graphRepo.IsConnected(ctx, userA, userB)
	if err != nil {
		return err
	}
	if !connected {
		return apperr.ErrNotConnected
	}

	blocked, err := s.graphRepo.IsBlocked(ctx, userA, userB)
	if err != nil {
		return err
	}
	if blocked {
		return apperr.ErrBlocked
	}

	return nil
}
