package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/request-desk/internal/access"
	"github.com/spec-kit/request-desk/internal/domain"
	"github.com/spec-kit/request-desk/internal/events"
	"github.com/spec-kit/request-desk/internal/query"
	"github.com/spec-kit/request-desk/internal/store"
	apperrors "github.com/spec-kit/request-desk/pkg/util/errorutil"
)

// maxMessageRunes bounds thread message content.
const maxMessageRunes = 4000

// TicketService coordinates ticket workflows. Every operation takes the
// already-authenticated caller explicitly; there is no ambient identity.
type TicketService struct {
	store      store.TicketStore
	dispatcher events.Dispatcher
	now        func() time.Time
}

// Dependencies bundles collaborators for the ticket service.
type Dependencies struct {
	Store      store.TicketStore
	Dispatcher events.Dispatcher
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps Dependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// ListTickets returns the caller's visible tickets windowed by params.
func (s *TicketService) ListTickets(ctx context.Context, caller domain.Identity, params query.PageParams) (query.Paged[domain.Ticket], error) {
	if err := requireCaller(caller); err != nil {
		return query.Paged[domain.Ticket]{}, err
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return query.Paged[domain.Ticket]{}, err
	}
	visible := access.VisibleSubset(caller, all)
	return query.Paginate(visible, params), nil
}

// GetTicket fetches a single ticket, enforcing visibility. A ticket the
// caller may not view is reported as Forbidden, never as NotFound, so the
// two stay distinguishable.
func (s *TicketService) GetTicket(ctx context.Context, caller domain.Identity, id string) (*domain.Ticket, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	ticket, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !access.CanView(caller, ticket) {
		return nil, apperrors.NewForbidden("not allowed to view this ticket")
	}
	return ticket, nil
}

// CreateTicket opens a new ticket owned by the caller. The description is
// synthesized into the thread as its first message.
func (s *TicketService) CreateTicket(ctx context.Context, caller domain.Identity, title, description, category string) (*domain.Ticket, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" || strings.TrimSpace(category) == "" {
		return nil, apperrors.NewValidationError("title, description, category required", nil)
	}
	parsedCategory, err := domain.ParseCategory(strings.TrimSpace(category))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": category})
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:               uuid.NewString(),
		Title:            title,
		Description:      description,
		Category:         parsedCategory,
		Status:           domain.TicketStatusOpen,
		OwnerID:          caller.ID,
		OwnerDisplayName: caller.DisplayName,
		CreatedAt:        now,
		UpdatedAt:        now,
		Messages: []domain.Message{{
			ID:                uuid.NewString(),
			AuthorID:          caller.ID,
			AuthorDisplayName: caller.DisplayName,
			Content:           description,
			CreatedAt:         now,
		}},
	}
	if err := s.store.Insert(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    callerActor(caller),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// UpdateStatus transitions a ticket between states. Every edge is legal;
// only admins may transition.
func (s *TicketService) UpdateStatus(ctx context.Context, caller domain.Identity, ticketID, rawStatus string) (*domain.Ticket, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if !access.CanChangeStatus(caller) {
		return nil, apperrors.NewForbidden("only admins may change ticket status")
	}
	newStatus, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": rawStatus})
	}

	var oldStatus domain.TicketStatus
	ticket, err := s.store.Mutate(ctx, ticketID, func(t *domain.Ticket) error {
		oldStatus = t.Status
		t.Status = newStatus
		t.UpdatedAt = s.stamp(t.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    callerActor(caller),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// AppendMessage adds a message to a ticket thread. Permission is evaluated
// inside the store's critical section so a denied append writes nothing.
func (s *TicketService) AppendMessage(ctx context.Context, caller domain.Identity, ticketID, content string) (*domain.Ticket, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content required", nil)
	}
	if utf8.RuneCountInString(content) > maxMessageRunes {
		return nil, apperrors.NewValidationError("message content too long", map[string]any{"max": maxMessageRunes})
	}

	var messageID string
	ticket, err := s.store.Mutate(ctx, ticketID, func(t *domain.Ticket) error {
		if !access.CanPostMessage(caller, t) {
			return apperrors.NewForbidden("not allowed to post to this ticket")
		}
		now := s.stamp(t.UpdatedAt)
		messageID = uuid.NewString()
		t.Messages = append(t.Messages, domain.Message{
			ID:                messageID,
			AuthorID:          caller.ID,
			AuthorDisplayName: caller.DisplayName,
			Content:           content,
			CreatedAt:         now,
		})
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    callerActor(caller),
		Payload: events.TicketMessageAddedPayload{
			MessageID:   messageID,
			AuthorID:    caller.ID,
			BodyPreview: stringPreview(content, 120),
		},
	})
	return ticket, nil
}

// stamp returns the mutation timestamp, clamped so updatedAt never moves
// backwards even when the wall clock does.
func (s *TicketService) stamp(previous time.Time) time.Time {
	now := s.now()
	if now.Before(previous) {
		return previous
	}
	return now
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requireCaller(caller domain.Identity) error {
	if caller.ID == "" {
		return apperrors.NewUnauthenticated("caller identity required")
	}
	if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleUser {
		return apperrors.NewUnauthenticated("unknown caller role")
	}
	return nil
}

func callerActor(caller domain.Identity) events.Actor {
	return events.Actor{ID: caller.ID, Role: caller.Role}
}

func mapStoreError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NewNotFound("ticket", nil)
	}
	return err
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
