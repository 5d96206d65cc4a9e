package client

import (
	"context"

	"github.com/spec-kit/request-desk/internal/domain"
	"github.com/spec-kit/request-desk/internal/query"
	"github.com/spec-kit/request-desk/internal/service"
)

// Boundary is the request/response surface a client consumes. A boundary
// is bound to one authenticated caller, the way a browser session is.
type Boundary interface {
	ListTickets(ctx context.Context, params query.PageParams) (query.Paged[domain.Ticket], error)
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, title, description, category string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Ticket, error)
	AppendMessage(ctx context.Context, id, content string) (*domain.Ticket, error)
}

// DirectBoundary adapts the ticket service to the Boundary interface for
// in-process callers, carrying the caller identity into every operation.
type DirectBoundary struct {
	service *service.TicketService
	caller  domain.Identity
}

// NewDirectBoundary binds the service to one caller.
func NewDirectBoundary(svc *service.TicketService, caller domain.Identity) *DirectBoundary {
	return &DirectBoundary{service: svc, caller: caller}
}

func (b *DirectBoundary) ListTickets(ctx context.Context, params query.PageParams) (query.Paged[domain.Ticket], error) {
	return b.service.ListTickets(ctx, b.caller, params)
}

func (b *DirectBoundary) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return b.service.GetTicket(ctx, b.caller, id)
}

func (b *DirectBoundary) CreateTicket(ctx context.Context, title, description, category string) (*domain.Ticket, error) {
	return b.service.CreateTicket(ctx, b.caller, title, description, category)
}

func (b *DirectBoundary) UpdateStatus(ctx context.Context, id, status string) (*domain.Ticket, error) {
	return b.service.UpdateStatus(ctx, b.caller, id, status)
}

func (b *DirectBoundary) AppendMessage(ctx context.Context, id, content string) (*domain.Ticket, error) {
	return b.service.AppendMessage(ctx, b.caller, id, content)
}
