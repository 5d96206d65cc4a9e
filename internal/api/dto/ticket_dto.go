package dto

import (
	"time"

	"github.com/spec-kit/request-desk/internal/domain"
)

// CreateTicketRequest is the payload for opening a ticket.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateMessageRequest is the payload for appending to a thread.
type CreateMessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse mirrors one thread entry.
type MessageResponse struct {
	ID                string    `json:"id"`
	AuthorID          string    `json:"authorId"`
	AuthorDisplayName string    `json:"authorDisplayName"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"createdAt"`
}

// TicketResponse mirrors a full ticket with its thread.
type TicketResponse struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	Status           string            `json:"status"`
	OwnerID          string            `json:"ownerId"`
	OwnerDisplayName string            `json:"ownerDisplayName"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	Messages         []MessageResponse `json:"messages"`
}

// PagedTicketsResponse is one list window plus navigation metadata.
type PagedTicketsResponse struct {
	Items       []TicketResponse `json:"items"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	PageSize    int              `json:"pageSize"`
	Offset      int              `json:"offset"`
	HasPrevious bool             `json:"hasPrevious"`
	HasNext     bool             `json:"hasNext"`
}

// FromTicket maps a domain ticket onto the wire shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	messages := make([]MessageResponse, 0, len(ticket.Messages))
	for _, msg := range ticket.Messages {
		messages = append(messages, MessageResponse{
			ID:                msg.ID,
			AuthorID:          msg.AuthorID,
			AuthorDisplayName: msg.AuthorDisplayName,
			Content:           msg.Content,
			CreatedAt:         msg.CreatedAt,
		})
	}
	return TicketResponse{
		ID:               ticket.ID,
		Title:            ticket.Title,
		Description:      ticket.Description,
		Category:         string(ticket.Category),
		Status:           string(ticket.Status),
		OwnerID:          ticket.OwnerID,
		OwnerDisplayName: ticket.OwnerDisplayName,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
		Messages:         messages,
	}
}
