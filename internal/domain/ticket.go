package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "inProgress"
	TicketStatusClosed     TicketStatus = "closed"
)

// ParseStatus validates a wire-level status literal.
func ParseStatus(raw string) (TicketStatus, error) {
	switch TicketStatus(raw) {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return TicketStatus(raw), nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// TicketCategory classifies what a request is about.
type TicketCategory string

const (
	CategoryTechnical TicketCategory = "technical"
	CategoryBilling   TicketCategory = "billing"
	CategoryGeneral   TicketCategory = "general"
	CategorySupport   TicketCategory = "support"
)

// ParseCategory validates a wire-level category literal.
func ParseCategory(raw string) (TicketCategory, error) {
	switch TicketCategory(raw) {
	case CategoryTechnical, CategoryBilling, CategoryGeneral, CategorySupport:
		return TicketCategory(raw), nil
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// Ticket is the aggregate for support requests. Messages are embedded:
// the record carries its full thread in insertion order, and the first
// message is always the ticket description.
type Ticket struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Category         TicketCategory `json:"category"`
	Status           TicketStatus   `json:"status"`
	OwnerID          string         `json:"ownerId"`
	OwnerDisplayName string         `json:"ownerDisplayName"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	Messages         []Message      `json:"messages"`
}

// Clone returns a deep copy so callers can hold a ticket across the store
// boundary without sharing the message slice.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	dup := *t
	dup.Messages = make([]Message, len(t.Messages))
	copy(dup.Messages, t.Messages)
	return &dup
}
