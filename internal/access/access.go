// Package access holds the visibility and permission rules as pure
// functions over (caller, ticket). Admins see and touch everything;
// ordinary requesters are limited to tickets they own.
package access

import "github.com/spec-kit/request-desk/internal/domain"

// CanView reports whether the caller may read the ticket at all.
func CanView(caller domain.Identity, ticket *domain.Ticket) bool {
	return caller.IsAdmin() || caller.ID == ticket.OwnerID
}

// CanChangeStatus reports whether the caller may transition ticket status.
// Only the who is restricted; every edge between states is legal.
func CanChangeStatus(caller domain.Identity) bool {
	return caller.IsAdmin()
}

// CanPostMessage reports whether the caller may append to the thread.
func CanPostMessage(caller domain.Identity, ticket *domain.Ticket) bool {
	return caller.IsAdmin() || caller.ID == ticket.OwnerID
}

// VisibleSubset filters tickets down to those the caller may view,
// preserving input order.
func VisibleSubset(caller domain.Identity, tickets []domain.Ticket) []domain.Ticket {
	if caller.IsAdmin() {
		return tickets
	}
	visible := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if CanView(caller, &tickets[i]) {
			visible = append(visible, tickets[i])
		}
	}
	return visible
}
