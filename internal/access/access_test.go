package access

import (
	"testing"

	"github.com/spec-kit/request-desk/internal/domain"
)

var (
	admin = domain.Identity{ID: "1", Role: domain.RoleAdmin, DisplayName: "admin"}
	owner = domain.Identity{ID: "2", Role: domain.RoleUser, DisplayName: "user1"}
	other = domain.Identity{ID: "3", Role: domain.RoleUser, DisplayName: "user2"}
)

func ticketOwnedBy(id string) *domain.Ticket {
	return &domain.Ticket{ID: "t1", OwnerID: id}
}

func TestCanView(t *testing.T) {
	ticket := ticketOwnedBy(owner.ID)
	if !CanView(admin, ticket) {
		t.Fatal("admin must view any ticket")
	}
	if !CanView(owner, ticket) {
		t.Fatal("owner must view own ticket")
	}
	if CanView(other, ticket) {
		t.Fatal("non-owner must not view")
	}
}

func TestCanChangeStatus(t *testing.T) {
	if !CanChangeStatus(admin) {
		t.Fatal("admin must change status")
	}
	if CanChangeStatus(owner) {
		t.Fatal("ordinary user must not change status, even on own ticket")
	}
}

func TestCanPostMessage(t *testing.T) {
	ticket := ticketOwnedBy(owner.ID)
	if !CanPostMessage(admin, ticket) || !CanPostMessage(owner, ticket) {
		t.Fatal("admin and owner must post")
	}
	if CanPostMessage(other, ticket) {
		t.Fatal("non-owner must not post")
	}
}

func TestVisibleSubset(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "a", OwnerID: owner.ID},
		{ID: "b", OwnerID: other.ID},
		{ID: "c", OwnerID: owner.ID},
	}

	visible := VisibleSubset(owner, tickets)
	if len(visible) != 2 || visible[0].ID != "a" || visible[1].ID != "c" {
		t.Fatalf("owner subset wrong: %+v", visible)
	}
	for i := range visible {
		if !CanView(owner, &visible[i]) {
			t.Fatalf("subset leaked invisible ticket %s", visible[i].ID)
		}
	}

	if len(VisibleSubset(admin, tickets)) != 3 {
		t.Fatal("admin must see all")
	}
}
