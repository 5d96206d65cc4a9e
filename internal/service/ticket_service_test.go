package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/request-desk/internal/domain"
	"github.com/spec-kit/request-desk/internal/query"
	"github.com/spec-kit/request-desk/internal/store"
	apperrors "github.com/spec-kit/request-desk/pkg/util/errorutil"
)

var (
	admin = domain.Identity{ID: "1", Role: domain.RoleAdmin, DisplayName: "admin"}
	user1 = domain.Identity{ID: "2", Role: domain.RoleUser, DisplayName: "user1"}
	user2 = domain.Identity{ID: "3", Role: domain.RoleUser, DisplayName: "user2"}
)

// fakeClock hands out strictly increasing timestamps unless frozen.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func newTestService(t *testing.T) (*TicketService, *fakeClock) {
	t.Helper()
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "requests.json"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	clock := newFakeClock()
	return NewTicketService(Dependencies{Store: s, Now: clock.Now}), clock
}

func TestCreateTicket_SeedsDescriptionMessage(t *testing.T) {
	// Scenario: user1 opens "Login Issue" in category technical.
	ctx := context.Background()
	svc, _ := newTestService(t)

	ticket, err := svc.CreateTicket(ctx, user1, "Login Issue", "I cannot log in since Monday", "technical")
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("new ticket must be open, got %s", ticket.Status)
	}
	if ticket.OwnerID != user1.ID || ticket.OwnerDisplayName != "user1" {
		t.Fatalf("owner wrong: %+v", ticket)
	}
	if len(ticket.Messages) != 1 {
		t.Fatalf("want exactly one seed message, got %d", len(ticket.Messages))
	}
	if ticket.Messages[0].Content != ticket.Description {
		t.Fatalf("seed message must equal description: %q vs %q", ticket.Messages[0].Content, ticket.Description)
	}
	if ticket.UpdatedAt.Before(ticket.CreatedAt) {
		t.Fatalf("updatedAt < createdAt: %+v", ticket)
	}
}

func TestCreateTicket_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	cases := []struct{ title, desc, category string }{
		{"", "desc", "technical"},
		{"title", "", "technical"},
		{"title", "desc", ""},
		{"   ", "desc", "technical"},
		{"title", "desc", "bogus"},
	}
	for _, tc := range cases {
		_, err := svc.CreateTicket(ctx, user1, tc.title, tc.desc, tc.category)
		if !apperrors.IsCode(err, apperrors.CodeValidation) {
			t.Fatalf("create(%q,%q,%q): want validation error, got %v", tc.title, tc.desc, tc.category, err)
		}
	}
}

func TestOperations_RequireCaller(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	nobody := domain.Identity{}

	if _, err := svc.ListTickets(ctx, nobody, query.Params(1, 8, nil)); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("list: want unauthenticated, got %v", err)
	}
	if _, err := svc.GetTicket(ctx, nobody, "x"); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("get: want unauthenticated, got %v", err)
	}
	if _, err := svc.CreateTicket(ctx, nobody, "t", "d", "general"); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("create: want unauthenticated, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, nobody, "x", "closed"); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("status: want unauthenticated, got %v", err)
	}
	if _, err := svc.AppendMessage(ctx, nobody, "x", "hello"); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("message: want unauthenticated, got %v", err)
	}
}

func TestGetTicket_VisibilityForbidden(t *testing.T) {
	// Scenario: user2 reads user1's ticket.
	ctx := context.Background()
	svc, _ := newTestService(t)

	ticket, err := svc.CreateTicket(ctx, user1, "Login Issue", "details", "technical")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetTicket(ctx, user2, ticket.ID); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("want forbidden, got %v", err)
	}
	if _, err := svc.GetTicket(ctx, admin, ticket.ID); err != nil {
		t.Fatalf("admin must view: %v", err)
	}
	if _, err := svc.GetTicket(ctx, user1, "does-not-exist"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestGetTicket_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.CreateTicket(ctx, user1, "Login Issue", "details", "technical")
	if err != nil {
		t.Fatal(err)
	}
	first, err := svc.GetTicket(ctx, user1, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.GetTicket(ctx, user1, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.UpdatedAt != second.UpdatedAt || len(first.Messages) != len(second.Messages) || first.Status != second.Status {
		t.Fatalf("reads without mutation differ: %+v vs %+v", first, second)
	}
}

func TestUpdateStatus_AdminOnly(t *testing.T) {
	// Scenario: admin closes, then the owner tries to reopen.
	ctx := context.Background()
	svc, _ := newTestService(t)

	ticket, err := svc.CreateTicket(ctx, user1, "Login Issue", "details", "technical")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateStatus(ctx, admin, ticket.ID, "closed")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.TicketStatusClosed {
		t.Fatalf("want closed, got %s", updated.Status)
	}
	if !updated.UpdatedAt.After(ticket.UpdatedAt) {
		t.Fatalf("updatedAt must advance: %v -> %v", ticket.UpdatedAt, updated.UpdatedAt)
	}

	if _, err := svc.UpdateStatus(ctx, user1, ticket.ID, "open"); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("owner must not transition: %v", err)
	}
	after, err := svc.GetTicket(ctx, admin, ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Status != domain.TicketStatusClosed {
		t.Fatalf("denied transition must leave status unchanged, got %s", after.Status)
	}

	// Transitions are not monotonic: closed -> open is legal for admins.
	reopened, err := svc.UpdateStatus(ctx, admin, ticket.ID, "open")
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Status != domain.TicketStatusOpen {
		t.Fatalf("want reopen, got %s", reopened.Status)
	}
}

func TestUpdateStatus_UnknownTicketAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.UpdateStatus(ctx, admin, "missing", "closed"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	ticket, err := svc.CreateTicket(ctx, user1, "t", "d", "billing")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus(ctx, admin, ticket.ID, "archived"); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("want validation error for unknown literal, got %v", err)
	}
}

func TestAppendMessage_Flow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	ticket, err := svc.CreateTicket(ctx, user1, "Login Issue", "details", "technical")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AppendMessage(ctx, user1, ticket.ID, "  "); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("blank content: want validation error, got %v", err)
	}
	if _, err := svc.AppendMessage(ctx, user2, ticket.ID, "hi"); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("stranger: want forbidden, got %v", err)
	}
	if _, err := svc.AppendMessage(ctx, user1, "missing", "hi"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("missing ticket: want not found, got %v", err)
	}

	updated, err := svc.AppendMessage(ctx, admin, ticket.ID, "we are on it")
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Messages) != 2 {
		t.Fatalf("want 2 messages, got %d", len(updated.Messages))
	}
	last := updated.Messages[len(updated.Messages)-1]
	if last.AuthorID != admin.ID || last.Content != "we are on it" {
		t.Fatalf("appended message wrong: %+v", last)
	}
	if !updated.UpdatedAt.After(ticket.UpdatedAt) {
		t.Fatalf("updatedAt must advance on append")
	}
	if updated.Messages[0].Content != ticket.Description {
		t.Fatalf("seed message must stay first")
	}
}

func TestUpdatedAt_MonotonicUnderClockSkew(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t)

	ticket, err := svc.CreateTicket(ctx, user1, "t", "d", "general")
	if err != nil {
		t.Fatal(err)
	}

	// Step the clock backwards; updatedAt must not regress.
	clock.current = clock.current.Add(-time.Hour)
	updated, err := svc.AppendMessage(ctx, user1, ticket.ID, "still broken")
	if err != nil {
		t.Fatal(err)
	}
	if updated.UpdatedAt.Before(ticket.UpdatedAt) {
		t.Fatalf("updatedAt regressed: %v -> %v", ticket.UpdatedAt, updated.UpdatedAt)
	}
}

func TestListTickets_VisibilityAndPaging(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateTicket(ctx, user1, "mine", "details", "general"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.CreateTicket(ctx, user2, "theirs", "details", "billing"); err != nil {
		t.Fatal(err)
	}

	page, err := svc.ListTickets(ctx, user1, query.Params(1, 1, nil))
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Items) != 1 {
		t.Fatalf("user1 page 1 wrong: total=%d items=%d", page.Total, len(page.Items))
	}
	if !page.HasNext || page.HasPrevious {
		t.Fatalf("page 1 metadata wrong: %+v", page)
	}
	for _, item := range page.Items {
		if item.OwnerID != user1.ID {
			t.Fatalf("leaked foreign ticket %s", item.ID)
		}
	}

	page2, err := svc.ListTickets(ctx, user1, query.Params(2, 1, nil))
	if err != nil {
		t.Fatal(err)
	}
	if !page2.HasPrevious || len(page2.Items) != 1 {
		t.Fatalf("page 2 wrong: %+v", page2)
	}
	if page2.Items[0].ID == page.Items[0].ID {
		t.Fatalf("page 2 repeated page 1 item")
	}

	adminPage, err := svc.ListTickets(ctx, admin, query.Params(1, 8, nil))
	if err != nil {
		t.Fatal(err)
	}
	if adminPage.Total != 4 {
		t.Fatalf("admin must see all 4, got %d", adminPage.Total)
	}
}
