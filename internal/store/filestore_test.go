package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/request-desk/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "requests.json"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func sampleTicket(id, owner string) *domain.Ticket {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Ticket{
		ID:               id,
		Title:            "Login Issue",
		Description:      "cannot log in",
		Category:         domain.CategoryTechnical,
		Status:           domain.TicketStatusOpen,
		OwnerID:          owner,
		OwnerDisplayName: "user1",
		CreatedAt:        now,
		UpdatedAt:        now,
		Messages: []domain.Message{{
			ID:        "m-" + id,
			AuthorID:  owner,
			Content:   "cannot log in",
			CreatedAt: now,
		}},
	}
}

func TestFileStore_BasicFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Insert(ctx, sampleTicket("t1", "u1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, sampleTicket("t2", "u2")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "t1" || len(got.Messages) != 1 {
		t.Fatalf("get wrong: %+v", got)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "t1" || all[1].ID != "t2" {
		t.Fatalf("list must preserve insertion order: %+v", all)
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFileStore_MutateMissingWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Insert(ctx, sampleTicket("t1", "u1")); err != nil {
		t.Fatal(err)
	}

	_, err := s.Mutate(ctx, "missing", func(tk *domain.Ticket) error {
		tk.Status = domain.TicketStatusClosed
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.TicketStatusOpen {
		t.Fatalf("failed mutate must not touch other records: %+v", got)
	}
}

func TestFileStore_MutateFnErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Insert(ctx, sampleTicket("t1", "u1")); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	if _, err := s.Mutate(ctx, "t1", func(tk *domain.Ticket) error {
		tk.Status = domain.TicketStatusClosed
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("want fn error, got %v", err)
	}

	got, _ := s.Get(ctx, "t1")
	if got.Status != domain.TicketStatusOpen {
		t.Fatalf("fn error must leave store unchanged: %+v", got)
	}
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "requests.json")
	s, err := NewFileStore(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, sampleTicket("t1", "u1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Mutate(ctx, "t1", func(tk *domain.Ticket) error {
		tk.Status = domain.TicketStatusInProgress
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileStore(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.TicketStatusInProgress {
		t.Fatalf("mutation lost across reopen: %+v", got)
	}
}

func TestFileStore_ConcurrentMutatesSerialize(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Insert(ctx, sampleTicket("t1", "u1")); err != nil {
		t.Fatal(err)
	}

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := s.Mutate(ctx, "t1", func(tk *domain.Ticket) error {
				tk.Messages = append(tk.Messages, domain.Message{
					ID:       fmt.Sprintf("m%d", n),
					AuthorID: "u1",
					Content:  "reply",
				})
				return nil
			})
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != writers+1 {
		t.Fatalf("lost appends under contention: want %d messages, got %d", writers+1, len(got.Messages))
	}
}

func TestFileStore_CloneIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Insert(ctx, sampleTicket("t1", "u1")); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, "t1")
	got.Messages = append(got.Messages, domain.Message{ID: "rogue"})
	got.Status = domain.TicketStatusClosed

	again, _ := s.Get(ctx, "t1")
	if len(again.Messages) != 1 || again.Status != domain.TicketStatusOpen {
		t.Fatalf("caller mutation leaked into store: %+v", again)
	}
}
