package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/request-desk/internal/domain"
	apperrors "github.com/spec-kit/request-desk/pkg/util/errorutil"
)

// collectionDocument is the persisted layout: one JSON document holding the whole
// collection in insertion order.
type collectionDocument struct {
	Tickets []domain.Ticket `json:"tickets"`
}

// FileStore keeps the collection in a single JSON file and rewrites it in
// full on every successful insert or mutate. Suited for development and
// tests; the mutex serializes the read-modify-write-persist cycle.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewFileStore creates the file and its directory when missing.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &FileStore{path: path, logger: logger}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(collectionDocument{Tickets: []domain.Ticket{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Tickets {
		if doc.Tickets[i].ID == id {
			return doc.Tickets[i].Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) List(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Ticket, len(doc.Tickets))
	for i := range doc.Tickets {
		out[i] = *doc.Tickets[i].Clone()
	}
	return out, nil
}

func (s *FileStore) Insert(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Tickets = append(doc.Tickets, *ticket.Clone())
	return s.write(doc)
}

func (s *FileStore) Mutate(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Tickets {
		if doc.Tickets[i].ID != id {
			continue
		}
		if err := fn(&doc.Tickets[i]); err != nil {
			return nil, err
		}
		if err := s.write(doc); err != nil {
			return nil, err
		}
		return doc.Tickets[i].Clone(), nil
	}
	return nil, ErrNotFound
}

func (s *FileStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.read()
	return err
}

func (s *FileStore) read() (collectionDocument, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return collectionDocument{}, apperrors.NewTransient(err)
	}
	var doc collectionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// A corrupt file is unrecoverable by the core; start over rather
		// than fail every call.
		s.logger.Warn("store file corrupt, resetting", zap.String("path", s.path), zap.Error(err))
		return collectionDocument{Tickets: []domain.Ticket{}}, nil
	}
	if doc.Tickets == nil {
		doc.Tickets = []domain.Ticket{}
	}
	return doc, nil
}

// write persists via temp file + rename so a crash mid-write never leaves
// a partially visible collection.
func (s *FileStore) write(doc collectionDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return apperrors.NewTransient(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.NewTransient(err)
	}
	return nil
}
