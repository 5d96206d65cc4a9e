package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/request-desk/internal/domain"
	apperrors "github.com/spec-kit/request-desk/pkg/util/errorutil"
)

// RedisStore keeps the whole collection as one JSON document under a single
// key. The local mutex serializes the read-modify-write-persist cycle; the
// store assumes a single service instance owns the key.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
	key    string
}

// NewRedisStore initializes the collection document when absent.
func NewRedisStore(ctx context.Context, client *redis.Client, key string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client not configured")
	}
	if key == "" {
		key = "request-desk:tickets"
	}
	s := &RedisStore{client: client, key: key}
	if err := client.SetNX(ctx, key, `{"tickets":[]}`, 0).Err(); err != nil {
		return nil, apperrors.NewTransient(err)
	}
	return s, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(ctx)
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

func (s *RedisStore) List(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Tickets, nil
}

func (s *RedisStore) Insert(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	doc.Tickets = append(doc.Tickets, *ticket.Clone())
	return s.write(ctx, doc)
}

func (s *RedisStore) Mutate(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(ctx)
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
		if err := s.write(ctx, doc); err != nil {
			return nil, err
		}
		return doc.Tickets[i].Clone(), nil
	}
	return nil, ErrNotFound
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) read(ctx context.Context) (collectionDocument, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return collectionDocument{Tickets: []domain.Ticket{}}, nil
		}
		return collectionDocument{}, apperrors.NewTransient(err)
	}
	var doc collectionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return collectionDocument{}, apperrors.NewInternalError(err)
	}
	if doc.Tickets == nil {
		doc.Tickets = []domain.Ticket{}
	}
	return doc, nil
}

func (s *RedisStore) write(ctx context.Context, doc collectionDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return apperrors.NewTransient(err)
	}
	return nil
}
