// Package client is the read-through caching layer between a caller and
// the ticket boundary. Query results are cached by canonical signature and
// tagged with the entity ids they depend on; mutations pass through and
// mark the affected signatures stale.
package client

import (
	"context"
	"fmt"

	"github.com/spec-kit/request-desk/internal/domain"
	"github.com/spec-kit/request-desk/internal/observability"
	"github.com/spec-kit/request-desk/internal/query"
	"github.com/spec-kit/request-desk/pkg/tagcache"
)

// TagList is the sentinel tag carried by every collection query, so that
// creations (which belong to no cached id yet) can invalidate list views.
const TagList = "list"

// CachedClient serves queries from a tag-invalidation cache and forwards
// mutations to the boundary. One client per authenticated session.
type CachedClient struct {
	boundary Boundary
	cache    *tagcache.Cache[any]
}

// New builds a cached client over the given boundary. Cache traffic is
// counted in the process metrics; later options may override the observer.
func New(boundary Boundary, opts ...tagcache.Option[any]) *CachedClient {
	options := append([]tagcache.Option[any]{
		tagcache.WithObserver[any](observability.CacheObserver{}),
	}, opts...)
	return &CachedClient{
		boundary: boundary,
		cache:    tagcache.New(options...),
	}
}

// ListSignature is the canonical cache key for a list query.
func ListSignature(params query.PageParams) string {
	return fmt.Sprintf("list:page=%d;limit=%d;offset=%d", params.Page, params.PageSize, params.Offset)
}

// ByIDSignature is the canonical cache key for a get-by-id query.
func ByIDSignature(id string) string {
	return "byId:" + id
}

// ListTickets returns a cached page when fresh, fetching through the
// boundary otherwise. The result is tagged with every item's id plus the
// list sentinel.
func (c *CachedClient) ListTickets(ctx context.Context, params query.PageParams) (query.Paged[domain.Ticket], error) {
	cached, err := c.cache.Get(ctx, ListSignature(params), func(ctx context.Context) (any, []string, error) {
		page, err := c.boundary.ListTickets(ctx, params)
		if err != nil {
			return nil, nil, err
		}
		tags := make([]string, 0, len(page.Items)+1)
		for i := range page.Items {
			tags = append(tags, page.Items[i].ID)
		}
		tags = append(tags, TagList)
		return page, tags, nil
	})
	if err != nil {
		return query.Paged[domain.Ticket]{}, err
	}
	return cached.(query.Paged[domain.Ticket]), nil
}

// GetTicket returns a cached ticket when fresh, tagged with its id.
func (c *CachedClient) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	cached, err := c.cache.Get(ctx, ByIDSignature(id), func(ctx context.Context) (any, []string, error) {
		ticket, err := c.boundary.GetTicket(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return ticket, []string{ticket.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return cached.(*domain.Ticket), nil
}

// CreateTicket forwards to the boundary and, on success, invalidates every
// cached list view.
func (c *CachedClient) CreateTicket(ctx context.Context, title, description, category string) (*domain.Ticket, error) {
	ticket, err := c.boundary.CreateTicket(ctx, title, description, category)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(TagList)
	return ticket, nil
}

// UpdateStatus forwards to the boundary and invalidates everything
// depending on the ticket.
func (c *CachedClient) UpdateStatus(ctx context.Context, id, status string) (*domain.Ticket, error) {
	ticket, err := c.boundary.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(id)
	return ticket, nil
}

// AppendMessage forwards to the boundary and invalidates everything
// depending on the ticket.
func (c *CachedClient) AppendMessage(ctx context.Context, id, content string) (*domain.Ticket, error) {
	ticket, err := c.boundary.AppendMessage(ctx, id, content)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(id)
	return ticket, nil
}
