// Package query windows a visibility-filtered collection into
// deterministic pages with navigation metadata.
package query

import "strconv"

const (
	DefaultPage     = 1
	DefaultPageSize = 8
)

// PageParams are sanitized pagination inputs. Offset, when set explicitly,
// takes precedence over the page number.
type PageParams struct {
	Page      int
	PageSize  int
	Offset    int
	hasOffset bool
}

// ParseParams builds PageParams from raw query strings. Non-numeric or
// non-positive page/limit values fall back to the defaults and a negative
// offset clamps to zero; lenient by policy, never an error.
func ParseParams(rawPage, rawLimit, rawOffset string) PageParams {
	p := PageParams{
		Page:     parsePositive(rawPage, DefaultPage),
		PageSize: parsePositive(rawLimit, DefaultPageSize),
	}
	if rawOffset != "" {
		offset, err := strconv.Atoi(rawOffset)
		if err != nil || offset < 0 {
			offset = 0
		}
		p.Offset = offset
		p.hasOffset = true
	} else {
		p.Offset = (p.Page - 1) * p.PageSize
	}
	return p
}

// Params builds PageParams programmatically. A nil offset derives the
// window from the page number.
func Params(page, pageSize int, offset *int) PageParams {
	p := PageParams{Page: page, PageSize: pageSize}
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if offset != nil {
		p.Offset = *offset
		if p.Offset < 0 {
			p.Offset = 0
		}
		p.hasOffset = true
	} else {
		p.Offset = (p.Page - 1) * p.PageSize
	}
	return p
}

// Paged is one window over a visible set plus navigation metadata. Total
// counts the whole visible set, not the page, so callers can derive the
// page count as ceil(total/pageSize).
type Paged[T any] struct {
	Items       []T  `json:"items"`
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	Offset      int  `json:"offset"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// Paginate slices the order-preserved visible sequence [start:end). An
// out-of-range start yields an empty page, never an error.
func Paginate[T any](visible []T, p PageParams) Paged[T] {
	total := len(visible)
	start := p.Offset
	end := start + p.PageSize

	items := []T{}
	if start < total {
		if end > total {
			end = total
		}
		items = append(items, visible[start:end]...)
	}
	return Paged[T]{
		Items:       items,
		Total:       total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		Offset:      p.Offset,
		HasPrevious: start > 0,
		HasNext:     start+p.PageSize < total,
	}
}

func parsePositive(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
