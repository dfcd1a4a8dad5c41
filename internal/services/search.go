package services

import (
	"context"
	"fmt"

	"ticket-lookup/models"
)

// Page is one page of an upstream listing.
type Page[T any] struct {
	Items    []T
	LastPage models.PageBound
	HasMore  *bool
}

// PageFetcher returns page n (1-based) of an upstream listing.
type PageFetcher[T any] func(ctx context.Context, n int) (*Page[T], error)

// PaginationCursor tracks a single search through a paginated listing. It
// lives for one lookup only.
type PaginationCursor struct {
	Page     int
	LastPage models.PageBound
	HasMore  bool
}

func newCursor() *PaginationCursor {
	return &PaginationCursor{Page: 1, HasMore: true}
}

// Done reports whether the listing is exhausted.
func (c *PaginationCursor) Done() bool {
	if !c.HasMore {
		return true
	}
	if last, ok := c.LastPage.Get(); ok && c.Page > last {
		return true
	}
	return false
}

// advance records what a page without a match said about the listing and
// moves to the next page.
func (c *PaginationCursor) advance(items int, lastPage models.PageBound, hasMore *bool) {
	if _, ok := lastPage.Get(); ok {
		c.LastPage = lastPage
	}

	switch last, ok := c.LastPage.Get(); {
	case hasMore != nil:
		c.HasMore = *hasMore
	case ok:
		c.HasMore = c.Page < last
	default:
		// no metadata at all: an empty page means the listing ended
		c.HasMore = items > 0
	}

	c.Page++
}

// FindFirst walks the listing one page at a time, in ascending order, and
// returns the first item for which match is true. Pages are never fetched
// ahead: the walk stops at the first page holding a match. pages is the
// number of pages fetched. Any fetch error aborts the walk.
func FindFirst[T any](ctx context.Context, fetch PageFetcher[T], match func(T) bool) (item T, found bool, pages int, err error) {
	cursor := newCursor()

	for !cursor.Done() {
		if err := ctx.Err(); err != nil {
			return item, false, pages, fmt.Errorf("findFirst: page %d: %w", cursor.Page, err)
		}

		page, err := fetch(ctx, cursor.Page)
		pages++
		if err != nil {
			return item, false, pages, fmt.Errorf("findFirst: page %d: %w", cursor.Page, err)
		}

		for _, candidate := range page.Items {
			if match(candidate) {
				return candidate, true, pages, nil
			}
		}

		cursor.advance(len(page.Items), page.LastPage, page.HasMore)
	}

	return item, false, pages, nil
}
