package http

import (
	"context"
	"time"
)

// CursorFetcher fetches the page identified by cursor ("" for the first page).
// It returns the items and the cursor of the following page, or "" when
// there are no more pages.
type CursorFetcher[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// CursorIterator lazily walks cursor-paginated results such as Jira's
// nextPageToken and Confluence's _links.next.
type CursorIterator[T any] struct {
	fetch   CursorFetcher[T]
	cursor  string
	buffer  []T
	started bool
	done    bool
	err     error
	pages   int
	fetched int
	delay   time.Duration
}

// NewCursorIterator creates an iterator over fetch.
func NewCursorIterator[T any](fetch CursorFetcher[T]) *CursorIterator[T] {
	return &CursorIterator[T]{fetch: fetch}
}

// WithPageDelay sets a pause between page fetches to stay under rate limits.
func (p *CursorIterator[T]) WithPageDelay(d time.Duration) *CursorIterator[T] {
	p.delay = d
	return p
}

// Next returns the next item. When iteration is complete it returns
// (zero, false, nil).
func (p *CursorIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if p.err != nil {
		return zero, false, p.err
	}

	for len(p.buffer) == 0 && !p.done {
		if p.started && p.delay > 0 {
			timer := time.NewTimer(p.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				p.err = ctx.Err()
				return zero, false, p.err
			case <-timer.C:
			}
		}

		items, next, err := p.fetch(ctx, p.cursor)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.started = true
		p.pages++
		p.buffer = items
		p.cursor = next
		// An empty page ends iteration even if the server sent a cursor.
		p.done = next == "" || len(items) == 0
	}

	if len(p.buffer) == 0 {
		return zero, false, nil
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.fetched++

	return item, true, nil
}

// All collects every remaining item.
func (p *CursorIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		all = append(all, item)
	}
	return all, nil
}

// Take returns up to n items.
func (p *CursorIterator[T]) Take(ctx context.Context, n int) ([]T, error) {
	var items []T
	for len(items) < n {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, nil
}

// ForEach calls fn for each item. If fn returns an error, iteration stops
// and that error is returned.
func (p *CursorIterator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Err returns any error that occurred during iteration.
func (p *CursorIterator[T]) Err() error {
	return p.err
}

// Pages returns the number of pages fetched so far.
func (p *CursorIterator[T]) Pages() int {
	return p.pages
}

// Fetched returns the number of items returned so far.
func (p *CursorIterator[T]) Fetched() int {
	return p.fetched
}
