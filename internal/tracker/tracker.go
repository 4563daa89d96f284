// Package tracker maintains the set of currently visible notifications
// and answers whether any of them match the configured filters.
package tracker

import (
	"log/slog"
	"sync"
)

// Item is one tracked notification.
type Item struct {
	ID    string
	App   string
	Title string
	Body  string
}

// Tracker maps item identifiers to items. The supervising loop is the
// only writer; the status server reads concurrently, so access is
// serialized with a mutex.
type Tracker struct {
	filters FilterSet
	logger  *slog.Logger

	mu    sync.Mutex
	items map[string]Item
}

func New(filters FilterSet, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		filters: filters,
		logger:  logger,
		items:   make(map[string]Item),
	}
}

// Upsert inserts or replaces the item by identifier and reports whether
// it matches the filter set.
func (t *Tracker) Upsert(item Item) bool {
	matched := t.filters.Matches(item)

	t.mu.Lock()
	t.items[item.ID] = item
	t.mu.Unlock()

	if matched {
		t.logger.Info("notification matches filter",
			"id", item.ID, "app", item.App, "title", item.Title, "body", item.Body)
	} else {
		t.logger.Debug("notification added, no match",
			"id", item.ID, "app", item.App, "title", item.Title)
	}
	return matched
}

// Remove drops the item if present and reports whether the removed item
// had matched the filter set. Absent identifiers report false.
func (t *Tracker) Remove(id string) bool {
	t.mu.Lock()
	item, ok := t.items[id]
	if ok {
		delete(t.items, id)
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	matched := t.filters.Matches(item)
	if matched {
		t.logger.Info("removed matching notification", "id", id)
	} else {
		t.logger.Debug("removed non-matching notification", "id", id)
	}
	return matched
}

// Clear unconditionally empties the tracked set. Used when a removal
// signal cannot be correlated to a specific tracked item; the periodic
// reconciliation restores correctness afterwards.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.items = make(map[string]Item)
	t.mu.Unlock()
}

// HasMatch reports whether at least one tracked item matches the
// filter set.
func (t *Tracker) HasMatch() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, item := range t.items {
		if t.filters.Matches(item) {
			return true
		}
	}
	return false
}

// MatchCount counts the tracked items matching the filter set.
func (t *Tracker) MatchCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, item := range t.items {
		if t.filters.Matches(item) {
			n++
		}
	}
	return n
}

// Len returns the number of tracked items, matching or not.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}
