package console

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/slotdesk/slotdesk/pkg/calendar"
)

// Result is the outcome of a cache operation. Exactly one of Event/Err is
// meaningful on mutations; Superseded marks a response discarded because a
// newer request for the same record finished first.
type Result struct {
	Event           *calendar.EventDTO
	Err             error
	Superseded      bool
	RefetchRequired bool
}

func (r Result) OK() bool {
	return r.Err == nil && !r.Superseded
}

// EventCache holds the console's client-side view of the calendar. The cache
// is only mutated after the server acknowledges an operation; failed or
// superseded requests leave it untouched.
type EventCache struct {
	api API

	mu              sync.Mutex
	events          map[string]calendar.EventDTO
	fetchSeq        uint64
	updateSeq       map[string]uint64
	refetchRequired bool
}

func NewEventCache(api API) *EventCache {
	return &EventCache{
		api:       api,
		events:    map[string]calendar.EventDTO{},
		updateSeq: map[string]uint64{},
	}
}

// Events returns the cached events ordered by start time.
func (c *EventCache) Events() []calendar.EventDTO {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]calendar.EventDTO, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// RefetchRequired reports whether a series mutation left the cache without
// full knowledge of the server state.
func (c *EventCache) RefetchRequired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refetchRequired
}

// Fetch replaces the cache with the server's events for the range. A failed
// fetch keeps the previously cached events. When overlapping fetches race,
// only the newest one may apply; earlier responses are discarded.
func (c *EventCache) Fetch(ctx context.Context, start, end time.Time) Result {
	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	c.mu.Unlock()

	events, err := c.api.EventsInRange(ctx, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.fetchSeq {
		return Result{Superseded: true}
	}
	if err != nil {
		return Result{Err: err}
	}

	c.events = make(map[string]calendar.EventDTO, len(events))
	for _, e := range events {
		c.events[e.ID] = e
	}
	c.refetchRequired = false
	return Result{}
}

// Create sends the event to the server and, on acknowledgement, stores the
// server's record (with its assigned id), never the local draft.
func (c *EventCache) Create(ctx context.Context, event calendar.EventDTO) Result {
	created, err := c.api.CreateEvent(ctx, event)
	if err != nil {
		return Result{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[created.ID] = *created
	if created.RecurrenceRule != nil {
		// occurrence rows exist server-side only
		c.refetchRequired = true
	}
	return Result{Event: created, RefetchRequired: created.RecurrenceRule != nil}
}

// Update patches the event on the server and replaces the cached record on
// acknowledgement. Concurrent updates of the same id resolve to the newest
// request; responses to superseded requests are dropped.
func (c *EventCache) Update(ctx context.Context, id string, patch map[string]any, mode string) Result {
	c.mu.Lock()
	c.updateSeq[id]++
	seq := c.updateSeq[id]
	c.mu.Unlock()

	updated, err := c.api.UpdateEvent(ctx, id, patch, mode)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.updateSeq[id] {
		return Result{Superseded: true}
	}
	if err != nil {
		return Result{Err: err}
	}

	if _, ok := c.events[id]; ok {
		c.events[updated.ID] = *updated
	}
	if mode == "series" {
		// sibling occurrences changed server-side
		c.refetchRequired = true
		return Result{Event: updated, RefetchRequired: true}
	}
	return Result{Event: updated}
}

// Delete removes the event on the server and, on acknowledgement, evicts
// only that id from the cache. A series delete also removed sibling
// occurrences server-side, so the cache flags itself for a refetch instead
// of guessing which entries died.
func (c *EventCache) Delete(ctx context.Context, id string, mode string) Result {
	if err := c.api.DeleteEvent(ctx, id, mode); err != nil {
		return Result{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, id)
	if mode == "series" {
		c.refetchRequired = true
		return Result{RefetchRequired: true}
	}
	return Result{}
}

// DisplayError maps an operation error to a user-facing message. Server
// messages win; transport errors fall back to the given text.
func DisplayError(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
