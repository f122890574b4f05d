package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"grid-sync/core/content"
	"grid-sync/core/events"
)

func row(pairs ...string) content.Content {
	c := content.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Set(pairs[i], content.String(pairs[i+1]))
	}
	return c
}

// fakeGrid keeps rows in physical order. A cleared row has empty content.
type fakeGrid struct {
	mu      sync.Mutex
	headers []string
	rows    []content.Content

	readErr   error
	upsertErr map[string]error
	tombErr   map[string]error

	upserts    int
	tombstones int
}

func newFakeGrid(headers ...string) *fakeGrid {
	return &fakeGrid{
		headers:   headers,
		upsertErr: map[string]error{},
		tombErr:   map[string]error{},
	}
}

func (g *fakeGrid) add(c content.Content) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rows = append(g.rows, c.Clone())
}

func (g *fakeGrid) remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, r := range g.rows {
		if r.Text("id") == id {
			g.rows = append(g.rows[:i], g.rows[i+1:]...)
			return
		}
	}
}

func (g *fakeGrid) find(id string) (content.Content, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.rows {
		if r.Text("id") == id {
			return r.Clone(), true
		}
	}
	return content.Content{}, false
}

func (g *fakeGrid) ReadAll(ctx context.Context) (*Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readErr != nil {
		return nil, g.readErr
	}
	if len(g.headers) == 0 {
		return nil, &SchemaError{Reason: "no header row"}
	}

	snap := &Snapshot{Headers: append([]string(nil), g.headers...), ReadAt: time.Now()}
	for i, r := range g.rows {
		if r.Text("id") == "" {
			continue
		}
		snap.Rows = append(snap.Rows, GridRow{Number: i + 2, Content: r.Clone()})
	}
	return snap, nil
}

func (g *fakeGrid) UpsertByID(ctx context.Context, c content.Content) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := c.Text("id")
	if err := g.upsertErr[id]; err != nil {
		return err
	}
	g.upserts++
	for i, r := range g.rows {
		if r.Text("id") == id {
			g.rows[i] = c.Clone()
			return nil
		}
	}
	g.rows = append(g.rows, c.Clone())
	return nil
}

func (g *fakeGrid) TombstoneByID(ctx context.Context, rowID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.tombErr[rowID]; err != nil {
		return err
	}
	g.tombstones++
	for i, r := range g.rows {
		if r.Text("id") == rowID {
			g.rows[i] = content.New()
			return nil
		}
	}
	return nil
}

// fakeStore is a row store whose store-tagged writes feed an in-memory change
// queue, the way the database triggers do.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*RowRecord
	queue   []ChangeEntry
	done    map[uint64]bool
	nextID  uint64

	getErr    map[string]error
	upsertErr map[string]error
	listErr   error
	markErr   error
	fetchErr  error

	upserts   int
	deletes   int
	lastTrace string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:   map[string]*RowRecord{},
		done:      map[uint64]bool{},
		getErr:    map[string]error{},
		upsertErr: map[string]error{},
	}
}

func (s *fakeStore) enqueue(t ChangeType, id string, c *content.Content, src Provenance, traceID string) {
	s.nextID++
	s.queue = append(s.queue, ChangeEntry{ID: s.nextID, Type: t, RowID: id, Content: c, Source: src, TraceID: traceID})
}

func (s *fakeStore) Get(ctx context.Context, id string) (*RowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.getErr[id]; err != nil {
		return nil, err
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	cp.Content = rec.Content.Clone()
	return &cp, nil
}

func (s *fakeStore) Upsert(ctx context.Context, id string, c content.Content, source Provenance, traceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.upsertErr[id]; err != nil {
		return err
	}
	s.upserts++
	s.lastTrace = traceID

	_, existed := s.records[id]
	s.records[id] = &RowRecord{
		ID:        id,
		Content:   c.Clone(),
		Hash:      c.Fingerprint(),
		Source:    source,
		TraceID:   traceID,
		UpdatedAt: time.Now(),
	}
	if source == ProvenanceStore {
		cp := c.Clone()
		t := ChangeInsert
		if existed {
			t = ChangeUpdate
		}
		s.enqueue(t, id, &cp, source, traceID)
	}
	return nil
}

func (s *fakeStore) SoftDelete(ctx context.Context, ids []string, source Provenance, traceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, id := range ids {
		rec, ok := s.records[id]
		if !ok || rec.DeletedAt != nil {
			continue
		}
		s.deletes++
		rec.DeletedAt = &now
		rec.Source = source
		rec.TraceID = traceID
		if source == ProvenanceStore {
			s.enqueue(ChangeDelete, id, nil, source, traceID)
		}
	}
	return nil
}

func (s *fakeStore) ListActiveIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var ids []string
	for id, rec := range s.records {
		if rec.DeletedAt == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fakeStore) FetchPending(ctx context.Context, limit int) ([]ChangeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []ChangeEntry
	for _, e := range s.queue {
		if s.done[e.ID] {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) MarkProcessed(ctx context.Context, ids []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	for _, id := range ids {
		s.done[id] = true
	}
	return nil
}

func (s *fakeStore) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.queue {
		if !s.done[e.ID] {
			n++
		}
	}
	return n
}

func (s *fakeStore) active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return ok && rec.DeletedAt == nil
}

// recordingSink collects emitted events.
type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingSink) Emit(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) ofType(t string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fakeArchiver struct {
	snaps []*Snapshot
	err   error
}

func (a *fakeArchiver) Archive(ctx context.Context, snap *Snapshot) error {
	a.snaps = append(a.snaps, snap)
	return a.err
}
