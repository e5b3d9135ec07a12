package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

// manualClock fires AfterFunc callbacks only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	c       *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward, running due callbacks in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

type remoteCall struct {
	op      string
	id      string
	key     string
	payload document.Payload
	at      time.Time
}

// fakeRemote is an in-memory remote store. When gate is set, create and
// update announce themselves on entered and wait for release.
type fakeRemote struct {
	mu     sync.Mutex
	clock  Clock
	docs   map[string]*document.Remote
	calls  []remoteCall
	nextID int
	err    error

	gate     bool
	entered  chan struct{}
	release  chan struct{}
	fetchErr error
}

func newFakeRemote(clock Clock) *fakeRemote {
	return &fakeRemote{
		clock:   clock,
		docs:    map[string]*document.Remote{},
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (r *fakeRemote) wait() {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()
	if gate {
		r.entered <- struct{}{}
		<-r.release
	}
}

func (r *fakeRemote) Create(_ context.Context, kind string, payload document.Payload, key string) (*document.Remote, error) {
	r.mu.Lock()
	r.calls = append(r.calls, remoteCall{op: "create", key: key, payload: payload.Clone(), at: r.clock.Now()})
	r.mu.Unlock()
	r.wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	doc := &document.Remote{ID: fmt.Sprintf("doc-%d", r.nextID), Kind: kind, Payload: payload.Clone(), UpdatedAt: r.clock.Now()}
	r.docs[doc.ID] = doc
	return doc, nil
}

func (r *fakeRemote) Update(_ context.Context, id string, payload document.Payload) (time.Time, error) {
	r.mu.Lock()
	r.calls = append(r.calls, remoteCall{op: "update", id: id, payload: payload.Clone(), at: r.clock.Now()})
	r.mu.Unlock()
	r.wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return time.Time{}, r.err
	}
	doc, ok := r.docs[id]
	if !ok {
		return time.Time{}, common.ErrorNotFound
	}
	doc.Payload = payload.Clone()
	doc.UpdatedAt = r.clock.Now()
	return doc.UpdatedAt, nil
}

func (r *fakeRemote) Fetch(_ context.Context, id string) (*document.Remote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	doc, ok := r.docs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *doc
	cp.Payload = doc.Payload.Clone()
	return &cp, nil
}

func (r *fakeRemote) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeRemote) setGate(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = on
}

func (r *fakeRemote) callsCopy() []remoteCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]remoteCall(nil), r.calls...)
}

func (r *fakeRemote) count(op string) int {
	n := 0
	for _, c := range r.callsCopy() {
		if c.op == op {
			n++
		}
	}
	return n
}

// fakeDrafts is an in-memory local draft store.
type fakeDrafts struct {
	mu    sync.Mutex
	clock Clock
	rows  map[document.Key]*document.Draft
	saves int
	fail  bool
}

func newFakeDrafts(clock Clock) *fakeDrafts {
	return &fakeDrafts{clock: clock, rows: map[document.Key]*document.Draft{}}
}

func (d *fakeDrafts) Save(_ context.Context, key document.Key, payload document.Payload) time.Time {
	return d.put(&document.Draft{Kind: key.Kind, RemoteID: key.RemoteID, Payload: payload.Clone()})
}

func (d *fakeDrafts) SaveNew(_ context.Context, kind string, payload document.Payload, createKey string) time.Time {
	return d.put(&document.Draft{Kind: kind, Payload: payload.Clone(), CreateKey: createKey})
}

func (d *fakeDrafts) put(dr *document.Draft) time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return time.Time{}
	}
	d.saves++
	dr.SavedAt = d.clock.Now()
	d.rows[dr.Key()] = dr
	return dr.SavedAt
}

func (d *fakeDrafts) Clear(_ context.Context, key document.Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rows, key)
}

func (d *fakeDrafts) Load(_ context.Context, key document.Key) (*document.Draft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dr, ok := d.rows[key]
	if !ok {
		return nil, false
	}
	cp := *dr
	cp.Payload = dr.Payload.Clone()
	return &cp, true
}

func (d *fakeDrafts) HasRecoverable(_ context.Context, kind string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.rows[document.NewKey(kind)]
	return ok
}

func (d *fakeDrafts) saveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saves
}

func (d *fakeDrafts) has(key document.Key) bool {
	_, ok := d.Load(context.Background(), key)
	return ok
}
