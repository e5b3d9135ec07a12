// Package session coordinates one open document: it keeps the in-memory
// copy, snapshots it into the local draft store on a fixed interval, and
// pushes it to the remote store after a quiet period following the last
// edit.
//
// All state is guarded by the session mutex. Timer callbacks, network
// completions and caller input are serialized through it; the remote
// create/update call is the only step that runs without the lock, and at
// most one such call is in flight per session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/client/syncstatus"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

var (
	ErrClosed  = errors.New("session closed")
	ErrNotOpen = errors.New("no document open")
)

// DraftStore is the best-effort local store. It never fails loudly; Save
// and SaveNew return the zero time when nothing was written.
type DraftStore interface {
	Save(ctx context.Context, key document.Key, payload document.Payload) time.Time
	// SaveNew keeps the create idempotency key next to the draft so that a
	// recovered document reuses it.
	SaveNew(ctx context.Context, kind string, payload document.Payload, createKey string) time.Time
	Clear(ctx context.Context, key document.Key)
}

// RemoteStore writes to the authoritative, owner-scoped document store.
// The owner is implied by the authenticated connection.
type RemoteStore interface {
	Create(ctx context.Context, kind string, payload document.Payload, idempotencyKey string) (*document.Remote, error)
	Update(ctx context.Context, id string, payload document.Payload) (time.Time, error)
}

// Params describe the document a session starts from.
type Params struct {
	Kind     string
	RemoteID string
	Payload  document.Payload
	// Baseline is the payload the remote store is known to hold. Nil for new
	// documents and when the remote copy could not be read.
	Baseline document.Payload
	Online   bool
	// CreateKey is the idempotency key of an earlier create attempt for a
	// recovered new document. A fresh key is generated when empty.
	CreateKey string

	// OnRemoteID is called once a new document has been created remotely.
	OnRemoteID func(id string)
	// OnChange is called after every state change with a fresh view.
	OnChange func(View)
}

// View is a read-only projection of the session for status rendering.
type View struct {
	Kind          string
	RemoteID      string
	Status        syncstatus.Status
	Dirty         bool
	Online        bool
	InFlight      bool
	LocalSaved    bool
	LastLocalSave time.Time
	LastSynced    time.Time
	LastError     error
}

type Session struct {
	mu sync.Mutex

	cfg    Config
	drafts DraftStore
	remote RemoteStore
	logger logging.Logger

	kind      string
	remoteID  string
	createKey string

	current    document.Payload
	lastPushed document.Signature
	dirty      bool
	status     syncstatus.Status
	online     bool

	localSaved    bool
	lastLocalSave time.Time
	lastSynced    time.Time
	lastErr       error

	inFlight bool
	followUp bool

	started       bool
	closed        bool
	snapshotTimer Timer
	pushTimer     Timer
	pushGen       uint64

	onRemoteID func(string)
	onChange   func(View)
}

// New builds a session. Timers do not run until Start.
func New(drafts DraftStore, remote RemoteStore, p Params, cfg Config) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:        cfg,
		drafts:     drafts,
		remote:     remote,
		kind:       p.Kind,
		remoteID:   p.RemoteID,
		createKey:  p.CreateKey,
		current:    p.Payload.Clone(),
		online:     p.Online,
		onRemoteID: p.OnRemoteID,
		onChange:   p.OnChange,
	}
	s.logger = cfg.Logger.With("module", "session", "kind", p.Kind)
	if s.createKey == "" {
		s.createKey = cfg.NewIdempotencyKey()
	}

	switch {
	case p.RemoteID == "":
		// An empty new document has nothing worth creating.
		if document.IsMeaningful(s.current) {
			s.dirty = true
		} else {
			s.lastPushed = document.Sign(s.current)
		}
	case p.Baseline != nil:
		s.lastPushed = document.Sign(p.Baseline)
		s.dirty = document.Sign(s.current) != s.lastPushed
	default:
		s.dirty = true
	}
	s.status = syncstatus.Initial(s.dirty, s.online)
	return s
}

// Start arms the local snapshot timer and, for a dirty document, the push
// timer.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	s.armSnapshotLocked()
	if s.dirty {
		s.armPushLocked()
	}
	s.logger.Debug(context.Background(), "session started", "remote_id", s.remoteID, "status", s.status.String())
}

// Stop cancels both timers and closes the session. A push already in
// flight completes, but its result is dropped. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.snapshotTimer != nil {
		s.snapshotTimer.Stop()
	}
	if s.pushTimer != nil {
		s.pushTimer.Stop()
	}
	s.logger.Debug(context.Background(), "session stopped", "remote_id", s.remoteID)
}

// Current returns a copy of the in-memory document.
func (s *Session) Current() document.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// View returns the current status projection.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// OnMutation replaces the in-memory document with payload, marks the
// session dirty and restarts the quiet period.
func (s *Session) OnMutation(payload document.Payload) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.current = payload.Clone()
	s.dirty = true
	s.localSaved = false
	s.applyLocked(syncstatus.Mutation)
	if s.started {
		s.armPushLocked()
	}
	v := s.viewLocked()
	s.mu.Unlock()
	s.notify(v)
}

// ForceSaveNow writes the in-memory document to the local draft store.
// It never touches the network.
func (s *Session) ForceSaveNow(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.saveLocked(ctx)
	v := s.viewLocked()
	s.mu.Unlock()
	s.notify(v)
}

// SaveNow saves locally and pushes without waiting for the quiet period.
func (s *Session) SaveNow(ctx context.Context) error {
	s.ForceSaveNow(ctx)
	return s.Push(ctx)
}

// Push sends the in-memory document to the remote store.
//
// It does nothing when the content matches what was last confirmed, when
// offline, or when another push is in flight (that push is followed up once
// it completes). Remote errors are reflected in the status and returned.
func (s *Session) Push(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.inFlight {
		s.followUp = true
		s.mu.Unlock()
		return nil
	}
	if !s.online {
		s.mu.Unlock()
		return nil
	}

	lctx := context.WithoutCancel(ctx)
	snapshot := s.current.Clone()
	sig := document.Sign(snapshot)
	if sig == s.lastPushed || (s.remoteID == "" && !document.IsMeaningful(snapshot)) {
		if !s.dirty {
			s.mu.Unlock()
			return nil
		}
		// Edits were reverted to the confirmed content, or a new document
		// was emptied before it was ever created.
		s.lastPushed = sig
		s.dirty = false
		s.applyLocked(syncstatus.PushStart)
		s.applyLocked(syncstatus.PushSuccess)
		s.drafts.Clear(lctx, s.keyLocked())
		v := s.viewLocked()
		s.mu.Unlock()
		s.notify(v)
		return nil
	}

	kind, remoteID, createKey := s.kind, s.remoteID, s.createKey
	s.inFlight = true
	s.followUp = false
	s.applyLocked(syncstatus.PushStart)
	v := s.viewLocked()
	s.mu.Unlock()
	s.notify(v)

	created, updatedAt, err := s.send(ctx, kind, remoteID, createKey, snapshot)

	s.mu.Lock()
	s.inFlight = false
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug(lctx, "push finished after close, result dropped", "error", err)
		return ErrClosed
	}

	if err != nil {
		s.lastErr = err
		s.applyLocked(syncstatus.PushFailure)
		if !s.online {
			s.applyLocked(syncstatus.ConnectivityLost)
		} else if s.started {
			s.armPushLocked()
		}
		v := s.viewLocked()
		s.mu.Unlock()
		s.notify(v)
		s.logger.Warn(lctx, "push failed", "remote_id", remoteID, "error", err)
		return fmt.Errorf("push %s: %w", document.Key{Kind: kind, RemoteID: remoteID}, err)
	}

	adopted := ""
	if remoteID == "" {
		s.remoteID = created.ID
		adopted = created.ID
		s.drafts.Clear(lctx, document.NewKey(kind))
	}
	s.lastPushed = sig
	s.lastErr = nil
	s.lastSynced = updatedAt
	if s.lastSynced.IsZero() {
		s.lastSynced = s.cfg.Clock.Now()
	}
	s.applyLocked(syncstatus.PushSuccess)

	if document.Sign(s.current) == sig {
		s.dirty = false
		s.drafts.Clear(lctx, s.keyLocked())
	} else {
		// Edited while the push was in flight: keep the newer content safe
		// and go around again.
		s.saveLocked(lctx)
		s.applyLocked(syncstatus.Mutation)
		if s.started {
			s.armPushLocked()
		}
	}
	if !s.online {
		s.applyLocked(syncstatus.ConnectivityLost)
	}
	again := s.followUp && s.dirty && s.online
	s.followUp = false
	v = s.viewLocked()
	onRemoteID := s.onRemoteID
	s.mu.Unlock()

	if adopted != "" {
		s.logger.Info(lctx, "document created remotely", "remote_id", adopted)
		if onRemoteID != nil {
			onRemoteID(adopted)
		}
	}
	s.notify(v)

	if again {
		return s.Push(ctx)
	}
	return nil
}

func (s *Session) send(ctx context.Context, kind, remoteID, createKey string, payload document.Payload) (*document.Remote, time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PushTimeout)
	defer cancel()

	if remoteID == "" {
		created, err := s.remote.Create(ctx, kind, payload, createKey)
		if err != nil {
			return nil, time.Time{}, err
		}
		if created == nil || created.ID == "" {
			return nil, time.Time{}, errors.New("remote store returned no document id")
		}
		return created, created.UpdatedAt, nil
	}

	updatedAt, err := s.remote.Update(ctx, remoteID, payload)
	return nil, updatedAt, err
}

func (s *Session) keyLocked() document.Key {
	return document.Key{Kind: s.kind, RemoteID: s.remoteID}
}

func (s *Session) saveLocked(ctx context.Context) {
	var savedAt time.Time
	switch {
	case s.remoteID != "":
		savedAt = s.drafts.Save(ctx, s.keyLocked(), s.current)
	case document.IsMeaningful(s.current):
		savedAt = s.drafts.SaveNew(ctx, s.kind, s.current, s.createKey)
	default:
		// An emptied new document leaves no placeholder behind.
		s.drafts.Clear(ctx, document.NewKey(s.kind))
		s.localSaved = false
		return
	}
	if savedAt.IsZero() {
		return
	}
	s.lastLocalSave = savedAt
	s.localSaved = true
}

func (s *Session) applyLocked(e syncstatus.Event) {
	next := syncstatus.Transition(s.status, e, s.dirty)
	if next != s.status {
		s.logger.Debug(context.Background(), "status changed", "from", s.status.String(), "to", next.String(), "event", e.String())
	}
	s.status = next
}

func (s *Session) viewLocked() View {
	return View{
		Kind:          s.kind,
		RemoteID:      s.remoteID,
		Status:        s.status,
		Dirty:         s.dirty,
		Online:        s.online,
		InFlight:      s.inFlight,
		LocalSaved:    s.localSaved,
		LastLocalSave: s.lastLocalSave,
		LastSynced:    s.lastSynced,
		LastError:     s.lastErr,
	}
}

func (s *Session) notify(v View) {
	if s.onChange != nil {
		s.onChange(v)
	}
}

func (s *Session) armSnapshotLocked() {
	s.snapshotTimer = s.cfg.Clock.AfterFunc(s.cfg.SnapshotInterval, s.onSnapshotTick)
}

func (s *Session) onSnapshotTick() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	saved := false
	if s.dirty {
		s.saveLocked(context.Background())
		saved = true
	}
	s.armSnapshotLocked()
	v := s.viewLocked()
	s.mu.Unlock()
	if saved {
		s.notify(v)
	}
}

// armPushLocked (re)starts the quiet period. Earlier timers are stopped and
// invalidated so that only the latest one can fire a push.
func (s *Session) armPushLocked() {
	if s.pushTimer != nil {
		s.pushTimer.Stop()
	}
	s.pushGen++
	gen := s.pushGen
	s.pushTimer = s.cfg.Clock.AfterFunc(s.cfg.PushDelay, func() { s.onPushTimer(gen) })
}

func (s *Session) onPushTimer(gen uint64) {
	s.mu.Lock()
	stale := s.closed || gen != s.pushGen
	s.mu.Unlock()
	if stale {
		return
	}
	_ = s.Push(context.Background())
}
