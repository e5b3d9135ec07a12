package session

import (
	"context"

	"github.com/dmitrijs2005/draftkeeper/internal/client/recovery"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

// Drafts is the local draft store as used by sessions and recovery.
type Drafts interface {
	DraftStore
	recovery.DraftStore
}

// Remote is the remote store as used by sessions and recovery.
type Remote interface {
	RemoteStore
	recovery.Fetcher
}

// DecideFunc asks the user whether to recover an orphaned draft.
type DecideFunc func(recovery.Prompt) recovery.Decision

// OpenOptions carry per-editor settings for Manager.Open.
type OpenOptions struct {
	Online bool
	// Seed is the starting content of a new document when no draft is
	// recovered.
	Seed       document.Payload
	OnRemoteID func(id string)
	OnChange   func(View)
}

// Manager opens editor sessions: it runs recovery, settles the starting
// document and starts the session timers.
type Manager struct {
	drafts   Drafts
	remote   Remote
	detector *recovery.Detector
	cfg      Config
	logger   logging.Logger
}

func NewManager(drafts Drafts, remote Remote, previewFields []string, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		drafts:   drafts,
		remote:   remote,
		detector: recovery.NewDetector(drafts, remote, previewFields, cfg.Logger),
		cfg:      cfg,
		logger:   cfg.Logger.With("module", "session_manager"),
	}
}

// Open starts editing the document (kind, remoteID); an empty remoteID
// opens a new document. When a recoverable draft is found, decide picks
// between recovering and discarding it; a nil decide recovers.
func (m *Manager) Open(ctx context.Context, kind, remoteID string, decide DecideFunc, opts OpenOptions) (*Session, error) {
	finding, err := m.detector.Detect(ctx, kind, remoteID)
	if err != nil {
		return nil, err
	}

	decision := recovery.Recover
	if finding.Offer() && decide != nil {
		decision = decide(*finding.Prompt)
	}

	res, err := m.detector.Resolve(ctx, finding, decision)
	if err != nil {
		return nil, err
	}

	p := Params{
		Kind:       kind,
		RemoteID:   remoteID,
		Payload:    res.Payload,
		Online:     opts.Online,
		CreateKey:  res.CreateKey,
		OnRemoteID: opts.OnRemoteID,
		OnChange:   opts.OnChange,
	}
	if res.Baseline != nil {
		p.Baseline = res.Baseline.Payload
	}
	if remoteID == "" && !res.Recovered && opts.Seed != nil {
		p.Payload = opts.Seed
	}

	s := New(m.drafts, m.remote, p, m.cfg)
	s.Start()
	m.logger.Info(ctx, "document opened", "kind", kind, "remote_id", remoteID, "recovered", res.Recovered, "status", s.View().Status.String())
	return s, nil
}
