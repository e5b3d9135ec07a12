// Package recovery decides, when an editor opens, whether an orphaned local
// draft should be offered to the user.
//
// For brand-new documents a draft in the "new" slot is offered when it
// holds any content; empty placeholders are cleared silently. For
// documents that exist remotely the draft is offered only when it was saved
// strictly after the remote copy was last updated; older or identical
// drafts are cleared without asking. Whole snapshots win or lose, fields
// are never merged.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

var (
	ErrNothingToRecover  = errors.New("no draft to recover")
	ErrRemoteUnavailable = errors.New("remote copy unavailable")
)

// DraftStore is the part of the local draft store the detector needs.
type DraftStore interface {
	Load(ctx context.Context, key document.Key) (*document.Draft, bool)
	Clear(ctx context.Context, key document.Key)
	HasRecoverable(ctx context.Context, kind string) bool
}

// Fetcher reads the authoritative copy of a document.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*document.Remote, error)
}

// Prompt is what the user sees when asked to recover.
type Prompt struct {
	Kind     string
	RemoteID string
	SavedAt  time.Time
	Excerpt  string
	// RemoteUnavailable is set when the remote copy could not be fetched
	// and freshness was not compared.
	RemoteUnavailable bool
}

// Finding is the outcome of Detect.
type Finding struct {
	Key       document.Key
	Draft     *document.Draft
	Remote    *document.Remote
	RemoteErr error
	Prompt    *Prompt
}

// Offer reports whether the user has to choose between recover and discard.
func (f *Finding) Offer() bool {
	return f.Prompt != nil
}

type Decision int

const (
	Recover Decision = iota
	Discard
)

func (d Decision) String() string {
	if d == Recover {
		return "recover"
	}
	return "discard"
}

// Resolution is the document an editor should start from.
type Resolution struct {
	Key     document.Key
	Payload document.Payload
	// Baseline is the remote copy the payload is compared against; nil for
	// new documents and when the remote copy could not be fetched.
	Baseline  *document.Remote
	Recovered bool
	// CreateKey is the idempotency key stored with a recovered draft of a
	// never-created document.
	CreateKey string
}

type Detector struct {
	drafts        DraftStore
	remote        Fetcher
	previewFields []string
	logger        logging.Logger
}

func NewDetector(drafts DraftStore, remote Fetcher, previewFields []string, l logging.Logger) *Detector {
	if len(previewFields) == 0 {
		previewFields = document.DefaultPreviewFields
	}
	return &Detector{
		drafts:        drafts,
		remote:        remote,
		previewFields: previewFields,
		logger:        l.With("module", "recovery"),
	}
}

// Detect inspects the draft slot for (kind, remoteID) and, for known
// documents, the remote copy.
func (d *Detector) Detect(ctx context.Context, kind, remoteID string) (*Finding, error) {
	key := document.Key{Kind: kind, RemoteID: remoteID}
	if key.IsNew() {
		return d.detectNew(ctx, key), nil
	}
	return d.detectKnown(ctx, key)
}

func (d *Detector) detectNew(ctx context.Context, key document.Key) *Finding {
	f := &Finding{Key: key}
	if !d.drafts.HasRecoverable(ctx, key.Kind) {
		return f
	}
	draft, ok := d.drafts.Load(ctx, key)
	if !ok {
		return f
	}
	if !document.IsMeaningful(draft.Payload) {
		d.logger.Info(ctx, "local draft has no content, clearing", "key", key.String())
		d.drafts.Clear(ctx, key)
		return f
	}
	f.Draft = draft
	f.Prompt = d.prompt(draft, false)
	return f
}

func (d *Detector) detectKnown(ctx context.Context, key document.Key) (*Finding, error) {
	draft, hasDraft := d.drafts.Load(ctx, key)

	remote, err := d.remote.Fetch(ctx, key.RemoteID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || !hasDraft {
			return nil, fmt.Errorf("fetch %s: %w", key, err)
		}
		d.logger.Warn(ctx, "remote copy unavailable, offering local draft", "key", key.String(), "error", err)
		return &Finding{Key: key, Draft: draft, RemoteErr: err, Prompt: d.prompt(draft, true)}, nil
	}

	f := &Finding{Key: key, Remote: remote}
	if !hasDraft {
		return f, nil
	}

	switch {
	case document.Sign(draft.Payload) == document.Sign(remote.Payload):
		d.logger.Info(ctx, "local draft matches remote copy, clearing", "key", key.String())
		d.drafts.Clear(ctx, key)
	case draft.SavedAt.After(remote.UpdatedAt):
		f.Draft = draft
		f.Prompt = d.prompt(draft, false)
	default:
		d.logger.Info(ctx, "local draft older than remote copy, clearing",
			"key", key.String(), "saved_at", draft.SavedAt, "updated_at", remote.UpdatedAt)
		d.drafts.Clear(ctx, key)
	}
	return f, nil
}

func (d *Detector) prompt(draft *document.Draft, remoteUnavailable bool) *Prompt {
	return &Prompt{
		Kind:              draft.Kind,
		RemoteID:          draft.RemoteID,
		SavedAt:           draft.SavedAt,
		Excerpt:           document.Excerpt(draft.Payload, d.previewFields),
		RemoteUnavailable: remoteUnavailable,
	}
}

// Resolve applies the user's decision. Findings without an offer resolve to
// the remote copy, or an empty document for new ones, whatever the decision.
func (d *Detector) Resolve(ctx context.Context, f *Finding, decision Decision) (*Resolution, error) {
	res := &Resolution{Key: f.Key, Baseline: f.Remote}

	if f.Offer() && decision == Recover {
		if f.Draft == nil {
			return nil, ErrNothingToRecover
		}
		res.Payload = f.Draft.Payload.Clone()
		res.Recovered = true
		if f.Key.IsNew() {
			res.CreateKey = f.Draft.CreateKey
		}
		d.logger.Info(ctx, "draft recovered", "key", f.Key.String())
		return res, nil
	}

	if f.Remote == nil && !f.Key.IsNew() {
		// Keep the draft: it is the only copy we can reach.
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, f.RemoteErr)
	}

	if f.Offer() {
		d.drafts.Clear(ctx, f.Key)
		d.logger.Info(ctx, "draft discarded", "key", f.Key.String())
	}

	if f.Remote != nil {
		res.Payload = f.Remote.Payload.Clone()
	} else {
		res.Payload = document.Payload{}
	}
	return res, nil
}
