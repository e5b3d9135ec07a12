package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/draftkeeper/internal/client/recovery"
	"github.com/dmitrijs2005/draftkeeper/internal/client/session"
	"github.com/dmitrijs2005/draftkeeper/internal/client/syncstatus"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

var errCloseDeclined = errors.New("close cancelled")

// decide asks whether an orphaned draft should be recovered.
func (a *App) decide(p recovery.Prompt) recovery.Decision {
	printlnFn(fmt.Sprintf("Found unsaved changes for %s from %s.", docLabel(p.Kind, p.RemoteID), formatTime(p.SavedAt)))
	if p.Excerpt != "" {
		printlnFn("  " + p.Excerpt)
	}
	if p.RemoteUnavailable {
		printlnFn("  The server copy could not be checked.")
	}
	if Confirm(a.scanner, "Recover them?", true, a.out) {
		return recovery.Recover
	}
	return recovery.Discard
}

func (a *App) openDocument(ctx context.Context, kind, remoteID string, seed document.Payload) error {
	if closed, err := a.Close(ctx); err != nil || !closed {
		return errCloseDeclined
	}

	s, err := a.opener.Open(ctx, kind, remoteID, a.decide, session.OpenOptions{
		Online: a.online(),
		Seed:   seed,
		OnRemoteID: func(id string) {
			printlnFn(fmt.Sprintf("Document created on the server with id %s", id))
		},
	})
	if err != nil {
		printlnFn("Cannot open document:", err)
		return err
	}

	a.mu.Lock()
	a.sess = s
	a.mu.Unlock()
	// Connectivity may have changed while Open was running.
	s.SetOnline(ctx, a.online())

	v := s.View()
	printlnFn(fmt.Sprintf("Editing %s %s", docLabel(v.Kind, v.RemoteID), statusBadge(v.Status)))
	return nil
}

// New starts a new document: new <kind>.
func (a *App) New(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: new <kind>")
		return nil
	}
	return a.openDocument(ctx, args[0], "", nil)
}

// Open edits an existing document: open <kind> <id>.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 2 {
		printlnFn("Usage: open <kind> <id>")
		return nil
	}
	return a.openDocument(ctx, args[0], args[1], nil)
}

// Duplicate closes the open document and starts a new one of the same kind
// holding a copy of its content.
func (a *App) Duplicate(ctx context.Context) error {
	s, err := a.requireDocument()
	if err != nil {
		return err
	}
	kind, seed := s.View().Kind, s.Current()
	return a.openDocument(ctx, kind, "", seed)
}

func (a *App) requireDocument() (*session.Session, error) {
	s := a.current()
	if s == nil {
		printlnFn("No document open. Use 'new <kind>' or 'open <kind> <id>'.")
		return nil, session.ErrNotOpen
	}
	return s, nil
}

// Set changes one field: set <field> <value...>.
func (a *App) Set(ctx context.Context, args []string) error {
	s, err := a.requireDocument()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		printlnFn("Usage: set <field> <value>")
		return nil
	}
	s.OnMutation(s.Current().With(args[0], strings.Join(args[1:], " ")))
	return nil
}

// Unset removes one field: unset <field>.
func (a *App) Unset(ctx context.Context, args []string) error {
	s, err := a.requireDocument()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		printlnFn("Usage: unset <field>")
		return nil
	}
	s.OnMutation(s.Current().Without(args[0]))
	return nil
}

func (a *App) Show(ctx context.Context) error {
	s, err := a.requireDocument()
	if err != nil {
		return err
	}
	renderPayload(a.out, s.Current())
	return nil
}

func (a *App) Status(ctx context.Context) error {
	s, err := a.requireDocument()
	if err != nil {
		return err
	}
	renderStatus(a.out, s.View())
	return nil
}

// Save writes a local draft and pushes right away. A failed push is only
// reported; the session keeps retrying.
func (a *App) Save(ctx context.Context) error {
	s, err := a.requireDocument()
	if err != nil {
		return err
	}
	if err := s.SaveNow(ctx); err != nil {
		printlnFn("Saved locally; sync failed and will be retried:", err)
		return nil
	}
	switch v := s.View(); {
	case v.Status == syncstatus.Offline:
		printlnFn("Saved locally; will sync when back online.")
	case !v.Dirty:
		printlnFn("Saved.")
	default:
		printlnFn("Saved locally.")
	}
	return nil
}

// Drafts lists local drafts, newest first.
func (a *App) Drafts(ctx context.Context) error {
	list := a.drafts.List(ctx)
	if len(list) == 0 {
		printlnFn("No local drafts.")
		return nil
	}
	renderDrafts(a.out, list, a.cfg.PreviewFields)
	return nil
}

// Docs lists the user's documents on the server: docs [kind].
func (a *App) Docs(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		printlnFn("Log in first.")
		return nil
	}
	kind := ""
	if len(args) > 0 {
		kind = args[0]
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()
	list, err := a.docs.List(ctx, kind)
	if err != nil {
		printlnFn("Cannot list documents:", err)
		return err
	}
	if len(list) == 0 {
		printlnFn("No documents.")
		return nil
	}
	renderDocuments(a.out, list, a.cfg.PreviewFields)
	return nil
}

// Close closes the open document. Unsynced changes are saved locally first
// and the user is asked to confirm. It reports whether the document is
// closed.
func (a *App) Close(ctx context.Context) (bool, error) {
	s := a.current()
	if s == nil {
		return true, nil
	}

	res := s.Teardown(ctx)
	if res.Unsynced && (res.Saved || document.IsMeaningful(s.Current())) {
		printlnFn(fmt.Sprintf("Changes are not synced to the server %s.", statusBadge(res.Status)))
		if res.Saved {
			printlnFn("They were saved locally and will be offered next time you open this document.")
		}
		if !Confirm(a.scanner, "Close anyway?", false, a.out) {
			return false, nil
		}
	}

	s.Stop()
	a.mu.Lock()
	if a.sess == s {
		a.sess = nil
	}
	a.mu.Unlock()
	return true, nil
}
