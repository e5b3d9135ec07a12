package session

import (
	"context"

	"github.com/dmitrijs2005/draftkeeper/internal/client/syncstatus"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

// TeardownResult tells the caller what happened when the editor is about
// to go away.
type TeardownResult struct {
	// Saved is true when the document was written to the local draft store.
	Saved bool
	// Unsynced is true when the remote store does not hold the latest
	// content. Callers should warn the user; the local draft is already
	// written at this point.
	Unsynced bool
	Status   syncstatus.Status
}

// Teardown is the last-resort guard run before the editor closes. It saves
// a populated, unsynced document locally and then reports whether a warning
// is due. It does not stop the session; the caller does that once the user
// confirms.
func (s *Session) Teardown(ctx context.Context) TeardownResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res TeardownResult
	// A clean document is already held remotely. An empty one would only
	// come back as a recovery prompt with nothing in it.
	if !s.closed && s.dirty && document.IsMeaningful(s.current) {
		s.saveLocked(ctx)
		res.Saved = s.localSaved
	}
	res.Status = s.status
	res.Unsynced = s.status != syncstatus.Synced
	if res.Unsynced {
		s.logger.Info(ctx, "closing with unsynced changes", "remote_id", s.remoteID, "status", s.status.String(), "saved_locally", res.Saved)
	}
	return res
}

// SetOnline feeds a connectivity change into the session. Coming back
// online with unsynced edits pushes immediately instead of waiting for the
// quiet period.
func (s *Session) SetOnline(ctx context.Context, online bool) {
	s.mu.Lock()
	if s.closed || s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online
	if online {
		s.applyLocked(syncstatus.ConnectivityRestored)
	} else {
		s.applyLocked(syncstatus.ConnectivityLost)
	}
	push := online && s.dirty
	v := s.viewLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "connectivity changed", "online", online)
	s.notify(v)
	if push {
		_ = s.Push(ctx)
	}
}
