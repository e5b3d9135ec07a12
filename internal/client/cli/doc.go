// Package cli provides the interactive DraftKeeper command-line editor.
//
// It wires configuration, the local draft database, the server client, the
// session manager and a connectivity watcher, then runs a REPL in which the
// user edits one document at a time.
//
// Key features:
//   - Register / Login
//   - new / open a document, set and unset fields, show it
//   - Automatic local snapshots and debounced cloud sync, with a status badge
//   - Recovery prompt for unsynced drafts left behind by a previous run
//   - A confirmation before closing a document that is not synced
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewRootCommand, App and runREPL for details.
package cli
