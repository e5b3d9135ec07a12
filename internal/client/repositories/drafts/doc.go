// Package drafts provides the client-side persistence layer for document
// drafts.
//
// # Data Model
//
// One row per (kind, remote_id). An empty remote_id is the slot for a
// document that does not exist remotely yet. The payload is stored as JSON
// text and saved_at as Unix nanoseconds (UTC).
//
// Writes are upserts: a new save replaces the previous snapshot in place,
// so there is never more than one draft per slot and no history.
//
// Typical Usage
//
//	repo := drafts.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, &document.Draft{Kind: "report", Payload: p, SavedAt: now})
//	d, err := repo.Get(ctx, document.NewKey("report"))
//	ok, _ := repo.ExistsNew(ctx, "report")
//	_ = repo.Delete(ctx, d.Key())
package drafts
