// Package document holds the payload-agnostic data model shared by the
// draft engine, the transport and the server: the opaque Payload, the
// local Draft record, the authoritative Remote copy and the Key that ties
// a draft to a document.
package document

import "time"

// Payload is an opaque JSON-like document. The engine never interprets its
// fields except for previews.
type Payload map[string]any

// Clone returns a deep copy of p. Nested maps and slices are copied; scalar
// values are shared.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Payload:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// With returns a copy of p with field set to value.
func (p Payload) With(field string, value any) Payload {
	out := p.Clone()
	out[field] = value
	return out
}

// Without returns a copy of p with field removed.
func (p Payload) Without(field string) Payload {
	out := p.Clone()
	delete(out, field)
	return out
}

// Key identifies a draft slot. An empty RemoteID stands for a document that
// has not been created remotely yet.
type Key struct {
	Kind     string
	RemoteID string
}

// NewKey returns the slot for a brand-new document of the given kind.
func NewKey(kind string) Key {
	return Key{Kind: kind}
}

// IsNew reports whether the key points at the "not yet created" slot.
func (k Key) IsNew() bool {
	return k.RemoteID == ""
}

func (k Key) String() string {
	if k.IsNew() {
		return k.Kind + "/<new>"
	}
	return k.Kind + "/" + k.RemoteID
}

// Draft is the locally persisted snapshot of a document.
type Draft struct {
	Kind     string
	RemoteID string
	Payload  Payload
	SavedAt  time.Time
	// CreateKey is the idempotency key of the pending create for a
	// never-created document. Empty for drafts of known documents.
	CreateKey string
}

// Key returns the slot the draft occupies.
func (d *Draft) Key() Key {
	return Key{Kind: d.Kind, RemoteID: d.RemoteID}
}

// Remote is the authoritative copy held by the document server.
type Remote struct {
	ID        string
	OwnerID   string
	Kind      string
	Payload   Payload
	UpdatedAt time.Time
}
