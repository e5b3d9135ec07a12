package document

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Signature fingerprints a payload's content. Two payloads with equal
// JSON values have equal signatures regardless of map order or numeric
// Go type (int 1 and float64 1 are the same value).
type Signature string

// Sign computes the signature of p.
func Sign(p Payload) Signature {
	if p == nil {
		p = Payload{}
	}
	sum := sha256.Sum256(canonicalBytes(p))
	return Signature(hex.EncodeToString(sum[:]))
}

func canonicalBytes(p Payload) []byte {
	s, err := structpb.NewStruct(normalize(p))
	if err == nil {
		b, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
		if err == nil {
			return b
		}
	}
	// encoding/json sorts map keys, so this is stable too.
	b, _ := json.Marshal(p)
	return b
}

// normalize turns named map and slice types into the shapes structpb accepts.
func normalize(p Payload) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case Payload:
		return normalize(t)
	case map[string]any:
		return normalize(t)
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = normalizeValue(vv)
		}
		return s
	case []string:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = vv
		}
		return s
	default:
		return v
	}
}
