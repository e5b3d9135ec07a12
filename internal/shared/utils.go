// Package shared holds small helpers used by both the client and the server.
package shared

// WipeByteArray overwrites b with zeros. Used for passwords once they have
// been sent or hashed. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
