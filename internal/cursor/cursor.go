// Package cursor implements the opaque resumption token for the change
// feed. A cursor names the last change-log row a client has already
// consumed, as an (updated_at, id) pair; the zero value means "start of
// time". The serialized form is URL-safe base64 over a small JSON tuple,
// so clients can treat tokens as black boxes and a corrupted token simply
// restarts the scan from the beginning.
package cursor

import (
	"encoding/base64"
	"encoding/json"
)

// Cursor marks the last row already seen in a change-log scan. Rows
// compare by (UpdatedAt, ID) ascending; both fields are plain strings so
// the comparison is lexicographic on either side of the wire.
type Cursor struct {
	UpdatedAt string `json:"u"`
	ID        string `json:"i"`
}

// IsZero reports whether c marks the start of time.
func (c Cursor) IsZero() bool {
	return c.UpdatedAt == "" && c.ID == ""
}

// Encode serializes c into an opaque token.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses a token produced by Encode. Any decoding failure, and the
// empty token, yield the zero cursor: a client that forgot or corrupted
// its cursor re-reads history instead of failing.
func Decode(token string) Cursor {
	if token == "" {
		return Cursor{}
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}
	}
	return c
}
