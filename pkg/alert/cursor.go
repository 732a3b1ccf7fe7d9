package alert

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Cursor is an opaque pagination token issued by a Store. Clients must not
// construct or inspect cursors; they only hand them back to the store that
// issued them.
type Cursor string

// EncodeCursor issues a token resuming after lastID for the given scope and
// filter. Store implementations share this codec so cursor/scope binding
// behaves identically across backends.
func EncodeCursor(scope Scope, filter Filter, lastID string) Cursor {
	raw := fmt.Sprintf("%s|%s|%s", scope, filter, lastID)
	return Cursor(base64.RawURLEncoding.EncodeToString([]byte(raw)))
}

// DecodeCursor validates a token against the query it is used with and
// returns the ID pagination resumes after. An undecodable token fails with
// ErrCursorInvalid; a token issued for another scope or filter fails with
// ErrCursorScope.
func DecodeCursor(c Cursor, scope Scope, filter Filter) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(string(c))
	if err != nil {
		return "", ErrCursorInvalid
	}

	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return "", ErrCursorInvalid
	}
	if Scope(parts[0]) != scope || Filter(parts[1]) != filter {
		return "", ErrCursorScope
	}

	return parts[2], nil
}
