package entitlement

import (
	"strings"

	"github.com/google/uuid"
)

// ParseTenantID validates a tenant identifier without any I/O. Malformed and
// placeholder values (pre-signup temporary ids, the nil UUID) are rejected
// locally so the resolver never spends a network round trip on them.
func ParseTenantID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if len(s) != 36 {
		return uuid.Nil, ErrInvalidTenantID
	}
	// Cheap shape check before the full parse.
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return uuid.Nil, ErrInvalidTenantID
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidTenantID
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrInvalidTenantID
	}
	return id, nil
}
