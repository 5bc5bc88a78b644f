package model

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The zero value is invalid so an
// unset field is never mistaken for a real role.
type Role uint8

const (
	RoleTeacher Role = iota + 1
	RoleStudent
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleTeacher:
		return "TEACHER"
	case RoleStudent:
		return "STUDENT"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// ParseRole converts a wire name (case-insensitive) to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TEACHER":
		return RoleTeacher, nil
	case "STUDENT":
		return RoleStudent, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
