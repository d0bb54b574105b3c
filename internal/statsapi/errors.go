package statsapi

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a team or player lookup yields no match
type NotFoundError struct {
	Kind  string // "team" or "player"
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Query)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
