package model

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidObjectID is returned for identifiers that are not 24 hex characters.
var ErrInvalidObjectID = errors.New("invalid object id; expected 24 hexadecimal characters")

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ObjectIDExample is the documented sample identifier.
const ObjectIDExample = "5ecd2d2d0faf391eadb211a7"

// ObjectID is a backend object identifier in its canonical lower-case hex form.
type ObjectID string

// ParseObjectID validates raw and returns its canonical form.
func ParseObjectID(raw string) (ObjectID, error) {
	if !objectIDPattern.MatchString(raw) {
		return "", ErrInvalidObjectID
	}
	return ObjectID(strings.ToLower(raw)), nil
}

func (id ObjectID) String() string { return string(id) }
