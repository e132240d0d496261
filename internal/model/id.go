package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID string used for testcase names and record ids.
// IDs generated by one process sort in creation order.
func NewID() string {
	return ulid.Make().String()
}

// ParseID validates id and returns the creation time encoded in it.
func ParseID(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
