package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID string. Run ids and plan ids use it so that they
// sort by creation time.
func NewID() string {
	return NewIDAt(time.Now())
}

// NewIDAt generates a ULID for the given instant.
func NewIDAt(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// IDTime extracts the timestamp embedded in a ULID.
func IDTime(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
