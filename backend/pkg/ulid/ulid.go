// Package `ulid` is the subset of `oklog/ulid` that we use.  `walrestore`
// uses ULIDs to correlate the log lines of a restore attempt.
package ulid

import (
	crand "crypto/rand"

	"github.com/oklog/ulid"
)

// `I` is an `oklog/ulid.ULID`.
type I = ulid.ULID

func New() (I, error) {
	return ulid.New(ulid.Now(), crand.Reader)
}

// `MustNew()` panics if the system entropy source fails.
func MustNew() I {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}
