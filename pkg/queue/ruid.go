package queue

import (
	"crypto/rand"
	"encoding/hex"
)

// ruidPrefix marks job ids on the wire.
const ruidPrefix = "room-"

// NewRUID generates a fresh job id: "room-" plus 16 lowercase hex chars
// from a CSPRNG. Uniqueness within a process is enforced by the store's
// duplicate-registration check; the 64 random bits make a retry there a
// theoretical event.
func NewRUID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic("queue: reading random bytes: " + err.Error())
	}
	return ruidPrefix + hex.EncodeToString(b[:])
}
