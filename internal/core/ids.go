package core

import (
	"encoding/hex"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces collision-resistant identifiers for lists and items.
type IDGenerator interface {
	NewID() string
}

// uuidGenerator hands out random (v4) UUIDs and falls back to a
// timestamp plus random hex suffix when the random source fails.
type uuidGenerator struct {
	newRandom func() (uuid.UUID, error)
	now       func() time.Time
}

// NewIDGenerator creates the default IDGenerator.
func NewIDGenerator() IDGenerator {
	return &uuidGenerator{newRandom: uuid.NewRandom, now: time.Now}
}

func (g *uuidGenerator) NewID() string {
	if u, err := g.newRandom(); err == nil {
		return u.String()
	}
	return fallbackID(g.now())
}

func fallbackID(now time.Time) string {
	var suffix [6]byte
	for i := range suffix {
		suffix[i] = byte(rand.UintN(256))
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + hex.EncodeToString(suffix[:])
}
