package model

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

// CreateID returns a random uuid in base58, used to tag sync runs.
func CreateID() string {
	id := uuid.New()
	return base58.Encode(id[:])
}
