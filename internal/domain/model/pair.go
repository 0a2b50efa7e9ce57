package model

import (
	"bytes"

	"github.com/google/uuid"
)

// Pair is the canonical form of an unordered pair of participants: Low sorts
// byte-wise before High, which matches uuid ordering in Postgres and the
// lowercase text ordering used by the SQLite store.
type Pair struct {
	Low  uuid.UUID
	High uuid.UUID
}

func NewPair(a, b uuid.UUID) Pair {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

func (p Pair) Valid() bool {
	return p.Low != uuid.Nil && p.High != uuid.Nil && bytes.Compare(p.Low[:], p.High[:]) < 0
}

// Key is the stable text form used for lock names and logs.
func (p Pair) Key() string {
	return p.Low.String() + ":" + p.High.String()
}
