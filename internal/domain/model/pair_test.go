package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewPairIsOrderIndependent(t *testing.T) {
	a := uuid.MustParse("9b2f7a62-8c1e-4f5e-9a0b-2d3c4e5f6a7b")
	b := uuid.MustParse("1c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f")

	ab := NewPair(a, b)
	ba := NewPair(b, a)
	if ab != ba {
		t.Fatalf("pair depends on argument order: %+v vs %+v", ab, ba)
	}
	if ab.Low != b || ab.High != a {
		t.Fatalf("unexpected canonical order: %+v", ab)
	}
	if !ab.Valid() {
		t.Fatalf("expected pair to be valid")
	}
	if ab.Key() != b.String()+":"+a.String() {
		t.Fatalf("unexpected pair key: %s", ab.Key())
	}
}

func TestPairInvalidForSelfAndNil(t *testing.T) {
	id := uuid.New()
	if NewPair(id, id).Valid() {
		t.Fatalf("self pair must be invalid")
	}
	if NewPair(id, uuid.Nil).Valid() {
		t.Fatalf("pair with nil id must be invalid")
	}
}

func TestMatchCounterpart(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	pair := NewPair(a, b)
	m := Match{ParticipantLow: pair.Low, ParticipantHigh: pair.High}

	if got := m.Counterpart(a); got != b {
		t.Fatalf("counterpart of a: got %s want %s", got, b)
	}
	if got := m.Counterpart(b); got != a {
		t.Fatalf("counterpart of b: got %s want %s", got, a)
	}
	if got := m.Counterpart(uuid.New()); got != uuid.Nil {
		t.Fatalf("expected nil counterpart for stranger, got %s", got)
	}
	if m.Pair() != pair {
		t.Fatalf("match pair mismatch")
	}
}
