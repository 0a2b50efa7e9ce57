package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ivankudzin/pawmatch/internal/domain"
	"github.com/ivankudzin/pawmatch/internal/domain/enums"
	"github.com/ivankudzin/pawmatch/internal/domain/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestSwipeRepoUpsertInsertsThenOverwrites(t *testing.T) {
	db := newTestDB(t)
	repo := NewSwipeRepo(db)
	ctx := context.Background()

	actor, subject := uuid.New(), uuid.New()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	swipe, created, err := repo.Upsert(ctx, actor, subject, enums.DecisionLike, first)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatalf("expected first upsert to create the swipe")
	}
	if !swipe.CreatedAt.Equal(first) || !swipe.SwipedAt.Equal(first) {
		t.Fatalf("unexpected timestamps: %+v", swipe)
	}

	swipe, created, err = repo.Upsert(ctx, actor, subject, enums.DecisionPass, second)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatalf("expected second upsert to overwrite")
	}
	if swipe.Decision != enums.DecisionPass {
		t.Fatalf("expected pass, got %s", swipe.Decision)
	}
	if !swipe.CreatedAt.Equal(first) || !swipe.SwipedAt.Equal(second) {
		t.Fatalf("expected created_at kept and swiped_at bumped, got %+v", swipe)
	}

	count, err := repo.Count(ctx, actor, subject)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one live swipe row, got %d", count)
	}

	stored, found, err := repo.Get(ctx, actor, subject)
	if err != nil || !found {
		t.Fatalf("get swipe: found=%v err=%v", found, err)
	}
	if stored.Decision != enums.DecisionPass {
		t.Fatalf("expected stored pass, got %s", stored.Decision)
	}
}

func TestSwipeRepoRejectsInvalidKeys(t *testing.T) {
	db := newTestDB(t)
	repo := NewSwipeRepo(db)
	ctx := context.Background()
	id := uuid.New()

	cases := []struct {
		name     string
		actor    uuid.UUID
		subject  uuid.UUID
		decision enums.Decision
	}{
		{name: "self swipe", actor: id, subject: id, decision: enums.DecisionLike},
		{name: "nil actor", actor: uuid.Nil, subject: id, decision: enums.DecisionLike},
		{name: "unknown decision", actor: id, subject: uuid.New(), decision: enums.Decision("superlike")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := repo.Upsert(ctx, tc.actor, tc.subject, tc.decision, time.Now())
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	count, err := repo.Count(ctx, id, id)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing written, got %d rows", count)
	}
}

func TestSwipeRepoGetMissing(t *testing.T) {
	repo := NewSwipeRepo(newTestDB(t))

	_, found, err := repo.Get(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected missing swipe")
	}
}

func TestMatchRepoCreateIfAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepo(db)
	ctx := context.Background()

	pair := model.NewPair(uuid.New(), uuid.New())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	match, created, err := repo.CreateIfAbsent(ctx, pair, at)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if !created {
		t.Fatalf("expected match to be created")
	}
	if match.Pair() != pair || !match.CreatedAt.Equal(at) {
		t.Fatalf("unexpected match: %+v", match)
	}

	again, created, err := repo.CreateIfAbsent(ctx, pair, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatalf("expected existing match to be returned")
	}
	if !again.CreatedAt.Equal(at) {
		t.Fatalf("existing match must keep its creation time, got %s", again.CreatedAt)
	}

	count, err := repo.CountByPair(ctx, pair)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one match row, got %d", count)
	}
}

func TestMatchRepoRawDuplicateMapsToConflict(t *testing.T) {
	db := newTestDB(t)
	pair := model.NewPair(uuid.New(), uuid.New())
	ctx := context.Background()

	insert := `INSERT INTO matches (participant_low, participant_high, created_at) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(ctx, insert, pair.Low, pair.High, 1); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	_, err := db.ExecContext(ctx, insert, pair.Low, pair.High, 2)
	if err == nil {
		t.Fatalf("expected primary key violation")
	}
	if !errors.Is(mapError(err, "insert match"), domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", mapError(err, "insert match"))
	}
}

func TestMatchRepoFindByParticipantOrdersByCreation(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepo(db)
	ctx := context.Background()

	user := uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	animals := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	// inserted newest first so ordering comes from created_at, not rowid
	for i := len(animals) - 1; i >= 0; i-- {
		if _, _, err := repo.CreateIfAbsent(ctx, model.NewPair(user, animals[i]), base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("create match %d: %v", i, err)
		}
	}
	if _, _, err := repo.CreateIfAbsent(ctx, model.NewPair(uuid.New(), uuid.New()), base); err != nil {
		t.Fatalf("create unrelated match: %v", err)
	}

	var got []uuid.UUID
	for match, err := range repo.FindByParticipant(ctx, user) {
		if err != nil {
			t.Fatalf("iterate: %v", err)
		}
		got = append(got, match.Counterpart(user))
	}

	if len(got) != len(animals) {
		t.Fatalf("expected %d matches, got %d", len(animals), len(got))
	}
	for i := range animals {
		if got[i] != animals[i] {
			t.Fatalf("match %d: expected %s, got %s", i, animals[i], got[i])
		}
	}
}

func TestMatchRepoFindByParticipantStopsEarly(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepo(db)
	ctx := context.Background()

	user := uuid.New()
	for i := 0; i < 3; i++ {
		if _, _, err := repo.CreateIfAbsent(ctx, model.NewPair(user, uuid.New()), time.Now()); err != nil {
			t.Fatalf("create match: %v", err)
		}
	}

	seen := 0
	for _, err := range repo.FindByParticipant(ctx, user) {
		if err != nil {
			t.Fatalf("iterate: %v", err)
		}
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected to stop after one match, saw %d", seen)
	}

	// the single pooled connection must be released after an early break
	if _, err := repo.CountByPair(ctx, model.NewPair(user, uuid.New())); err != nil {
		t.Fatalf("follow-up query: %v", err)
	}
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	txm := NewTxManager(db)
	swipes := NewSwipeRepo(db)
	ctx := context.Background()

	actor, subject := uuid.New(), uuid.New()
	boom := errors.New("boom")

	err := txm.RunInTx(ctx, func(txCtx context.Context) error {
		if _, _, err := swipes.Upsert(txCtx, actor, subject, enums.DecisionLike, time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	count, err := swipes.Count(ctx, actor, subject)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}
