package match

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
	"github.com/mitchelldurbincs/ManaSearch/internal/testutil"
)

const testDeck = "10 Mountain\n10 Goblin Piker"

func sampleRecord(id string, started time.Time) Record {
	return Record{
		ID:        id,
		Decklists: [2]string{testDeck, "20 Mountain"},
		Players:   [2]PlayerKind{PlayerRandom, PlayerMCTS},
		Seed:      1<<63 + 5,
		Winner:    1,
		Turns:     12,
		Actions:   240,
		Duration:  1500 * time.Millisecond,
		StartedAt: started.UTC().Truncate(time.Microsecond),
	}
}

func TestParsePlayerKind(t *testing.T) {
	for in, want := range map[string]PlayerKind{"": PlayerRandom, "random": PlayerRandom, "mcts": PlayerMCTS} {
		got, err := ParsePlayerKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePlayerKind("human")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestRecordStruct(t *testing.T) {
	rec := sampleRecord("m-1", time.Now())
	rec.Error = "boom"

	s, err := rec.Struct()
	require.NoError(t, err)
	assert.Equal(t, "m-1", s.Fields["match_id"].GetStringValue())
	assert.Equal(t, float64(1500), s.Fields["duration_ms"].GetNumberValue())

	back, err := RecordFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, rec.Seed, back.Seed, "seed survives beyond float64 precision")
	assert.True(t, rec.StartedAt.Equal(back.StartedAt))
	back.StartedAt = rec.StartedAt
	assert.Equal(t, rec, back)
	assert.False(t, back.Finished())

	s.Fields["match_id"] = nil
	_, err = RecordFromStruct(s)
	assert.Error(t, err)
}

// storeContract runs the behavior every Store implementation shares.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Turns)
	assert.Equal(t, PlayerMCTS, got.Players[1])
	assert.Equal(t, uint64(1<<63+5), got.Seed)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")
	assert.Equal(t, "a", all[2].ID)

	two, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	updated := sampleRecord("b", base.Add(time.Minute))
	updated.Winner = core.NoSeat
	require.NoError(t, store.Save(ctx, updated))
	got, err = store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, core.NoSeat, got.Winner)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	storeContract(t, store)
	assert.NoError(t, store.Close())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testutil.NopLogger())
	require.NoError(t, err)
	storeContract(t, store)
	assert.Positive(t, store.BytesWritten())
	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Save(context.Background(), sampleRecord("late", time.Now())), ErrStoreClosed)

	reopened, err := NewFileStore(dir, testutil.NopLogger())
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "replayed records are deduplicated by id")
	got, err := reopened.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, core.NoSeat, got.Winner, "the last line for an id wins")
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json\n"), 0o644))

	_, err := NewFileStore(dir, testutil.NopLogger())
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("MANA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MANA_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := NewPostgresStore(ctx, dsn, testutil.NopLogger())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Truncate(ctx))
	storeContract(t, store)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewStore(ctx, StoreConfig{}, testutil.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(ctx, StoreConfig{Driver: StoreFile, Dir: t.TempDir()}, testutil.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
	require.NoError(t, store.Close())

	_, err = NewStore(ctx, StoreConfig{Driver: StorePostgres}, testutil.NopLogger())
	assert.Error(t, err, "postgres needs a DSN")

	_, err = NewStore(ctx, StoreConfig{Driver: "s3"}, testutil.NopLogger())
	assert.ErrorIs(t, err, ErrInvalidStoreDriver)
}

func TestRunnerPlay(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	runner := NewRunner(RunnerConfig{
		Observe: func(id string, bus *events.EventBus) {
			bus.SubscribeFunc(events.AllEvents, func(events.Event) {
				mu.Lock()
				seen[id]++
				mu.Unlock()
			})
		},
	}, testutil.NopLogger())

	rec, err := runner.Play(context.Background(), Spec{
		ID:        "match-1",
		Decklists: [2]string{testDeck, testDeck},
		Seed:      42,
	})
	require.NoError(t, err)

	assert.Equal(t, "match-1", rec.ID)
	assert.True(t, rec.Finished())
	assert.Equal(t, [2]PlayerKind{PlayerRandom, PlayerRandom}, rec.Players)
	assert.Contains(t, []int{0, 1, core.NoSeat}, rec.Winner)
	assert.Positive(t, rec.Actions)

	stored, err := runner.Store().Get(context.Background(), "match-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Turns, stored.Turns)
	assert.Positive(t, seen["match-1"])
	assert.Equal(t, int64(1), runner.Played())
}

func TestRunnerReplaysFromSeed(t *testing.T) {
	runner := NewRunner(RunnerConfig{}, testutil.NopLogger())
	spec := Spec{Decklists: [2]string{testDeck, testDeck}, Seed: 77}

	first, err := runner.Play(context.Background(), spec)
	require.NoError(t, err)
	second, err := runner.Play(context.Background(), spec)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Winner, second.Winner)
	assert.Equal(t, first.Turns, second.Turns)
	assert.Equal(t, first.Actions, second.Actions)
}

func TestRunnerRejectsUnknownPlayer(t *testing.T) {
	runner := NewRunner(RunnerConfig{}, testutil.NopLogger())
	_, err := runner.Play(context.Background(), Spec{
		Decklists: [2]string{testDeck, testDeck},
		Players:   [2]PlayerKind{PlayerRandom, "human"},
	})
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestRunnerBadDecklist(t *testing.T) {
	runner := NewRunner(RunnerConfig{}, testutil.NopLogger())
	_, err := runner.Play(context.Background(), Spec{Decklists: [2]string{testDeck, "4 Nonexistent Card"}})
	assert.ErrorIs(t, err, core.ErrUnknownCard)
	assert.Equal(t, int64(1), runner.Failed())
}

func TestRunMatches(t *testing.T) {
	store := NewMemoryStore()
	runner := NewRunner(RunnerConfig{Concurrency: 2, Store: store}, testutil.NopLogger())

	specs := make([]Spec, 6)
	for i := range specs {
		specs[i] = Spec{Decklists: [2]string{testDeck, testDeck}, Seed: uint64(i + 1)}
	}
	specs[5].Players = [2]PlayerKind{PlayerMCTS, PlayerRandom}
	specs[5].Budget = 2 * time.Millisecond

	records, err := runner.RunMatches(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, records, 6)
	for i, rec := range records {
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, uint64(i+1), rec.Seed, "records keep spec order")
		assert.True(t, rec.Finished())
	}

	all, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, int64(6), runner.Played())
}

func TestRunMatchesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(RunnerConfig{Concurrency: 1}, testutil.NopLogger())
	_, err := runner.RunMatches(ctx, []Spec{{Decklists: [2]string{testDeck, testDeck}, Seed: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlanOpening(t *testing.T) {
	runner := NewRunner(RunnerConfig{}, testutil.NopLogger())
	decks := [2]string{testDeck, testDeck}

	first, err := runner.PlanOpening(context.Background(), decks, 9, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1}, first.Seat)
	assert.NotEmpty(t, first.Action.Key)
	assert.Equal(t, first.Seat, first.Action.Seat)
	assert.Positive(t, first.Stats.RootChildren)

	_, err = runner.PlanOpening(context.Background(), [2]string{testDeck, "bogus line"}, 9, 0)
	assert.Error(t, err)
}
