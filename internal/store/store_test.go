package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-screener/internal/profile"
	"github.com/spigell/cv-screener/internal/scoring"
	"github.com/spigell/cv-screener/internal/screening"
)

func testSession(top string) *screening.Session {
	minYears := 5
	return &screening.Session{
		Job: profile.JobRequirements{
			RequiredSkills:     []string{"docker", "python"},
			MustHaveSkills:     []string{"python"},
			MinExperienceYears: &minYears,
			Seniority:          profile.SeniorityUnspecified,
		},
		Results: []scoring.MatchResult{{
			CandidateName: top,
			SubScores:     map[scoring.Dimension]float64{scoring.DimensionSkills: 50},
			FinalScore:    65,
			Verdict:       scoring.VerdictModerate,
		}},
		Skipped:   []screening.SkippedCandidate{{Name: "broken", Order: 1, Reason: "corrupt document"}},
		Summary:   scoring.Summary{TotalCandidates: 1, AverageScore: 65, TopCandidate: top, TopScore: 65, CandidatesAbove50: 1},
		Backend:   "lexical",
		CreatedAt: time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	s := testSession("alice")
	id, err := m.Put(ctx, s)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryEvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)

	ids := make([]string, 0, 3)
	for _, name := range []string{"a", "b", "c"} {
		id, err := m.Put(ctx, testSession(name))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	assert.Equal(t, 2, m.Len())
	_, err := m.Get(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := m.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, "c", got.Summary.TopCandidate)
}

func TestMemoryRetriesTakenID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	seq := []string{"x", "x", "y"}
	m.newID = func() string {
		id := seq[0]
		seq = seq[1:]
		return id
	}

	first, err := m.Put(ctx, testSession("a"))
	require.NoError(t, err)
	second, err := m.Put(ctx, testSession("b"))
	require.NoError(t, err)

	assert.Equal(t, "x", first)
	assert.Equal(t, "y", second)
}

func TestMemoryConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Put(ctx, testSession(fmt.Sprint(i)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.Len())
}

func newTestRedis(t *testing.T, cfg RedisConfig) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, cfg), mr
}

func TestRedisPutGet(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t, RedisConfig{})

	s := testSession("alice")
	id, err := r.Put(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.True(t, mr.Exists(defaultPrefix+id))
	assert.Zero(t, mr.TTL(defaultPrefix+id))

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisTTL(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t, RedisConfig{Prefix: "test:", TTL: time.Hour})

	id, err := r.Put(ctx, testSession("alice"))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("test:"+id))

	mr.FastForward(2 * time.Hour)

	_, err = r.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t, RedisConfig{})
	require.NoError(t, mr.Set(defaultPrefix+"taken", "{}"))

	r.newID = func() string { return "taken" }
	_, err := r.Put(ctx, testSession("alice"))
	assert.Error(t, err)

	v, err := mr.Get(defaultPrefix + "taken")
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestRedisCorruptValue(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t, RedisConfig{})
	require.NoError(t, mr.Set(defaultPrefix+"bad", "not json"))

	_, err := r.Get(ctx, "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{})
	require.NoError(t, err)
	assert.Equal(t, KindMemory, s.Kind())

	mr := miniredis.RunT(t)
	s, err = New(ctx, Config{Kind: "Redis", Redis: RedisConfig{Address: mr.Addr()}})
	require.NoError(t, err)
	assert.Equal(t, KindRedis, s.Kind())
	require.NoError(t, s.(*Redis).Close())

	_, err = New(ctx, Config{Kind: "postgres"})
	assert.Error(t, err)
}
