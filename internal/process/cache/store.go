// Package cache implements the per-video derived-data cache shared by the
// comment and transcript pipelines. Each video ID maps to a record of
// independently resolved stage slots; computing a missing stage is
// single-flighted per (video, stage) so concurrent requests for the same
// derivation share one computation instead of racing.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tubelens/tubelens/internal/platform/observability"
)

// Stage names a derivation slot within a video's cache record.
type Stage string

const (
	StageRaw        Stage = "raw"
	StageNormalized Stage = "normalized"
	StageChunks     Stage = "chunks"
	StageIndex      Stage = "index"
	StageSummary    Stage = "summary"
)

// computeTimeout bounds a single-flighted stage computation after it has been
// detached from the first caller's context.
const computeTimeout = 2 * time.Minute

type record struct {
	fields map[Stage]any
}

// Store is a concurrency-safe cache of per-video stage results. Failed
// computations are never stored; only successful values are cached.
//
// Purging while a computation is in flight is safe: each video carries a
// generation counter that survives purges, the store carries one bumped by
// PurgeAll, and an in-flight computation only stores its result if both
// generations it started under are still current. Stale results are
// discarded, never written.
type Store struct {
	name string

	mu      sync.RWMutex
	records map[string]*record
	gens    map[string]uint64
	allGen  uint64
	flights map[string]int

	flight singleflight.Group
}

// generation is the purge state a computation starts under; a mismatch on
// either counter at store time means a purge happened in between.
type generation struct {
	video uint64
	store uint64
}

// New creates an empty store. The name labels cache metrics and identifies
// the pipeline in the admin stats payload.
func New(name string) *Store {
	return &Store{
		name:    name,
		records: make(map[string]*record),
		gens:    make(map[string]uint64),
		flights: make(map[string]int),
	}
}

func (s *Store) Name() string { return s.name }

// Resolve returns the cached value for (id, stage), computing and storing it
// on a miss. Concurrent resolvers of the same (id, stage) share a single
// compute call. Errors from compute are returned to every waiter and leave
// the slot empty.
func Resolve[T any](ctx context.Context, s *Store, id string, stage Stage, compute func(ctx context.Context) (T, error)) (T, error) {
	if val, ok := lookup[T](s, id, stage); ok {
		observability.CacheHits.WithLabelValues(s.name, string(stage)).Inc()

		return val, nil
	}

	observability.CacheMisses.WithLabelValues(s.name, string(stage)).Inc()

	s.trackFlight(id)
	defer s.untrackFlight(id)

	v, err, _ := s.flight.Do(flightKey(id, stage), func() (any, error) {
		// A concurrent resolver may have stored the value between our miss
		// and acquiring the flight slot.
		if val, ok := lookup[T](s, id, stage); ok {
			return val, nil
		}

		gen := s.currentGeneration(id)

		// The computation is shared by every concurrent waiter, so it must
		// not die with the first caller's request context. It gets its own
		// deadline instead.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()

		val, err := compute(cctx)
		if err != nil {
			var zero T

			return zero, err
		}

		s.storeIfCurrent(id, stage, gen, val)

		return val, nil
	})
	if err != nil {
		var zero T

		return zero, err
	}

	val, ok := v.(T)
	if !ok {
		// Should not happen: each (store, stage) pair resolves a single type.
		var zero T

		return zero, nil
	}

	return val, nil
}

// Peek returns the cached value for (id, stage) without computing anything.
func Peek[T any](s *Store, id string, stage Stage) (T, bool) {
	return lookup[T](s, id, stage)
}

// Purge removes the cached record for id and reports whether one existed.
// In-flight computations for the video are forgotten and their results
// discarded.
func (s *Store) Purge(id string) bool {
	s.mu.Lock()
	_, existed := s.records[id]
	delete(s.records, id)
	s.gens[id]++
	s.mu.Unlock()

	s.forgetFlights(id)
	observability.CachePurges.WithLabelValues(s.name, "video").Inc()
	s.publishSize()

	return existed
}

// PurgeAll removes every cached record and returns how many were dropped.
// The store-wide generation bump also invalidates computations in flight for
// videos that have no record yet.
func (s *Store) PurgeAll() int {
	s.mu.Lock()
	n := len(s.records)

	ids := make(map[string]struct{}, n+len(s.flights))
	for id := range s.records {
		ids[id] = struct{}{}
	}

	for id := range s.flights {
		ids[id] = struct{}{}
	}

	s.records = make(map[string]*record)
	s.allGen++
	s.mu.Unlock()

	for id := range ids {
		s.forgetFlights(id)
	}

	observability.CachePurges.WithLabelValues(s.name, "all").Inc()
	s.publishSize()

	return n
}

// Len returns the number of videos with at least one cached stage.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Stages returns the populated stage names for id, sorted for stable output.
func (s *Store) Stages(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil
	}

	stages := make([]string, 0, len(rec.fields))
	for stage := range rec.fields {
		stages = append(stages, string(stage))
	}

	sort.Strings(stages)

	return stages
}

// PublishMetrics updates the cached-videos gauge. Called periodically by the
// stats worker and after purges.
func (s *Store) PublishMetrics() {
	s.publishSize()
}

func (s *Store) publishSize() {
	observability.CachedVideos.WithLabelValues(s.name).Set(float64(s.Len()))
}

func (s *Store) currentGeneration(id string) generation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return generation{video: s.gens[id], store: s.allGen}
}

// storeIfCurrent writes val into (id, stage) unless the video, or the whole
// store, was purged after the computation started.
func (s *Store) storeIfCurrent(id string, stage Stage, gen generation, val any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[id] != gen.video || s.allGen != gen.store {
		return
	}

	rec, ok := s.records[id]
	if !ok {
		rec = &record{fields: make(map[Stage]any)}
		s.records[id] = rec
	}

	rec.fields[stage] = val
}

// trackFlight and untrackFlight bracket each resolver around the flight so
// PurgeAll can forget flights for videos that have no record yet.
func (s *Store) trackFlight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flights[id]++
}

func (s *Store) untrackFlight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flights[id]--
	if s.flights[id] <= 0 {
		delete(s.flights, id)
	}
}

func (s *Store) forgetFlights(id string) {
	for _, stage := range []Stage{StageRaw, StageNormalized, StageChunks, StageIndex, StageSummary} {
		s.flight.Forget(flightKey(id, stage))
	}
}

func lookup[T any](s *Store, id string, stage Stage) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T

	rec, ok := s.records[id]
	if !ok {
		return zero, false
	}

	v, ok := rec.fields[stage]
	if !ok {
		return zero, false
	}

	val, ok := v.(T)
	if !ok {
		return zero, false
	}

	return val, true
}

func flightKey(id string, stage Stage) string {
	return id + "/" + string(stage)
}
