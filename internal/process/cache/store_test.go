package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCompute = errors.New("compute failed")

func TestResolveComputesOnce(t *testing.T) {
	s := New("test")
	calls := 0

	compute := func(_ context.Context) (string, error) {
		calls++

		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := Resolve(context.Background(), s, "vid1", StageRaw, compute)
		require.NoError(t, err)
		assert.Equal(t, "value", got)
	}

	assert.Equal(t, 1, calls)
}

func TestResolveDoesNotCacheErrors(t *testing.T) {
	s := New("test")
	calls := 0

	failing := func(_ context.Context) (string, error) {
		calls++

		return "", errCompute
	}

	_, err := Resolve(context.Background(), s, "vid1", StageRaw, failing)
	require.ErrorIs(t, err, errCompute)

	_, err = Resolve(context.Background(), s, "vid1", StageRaw, failing)
	require.ErrorIs(t, err, errCompute)

	assert.Equal(t, 2, calls, "failed computations must be retried, not cached")
	assert.Equal(t, 0, s.Len())

	got, err := Resolve(context.Background(), s, "vid1", StageRaw, func(_ context.Context) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
}

func TestStagesAreIndependent(t *testing.T) {
	s := New("test")

	_, err := Resolve(context.Background(), s, "vid1", StageRaw, func(_ context.Context) (string, error) {
		return "raw", nil
	})
	require.NoError(t, err)

	summary, err := Resolve(context.Background(), s, "vid1", StageSummary, func(_ context.Context) (string, error) {
		return "summary", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "summary", summary)

	assert.Equal(t, []string{"raw", "summary"}, s.Stages("vid1"))
}

func TestPurgeForcesRecompute(t *testing.T) {
	s := New("test")
	calls := 0

	compute := func(_ context.Context) (int, error) {
		calls++

		return calls, nil
	}

	got, err := Resolve(context.Background(), s, "vid1", StageRaw, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	assert.True(t, s.Purge("vid1"))
	assert.False(t, s.Purge("vid1"), "second purge finds nothing")

	got, err = Resolve(context.Background(), s, "vid1", StageRaw, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestPurgeAll(t *testing.T) {
	s := New("test")

	for _, id := range []string{"vid1", "vid2", "vid3"} {
		_, err := Resolve(context.Background(), s, id, StageRaw, func(_ context.Context) (string, error) {
			return "x", nil
		})
		require.NoError(t, err)
	}

	require.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.PurgeAll())
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Stages("vid1"))
}

func TestResolveSingleFlight(t *testing.T) {
	s := New("test")

	var calls atomic.Int32

	release := make(chan struct{})
	entered := make(chan struct{})

	compute := func(_ context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}

		<-release

		return "shared", nil
	}

	const workers = 8

	var wg sync.WaitGroup

	results := make([]string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			got, err := Resolve(context.Background(), s, "vid1", StageIndex, compute)
			require.NoError(t, err)
			results[i] = got
		}(i)
	}

	<-entered
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent resolvers must share one computation")

	for _, got := range results {
		assert.Equal(t, "shared", got)
	}
}

func TestPurgeDuringComputeDiscardsResult(t *testing.T) {
	s := New("test")

	computing := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, err := Resolve(context.Background(), s, "vid1", StageSummary, func(_ context.Context) (string, error) {
			close(computing)
			<-release

			return "stale", nil
		})
		assert.NoError(t, err)
	}()

	<-computing
	s.Purge("vid1")
	close(release)
	<-done

	// The in-flight result must not have been stored after the purge.
	_, ok := Peek[string](s, "vid1", StageSummary)
	assert.False(t, ok, "result computed before purge must be discarded")
	assert.Equal(t, 0, s.Len())
}

func TestPurgeAllDuringComputeDiscardsResult(t *testing.T) {
	s := New("test")

	// Populate one stage first so the video was never individually purged
	// when the full purge lands.
	_, err := Resolve(context.Background(), s, "vid1", StageRaw, func(_ context.Context) (string, error) {
		return "raw", nil
	})
	require.NoError(t, err)

	computing := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, err := Resolve(context.Background(), s, "vid1", StageSummary, func(_ context.Context) (string, error) {
			close(computing)
			<-release

			return "stale", nil
		})
		assert.NoError(t, err)
	}()

	<-computing
	s.PurgeAll()
	close(release)
	<-done

	_, ok := Peek[string](s, "vid1", StageSummary)
	assert.False(t, ok, "result computed before the full purge must be discarded")
	assert.Equal(t, 0, s.Len())
}

func TestPurgeAllDiscardsFirstStageInFlight(t *testing.T) {
	s := New("test")

	computing := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})

	// The video has no record yet; its very first stage is still computing
	// when the full purge lands.
	go func() {
		defer close(done)

		_, err := Resolve(context.Background(), s, "vid1", StageRaw, func(_ context.Context) (string, error) {
			close(computing)
			<-release

			return "stale", nil
		})
		assert.NoError(t, err)
	}()

	<-computing
	s.PurgeAll()
	close(release)
	<-done

	_, ok := Peek[string](s, "vid1", StageRaw)
	assert.False(t, ok, "result computed before the full purge must be discarded")
	assert.Equal(t, 0, s.Len())
}

func TestResolveSurvivesCallerCancel(t *testing.T) {
	s := New("test")

	ctx, cancel := context.WithCancel(context.Background())

	computing := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})

	var computeErr error

	go func() {
		defer close(done)

		_, err := Resolve(ctx, s, "vid1", StageRaw, func(cctx context.Context) (string, error) {
			close(computing)
			<-release

			// The shared computation must outlive the caller that started it.
			computeErr = cctx.Err()

			return "value", nil
		})
		assert.NoError(t, err)
	}()

	<-computing
	cancel()
	close(release)
	<-done

	assert.NoError(t, computeErr, "compute context must not inherit the caller's cancellation")

	got, ok := Peek[string](s, "vid1", StageRaw)
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestPeek(t *testing.T) {
	s := New("test")

	_, ok := Peek[string](s, "vid1", StageRaw)
	assert.False(t, ok)

	_, err := Resolve(context.Background(), s, "vid1", StageRaw, func(_ context.Context) (string, error) {
		return "raw", nil
	})
	require.NoError(t, err)

	got, ok := Peek[string](s, "vid1", StageRaw)
	require.True(t, ok)
	assert.Equal(t, "raw", got)
}
