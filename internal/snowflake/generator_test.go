package snowflake_test

import (
	"sync"
	"testing"
	"time"

	"github.com/serroba/snowlink/internal/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClock returns readings[i] on the i-th call and repeats the last
// reading once the script runs out.
type scriptedClock struct {
	mu       sync.Mutex
	readings []time.Time
	calls    int
}

func (c *scriptedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.calls
	if i >= len(c.readings) {
		i = len(c.readings) - 1
	}

	c.calls++

	return c.readings[i]
}

func epochPlus(ms int64) time.Time {
	return time.UnixMilli(snowflake.Epoch + ms)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		datacenterID int64
		machineID    int64
		wantErr      bool
	}{
		{"defaults", 1, 1, false},
		{"lower bound", 0, 0, false},
		{"upper bound", 31, 31, false},
		{"datacenter id 32", 32, 1, true},
		{"machine id 32", 1, 32, true},
		{"negative datacenter id", -1, 1, true},
		{"negative machine id", 1, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := snowflake.New(tt.datacenterID, tt.machineID)

			if tt.wantErr {
				require.ErrorIs(t, err, snowflake.ErrInvalidConfig)
				assert.Nil(t, gen)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.datacenterID, gen.DatacenterID())
			assert.Equal(t, tt.machineID, gen.MachineID())
		})
	}
}

func TestGenerator_NextID(t *testing.T) {
	t.Run("packs fields in bit order", func(t *testing.T) {
		clock := &scriptedClock{readings: []time.Time{epochPlus(1000)}}
		gen, err := snowflake.New(3, 7, snowflake.WithClock(clock.Now))
		require.NoError(t, err)

		id, err := gen.NextID()

		require.NoError(t, err)
		assert.Equal(t, snowflake.ID(1000<<22|3<<17|7<<12), id)
		assert.Equal(t, epochPlus(1000).UTC(), id.Timestamp())
		assert.Equal(t, int64(3), id.DatacenterID())
		assert.Equal(t, int64(7), id.MachineID())
		assert.Equal(t, int64(0), id.Sequence())
	})

	t.Run("increments sequence within a millisecond", func(t *testing.T) {
		clock := &scriptedClock{readings: []time.Time{epochPlus(5)}}
		gen, err := snowflake.New(1, 1, snowflake.WithClock(clock.Now))
		require.NoError(t, err)

		first, err := gen.NextID()
		require.NoError(t, err)
		second, err := gen.NextID()
		require.NoError(t, err)

		assert.Equal(t, int64(0), first.Sequence())
		assert.Equal(t, int64(1), second.Sequence())
		assert.Equal(t, first+1, second)
	})

	t.Run("resets sequence when the millisecond advances", func(t *testing.T) {
		clock := &scriptedClock{readings: []time.Time{epochPlus(5), epochPlus(5), epochPlus(6)}}
		gen, err := snowflake.New(1, 1, snowflake.WithClock(clock.Now))
		require.NoError(t, err)

		_, _ = gen.NextID()
		_, _ = gen.NextID()
		id, err := gen.NextID()

		require.NoError(t, err)
		assert.Equal(t, int64(0), id.Sequence())
		assert.Equal(t, epochPlus(6).UTC(), id.Timestamp())
	})

	t.Run("rolls into the next millisecond after 4096 ids", func(t *testing.T) {
		readings := make([]time.Time, 0, 4098)
		for n := 0; n < 4097; n++ {
			readings = append(readings, epochPlus(42))
		}

		readings = append(readings, epochPlus(43))

		clock := &scriptedClock{readings: readings}
		gen, err := snowflake.New(1, 1, snowflake.WithClock(clock.Now))
		require.NoError(t, err)

		var last snowflake.ID

		for i := 0; i < 4096; i++ {
			id, err := gen.NextID()
			require.NoError(t, err)
			require.Equal(t, int64(i), id.Sequence())
			require.Equal(t, epochPlus(42).UTC(), id.Timestamp())

			last = id
		}

		id, err := gen.NextID()

		require.NoError(t, err)
		assert.Greater(t, id, last)
		assert.Equal(t, int64(0), id.Sequence())
		assert.Equal(t, epochPlus(43).UTC(), id.Timestamp())
	})

	t.Run("refuses to issue when the clock moves backwards", func(t *testing.T) {
		clock := &scriptedClock{readings: []time.Time{epochPlus(100), epochPlus(99)}}
		gen, err := snowflake.New(1, 1, snowflake.WithClock(clock.Now))
		require.NoError(t, err)

		_, err = gen.NextID()
		require.NoError(t, err)

		id, err := gen.NextID()

		require.ErrorIs(t, err, snowflake.ErrClockRegression)
		assert.Zero(t, id)
	})

	t.Run("sequential ids are strictly increasing", func(t *testing.T) {
		gen, err := snowflake.New(1, 1)
		require.NoError(t, err)

		prev, err := gen.NextID()
		require.NoError(t, err)

		for n := 0; n < 20000; n++ {
			id, err := gen.NextID()
			require.NoError(t, err)
			require.Greater(t, id, prev)

			prev = id
		}
	})
}

func TestGenerator_NextIDConcurrent(t *testing.T) {
	const (
		workers   = 8
		perWorker = 2000
	)

	gen, err := snowflake.New(2, 9)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = make(map[snowflake.ID]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			var prev snowflake.ID

			for n := 0; n < perWorker; n++ {
				id, err := gen.NextID()
				if err != nil {
					errs <- err

					return
				}

				// each caller observes its own ids in increasing order
				if id <= prev {
					errs <- assert.AnError

					return
				}

				prev = id

				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, seen, workers*perWorker)
}
