package timers_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	timers "github.com/jdziat/durable-timers"
)

func appendGarbage(t *testing.T, path, garbage string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(garbage)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestIntegration_RecoveryFidelity(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "t.log")

	engineA, err := timers.Open(logPath)
	require.NoError(t, err)

	now := timers.NowMillis()
	keptA, err := engineA.SetAt(now+60_000, "payload-a")
	require.NoError(t, err)
	removedID, err := engineA.SetAt(now+70_000, "payload-b")
	require.NoError(t, err)
	keptC, err := engineA.SetAt(now+80_000, "payload-c")
	require.NoError(t, err)

	_, ok, err := engineA.Remove(removedID)
	require.NoError(t, err)
	require.True(t, ok)

	wantState := map[uuid.UUID]string{}
	for _, info := range engineA.ListActive() {
		wantState[info.ID] = info.Payload
	}
	require.NoError(t, engineA.Close())

	engineB, err := timers.Open(logPath)
	require.NoError(t, err)
	defer engineB.Close()

	gotState := map[uuid.UUID]string{}
	for _, info := range engineB.ListActive() {
		gotState[info.ID] = info.Payload
	}

	assert.Equal(t, wantState, gotState)
	assert.Equal(t, "payload-a", gotState[keptA])
	assert.Equal(t, "payload-c", gotState[keptC])
	assert.NotContains(t, gotState, removedID)
}

func TestIntegration_RecoveredTimersStillFire(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "t.log")

	engineA, err := timers.Open(logPath)
	require.NoError(t, err)
	_, err = engineA.SetAfter("150ms", "survives restart")
	require.NoError(t, err)
	require.NoError(t, engineA.Close())

	var fired atomic.Int32
	var gotPayload atomic.Value
	engineB, err := timers.Open(logPath,
		timers.WithCallbackFunc(func(id uuid.UUID, payload string) {
			fired.Add(1)
			gotPayload.Store(payload)
		}),
	)
	require.NoError(t, err)
	defer engineB.Close()

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "survives restart", gotPayload.Load())
	assert.Equal(t, 0, engineB.Count())
}

func TestIntegration_ExpiredTimersNotRedelivered(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "t.log")

	var firstRun atomic.Int32
	engineA, err := timers.Open(logPath,
		timers.WithCallbackFunc(func(id uuid.UUID, payload string) {
			firstRun.Add(1)
		}),
	)
	require.NoError(t, err)

	_, err = engineA.SetAfter("30ms", "once only")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return firstRun.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, engineA.Close())

	var secondRun atomic.Int32
	engineB, err := timers.Open(logPath,
		timers.WithCallbackFunc(func(id uuid.UUID, payload string) {
			secondRun.Add(1)
		}),
	)
	require.NoError(t, err)
	defer engineB.Close()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), secondRun.Load(), "dispatched timer replayed as removed")
	assert.Equal(t, 0, engineB.Count())
}

func TestIntegration_ConcurrentSetters(t *testing.T) {
	engine, err := timers.Open(filepath.Join(t.TempDir(), "t.log"))
	require.NoError(t, err)
	defer engine.Close()

	const setters = 10
	const perSetter = 20

	var mu sync.Mutex
	all := make(map[uuid.UUID]bool)

	var wg sync.WaitGroup
	for g := 0; g < setters; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSetter; i++ {
				id, err := engine.SetAt(timers.NowMillis()+120_000, "concurrent")
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, all[id])
				all[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, all, setters*perSetter)
	assert.Equal(t, setters*perSetter, engine.Count())
}

func TestIntegration_HistoryArchivesOutcomes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	archive := timers.NewGormHistory(db)
	require.NoError(t, archive.Migrate(context.Background()))

	engine, err := timers.Open(filepath.Join(t.TempDir(), "t.log"),
		timers.WithHistory(archive),
	)
	require.NoError(t, err)
	defer engine.Close()

	_, err = engine.SetAfter("30ms", "will fire")
	require.NoError(t, err)

	cancelled, err := engine.SetAt(timers.NowMillis()+60_000, "will cancel")
	require.NoError(t, err)
	_, ok, err := engine.Remove(cancelled)
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		fired, err := archive.CountByOutcome(context.Background(), timers.OutcomeFired)
		return err == nil && fired == 1
	}, 2*time.Second, 25*time.Millisecond)

	cancelledCount, err := archive.CountByOutcome(context.Background(), timers.OutcomeCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cancelledCount)

	entries, err := archive.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestIntegration_CorruptLogLineDoesNotBlockRecovery(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "t.log")

	engineA, err := timers.Open(logPath)
	require.NoError(t, err)
	kept, err := engineA.SetAt(timers.NowMillis()+60_000, "good record")
	require.NoError(t, err)
	require.NoError(t, engineA.Close())

	// Simulate a crash mid-append: a trailing partial line.
	appendGarbage(t, logPath, "{\"timestamp\":99,\"op\":\"SetTimer\",\"timer_")

	engineB, err := timers.Open(logPath)
	require.NoError(t, err)
	defer engineB.Close()

	active := engineB.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, kept, active[0].ID)
	assert.Equal(t, "good record", active[0].Payload)
}

func TestIntegration_RecurringSurvivesAsOneShot(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "t.log")

	engineA, err := timers.Open(logPath)
	require.NoError(t, err)
	_, err = engineA.SetRecurring(timers.Every(400*time.Millisecond), "tick")
	require.NoError(t, err)
	require.NoError(t, engineA.Close())

	var fired atomic.Int32
	engineB, err := timers.Open(logPath,
		timers.WithCallbackFunc(func(id uuid.UUID, payload string) {
			fired.Add(1)
		}),
	)
	require.NoError(t, err)
	defer engineB.Close()

	// The recovered occurrence fires once; the recurrence rule itself is
	// in-memory and gone with the old engine.
	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 0, engineB.Count())
}
