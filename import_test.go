package vitaltrend

import (
	"context"
	"testing"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport(t *testing.T) {
	store, err := storage.FromMemory()
	require.NoError(t, err)
	defer store.Close()

	records := Records{
		Logs: []core.LogEntry{
			{ID: 40, Time: day(1, 8), Weight: core.Float(92)},
			{Time: day(2, 8), Weight: core.Float(91.5)},
			{Time: day(2, 8), Weight: core.Float(91.4)},
		},
		Jabs:         []core.Jab{{Time: day(1, 20), Dose: 2.5}},
		Measurements: []core.BodyMeasurement{{Time: day(1, 9), Chest: core.Float(104)}},
	}
	require.Equal(t, 5, records.Len())

	var calls int
	result, err := Import(context.Background(), store, records, func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Logs: 2, Jabs: 1, Measurements: 1, Skipped: 1}, result)
	assert.Equal(t, 5, calls)

	logs, err := store.Logs()
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(1), logs[0].ID)
	assert.Equal(t, core.Float(91.5), logs[1].Weight)

	// a second import of the same batch stores nothing
	result, err = Import(context.Background(), store, records, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 5}, result)
}

func TestImport_CanceledContext(t *testing.T) {
	store, err := storage.FromMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Import(ctx, store, Records{Logs: []core.LogEntry{{Time: day(1, 8)}}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
