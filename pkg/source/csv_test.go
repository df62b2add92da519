package source

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLogs(t *testing.T) {
	input := `date,time,weight,body_fat,muscle,visceral_fat,sleep,notes
2025-01-01,07:30,92.4,,40.1,9,7.5,
2025-01-02,07:45:10,92.1,30.2,,,,"felt good, slept late"
`
	entries, err := ReadLogs(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, time.Date(2025, 1, 1, 7, 30, 0, 0, time.UTC), entries[0].Time)
	assert.Equal(t, core.Float(92.4), entries[0].Weight)
	assert.False(t, entries[0].BodyFat.Valid)
	assert.Equal(t, core.Float(9), entries[0].VisceralFat)

	assert.Equal(t, time.Date(2025, 1, 2, 7, 45, 10, 0, time.UTC), entries[1].Time)
	assert.False(t, entries[1].Sleep.Valid)
	assert.Equal(t, "felt good, slept late", entries[1].Notes)
}

func TestReadLogs_ColumnsByName(t *testing.T) {
	input := "Weight,Date\n90.5,2025-02-01\n"

	entries, err := ReadLogs(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.Float(90.5), entries[0].Weight)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), entries[0].Time)
}

func TestReadLogs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"missing date column", "time,weight\n07:00,90\n", `missing column "date"`},
		{"bad number", "date,weight\n2025-01-01,90\n2025-01-02,heavy\n", "line 3"},
		{"bad date", "date,weight\nyesterday,90\n", "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLogs(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrInvalidRecord)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestReadLogs_Empty(t *testing.T) {
	entries, err := ReadLogs(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadJabs(t *testing.T) {
	input := "date,time,dose,notes\n2025-01-06,20:00,2.5,\n2025-01-13,,5,stomach\n"

	jabs, err := ReadJabs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []core.Jab{
		{Time: time.Date(2025, 1, 6, 20, 0, 0, 0, time.UTC), Dose: 2.5},
		{Time: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), Dose: 5, Notes: "stomach"},
	}, jabs)
}

func TestReadJabs_MissingDose(t *testing.T) {
	_, err := ReadJabs(strings.NewReader("date,dose\n2025-01-06,\n"))
	require.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "missing dose")

	_, err = ReadJabs(strings.NewReader("date,time\n2025-01-06,20:00\n"))
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestWriteLogs_RoundTrip(t *testing.T) {
	entries := []core.LogEntry{
		{Time: time.Date(2025, 1, 1, 7, 30, 5, 0, time.UTC), Weight: core.Float(92.4), BodyFat: core.Null(), Muscle: core.Float(40.1), VisceralFat: core.Null(), Sleep: core.Float(7), Notes: "ok"},
	}

	var buffer bytes.Buffer
	require.NoError(t, WriteLogs(&buffer, entries))
	assert.True(t, strings.HasPrefix(buffer.String(), strings.Join(LogHeader, ",")+"\n"))

	read, err := ReadLogs(&buffer)
	require.NoError(t, err)
	assert.Equal(t, entries, read)
}
