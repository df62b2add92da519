package palette

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertClose(t *testing.T, expected, actual RGB) {
	t.Helper()
	assert.InDelta(t, expected.R, actual.R, 1, "red of %s vs %s", expected, actual)
	assert.InDelta(t, expected.G, actual.G, 1, "green of %s vs %s", expected, actual)
	assert.InDelta(t, expected.B, actual.B, 1, "blue of %s vs %s", expected, actual)
}

func TestColorForDose_Reference(t *testing.T) {
	tests := []struct {
		dose     float64
		expected string
	}{
		{dose: 2.5, expected: "#D55A72"},
		{dose: 15, expected: "#5A75D6"},
	}

	for _, tt := range tests {
		expected, err := ParseHex(tt.expected)
		require.NoError(t, err)
		assertClose(t, expected, ColorForDose(tt.dose))
	}

	assert.Equal(t, "#d65a73", ColorForDose(2.5).Hex())
	assert.Equal(t, "#5a75d6", ColorForDose(15).Hex())
}

func TestColorForDose_Clamp(t *testing.T) {
	assert.Equal(t, ColorForDose(2.5), ColorForDose(0))
	assert.Equal(t, ColorForDose(2.5), ColorForDose(-10))
	assert.Equal(t, ColorForDose(2.5), ColorForDose(math.NaN()))
	assert.Equal(t, ColorForDose(15), ColorForDose(20))
	assert.Equal(t, ColorForDose(15), ColorForDose(math.Inf(1)))
}

func TestDoseScale_Hue(t *testing.T) {
	scale := DefaultDoseScale()
	assert.InDelta(t, 348, scale.Hue(2.5), 1e-9)
	assert.InDelta(t, 227, scale.Hue(15), 1e-9)

	// the arc crosses 0° on its way from red to blue
	mid := scale.Hue(8.75)
	assert.InDelta(t, math.Mod(348+239.0/2, 360), mid, 1e-9)

	previous := -1.0
	for dose := 2.5; dose <= 15; dose += 0.5 {
		hue := scale.Hue(dose)
		require.GreaterOrEqual(t, hue, 0.0)
		require.Less(t, hue, 360.0)

		unwrapped := hue
		if unwrapped < scale.HueStart {
			unwrapped += 360
		}
		assert.Greater(t, unwrapped, previous, "dose %v", dose)
		previous = unwrapped
	}
}

func TestDoseScale_ZeroWidth(t *testing.T) {
	scale := DefaultDoseScale()
	scale.MaxDose = scale.MinDose
	assert.Equal(t, scale.HueStart, scale.Hue(100))
}

func TestRGB_Text(t *testing.T) {
	assert.Equal(t, "#805ad5", Primary.Hex())
	assert.Equal(t, "rgba(128, 90, 213, 0.2)", Primary.Alpha(0.2))

	payload, err := json.Marshal(map[string]RGB{"color": Secondary})
	require.NoError(t, err)
	assert.JSONEq(t, `{"color": "#d55a72"}`, string(payload))

	var decoded map[string]RGB
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, Secondary, decoded["color"])

	_, err = ParseHex("purple")
	require.Error(t, err)
}

func TestSeries(t *testing.T) {
	assert.Equal(t, Primary, Series(0))
	assert.Equal(t, Quaternary, Series(3))
	assert.Equal(t, Primary, Series(4))
	assert.Equal(t, Secondary, Series(-1))
}
