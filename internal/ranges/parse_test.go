package ranges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestParse(t *testing.T) {
	testCases := []struct {
		name string
		text string
		ok   bool
		low  *float64
		high *float64
	}{
		{"upper bound", "< 15", true, nil, fptr(15)},
		{"upper bound inclusive-style", "<= 15", true, nil, fptr(15)},
		{"lower bound", "> 25", true, fptr(25), nil},
		{"en dash range", "15–25", true, fptr(15), fptr(25)},
		{"em dash range", "15—25", true, fptr(15), fptr(25)},
		{"plain range", "15-25", true, fptr(15), fptr(25)},
		{"trailing prose ignored", "> 25 or negative", true, fptr(25), nil},
		{"unit prose ignored", "< 3 days", true, nil, fptr(3)},
		{"pipe prose ignored", "> 6% | otherwise review", true, fptr(6), nil},
		{"currency billions", "> $10B", true, fptr(10e9), nil},
		{"currency millions upper", "< $250M", true, nil, fptr(250e6)},
		{"currency trillions", "> $1.2T", true, fptr(1.2e12), nil},
		{"currency range shares multiplier", "$2B to $10B", true, fptr(2e9), fptr(10e9)},
		{"percent stays in points", "< 3%", true, nil, fptr(3)},
		{"word range reversed", "-35 to -50", true, fptr(-50), fptr(-35)},
		{"negative range", "-15 - -8", true, fptr(-15), fptr(-8)},
		{"thousands separator", "> 1,500", true, fptr(1500), nil},
		{"qualitative expanding", "Expanding", false, nil, nil},
		{"qualitative in prose", "stable vs peers", false, nil, nil},
		{"qualitative contracting", "Contracting", false, nil, nil},
		{"empty", "", false, nil, nil},
		{"whitespace only", "   ", false, nil, nil},
		{"no number", "review manually", false, nil, nil},
		{"lone number", "$10B", false, nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, ok := Parse(tc.text)
			require.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			if tc.low == nil {
				assert.Nil(t, r.Low)
			} else {
				require.NotNil(t, r.Low)
				assert.InDelta(t, *tc.low, *r.Low, 1e-9)
			}
			if tc.high == nil {
				assert.Nil(t, r.High)
			} else {
				require.NotNil(t, r.High)
				assert.InDelta(t, *tc.high, *r.High, 1e-9)
			}
		})
	}
}

func TestParseComparatorWinsOverRange(t *testing.T) {
	// A comparator anywhere in the string takes precedence over a
	// number-number pattern later in the text.
	r, ok := Parse("< 15 (was 10-20 last year)")
	require.True(t, ok)
	assert.Nil(t, r.Low)
	require.NotNil(t, r.High)
	assert.Equal(t, 15.0, *r.High)
}

func TestParseIsPure(t *testing.T) {
	for _, text := range []string{"< 15", "15-25", "> $10B", "-35 to -50"} {
		first, okFirst := Parse(text)
		second, okSecond := Parse(text)
		require.Equal(t, okFirst, okSecond)
		assert.Equal(t, first.Low == nil, second.Low == nil)
		assert.Equal(t, first.High == nil, second.High == nil)
		if first.Low != nil {
			assert.Equal(t, *first.Low, *second.Low)
		}
		if first.High != nil {
			assert.Equal(t, *first.High, *second.High)
		}
	}
}

func TestRangeContains(t *testing.T) {
	open := Range{High: fptr(15)}
	assert.True(t, open.Contains(14.99))
	assert.False(t, open.Contains(15)) // open-ended bounds are strict

	floor := Range{Low: fptr(25)}
	assert.True(t, floor.Contains(25.01))
	assert.False(t, floor.Contains(25))

	closed := Range{Low: fptr(15), High: fptr(25)}
	assert.True(t, closed.Contains(15)) // closed ranges are inclusive
	assert.True(t, closed.Contains(25))
	assert.False(t, closed.Contains(25.01))

	assert.False(t, Range{}.Contains(0))
}

func TestEnvelope(t *testing.T) {
	low, high := Envelope("< 15", "15-25", "> 25")
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, 15.0, *low)
	assert.Equal(t, 25.0, *high)

	low, high = Envelope("> 40", "20-40", "< 20")
	assert.Equal(t, 20.0, *low)
	assert.Equal(t, 40.0, *high)

	low, high = Envelope("Expanding", "Stable", "Contracting")
	assert.Nil(t, low)
	assert.Nil(t, high)
}
