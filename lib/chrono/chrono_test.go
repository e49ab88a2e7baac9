package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseNaive(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	cases := []struct {
		value  string
		expect time.Time
		fails  bool
	}{
		{
			value:  "2024-03-01T23:59:00",
			expect: time.Date(2024, time.March, 1, 23, 59, 0, 0, loc),
		},
		{
			value:  "2024-03-01T23:59",
			expect: time.Date(2024, time.March, 1, 23, 59, 0, 0, loc),
		},
		{
			value:  "2024-03-01 23:59:00",
			expect: time.Date(2024, time.March, 1, 23, 59, 0, 0, loc),
		},
		{
			value:  "2024-03-01 23:59",
			expect: time.Date(2024, time.March, 1, 23, 59, 0, 0, loc),
		},
		{
			value: "March 1st, 2024",
			fails: true,
		},
		{
			value: "",
			fails: true,
		},
	}

	for _, test := range cases {
		parsed, err := ParseNaive(test.value, loc)
		if test.fails {
			require.Error(t, err, test.value)
			continue
		}
		require.NoError(t, err, test.value)
		require.True(t, parsed.Equal(test.expect), test.value)
	}
}

func TestShiftKeepsWallClock(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// no DST transition in the interval: EST throughout
	due := time.Date(2024, time.March, 1, 23, 59, 0, 0, loc)
	shifted := Shift(due, 2, 0)
	require.Equal(t, "2024-03-04T04:59:00Z", FormatWire(shifted))

	// crosses the 2024-03-10 spring-forward: the deadline stays at
	// 23:59 local, so the UTC instant moves from -0500 to -0400
	due = time.Date(2024, time.March, 9, 23, 59, 0, 0, loc)
	shifted = Shift(due, 2, 0)
	require.Equal(t, 23, shifted.Hour())
	require.Equal(t, "2024-03-12T03:59:00Z", FormatWire(shifted))
}

func TestShiftHours(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	due := time.Date(2024, time.March, 1, 23, 59, 0, 0, loc)
	shifted := Shift(due, 1, 12)
	require.Equal(t, "2024-03-03T16:59:00Z", FormatWire(shifted))
}

func TestFormatWireIsUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	require.Equal(
		t,
		"2024-08-16T06:59:00Z",
		FormatWire(time.Date(2024, time.August, 15, 23, 59, 0, 0, loc)),
	)
}
