package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePosition(t *testing.T) {
	cases := []struct {
		raw  string
		want []Position
	}{
		{"PG", []Position{PointGuard}},
		{"point guard", []Position{PointGuard}},
		{"Center", []Position{Center}},
		{"PG/SG", []Position{PointGuard, ShootingGuard}},
		{"G", []Position{Guard}},
	}
	for _, tc := range cases {
		got, err := NormalizePosition(tc.raw, "winner")
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestNormalizePositionUnknown(t *testing.T) {
	_, err := NormalizePosition("utility infielder", "winner")
	require.Error(t, err)
	assert.True(t, IsNormalization(err))
}

func TestNormalizeGameStatus(t *testing.T) {
	cases := map[string]GameStatus{
		"Scheduled": GameScheduled,
		"Final":     GameFinal,
		"F/OT":      GameFinal,
		"InProgress": GameLive,
		"Postponed": GamePostponed,
		"Canceled":  GameCancelled,
	}
	for raw, want := range cases {
		got, err := NormalizeGameStatus(raw, "nba")
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
}

func TestNormalizeEventType(t *testing.T) {
	got, err := NormalizeEventType("Jump Shot", "euroleague")
	require.NoError(t, err)
	assert.Equal(t, EventShot, got)

	got, err = NormalizeEventType("Sub In", "euroleague")
	require.NoError(t, err)
	assert.Equal(t, EventSubstitution, got)
}

func TestNormalizedNameHandlesBothFormats(t *testing.T) {
	a := NormalizedName("Scottie Wilbekin")
	b := NormalizedName("Wilbekin, Scottie")
	assert.Equal(t, a, b)
}

func TestNormalizedNameFoldsAccents(t *testing.T) {
	a := NormalizedName("Nikola Jokić")
	b := NormalizedName("nikola jokic")
	assert.Equal(t, a, b)
}

func TestParseMinutesSecondsAllowsOverflowMinutes(t *testing.T) {
	secs, err := ParseMinutesSeconds("65:30")
	require.NoError(t, err)
	assert.Equal(t, 65*60+30, secs)
}

func TestParseMinutesSecondsEmpty(t *testing.T) {
	secs, err := ParseMinutesSeconds("")
	require.NoError(t, err)
	assert.Equal(t, 0, secs)
}

func TestFormatMinutesSecondsRoundTrip(t *testing.T) {
	secs, err := ParseMinutesSeconds("12:07")
	require.NoError(t, err)
	assert.Equal(t, "12:07", FormatMinutesSeconds(secs))
}
