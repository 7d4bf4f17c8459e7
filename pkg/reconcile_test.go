package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wall(hour, min, sec int) time.Time {
	return time.Date(2021, 6, 1, hour, min, sec, 0, time.UTC)
}

func datePtr(t *testing.T, s string) *DateValue {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestTryOffset(t *testing.T) {
	// Eight hours with 30s of clock drift is within the residual tolerance.
	off, ok := tryOffset(wall(14, 2, 10), wall(6, 1, 40))
	require.True(t, ok)
	assert.Equal(t, 480, off)

	// Half-hour timezones match too.
	off, ok = tryOffset(wall(17, 30, 0), wall(12, 0, 0))
	require.True(t, ok)
	assert.Equal(t, 330, off)

	// Negative offsets.
	off, ok = tryOffset(wall(1, 0, 5), wall(9, 0, 0))
	require.True(t, ok)
	assert.Equal(t, -480, off)

	// Exactly zero.
	off, ok = tryOffset(wall(6, 0, 30), wall(6, 0, 0))
	require.True(t, ok)
	assert.Equal(t, 0, off)

	// A five-minute difference is not a half-hour timezone.
	_, ok = tryOffset(wall(14, 5, 0), wall(14, 0, 0))
	assert.False(t, ok)

	// Beyond the 24h absolute tolerance.
	_, ok = tryOffset(wall(6, 0, 0).AddDate(0, 0, 2), wall(6, 0, 0))
	assert.False(t, ok)

	// Residual just above the 60s tolerance.
	_, ok = tryOffset(wall(14, 1, 1), wall(6, 0, 0))
	assert.False(t, ok)
}

func TestTryOffsetWithDuration(t *testing.T) {
	// One source stamps the start, the other the end of a 90s recording.
	local := wall(14, 0, 0)
	utc := wall(5, 58, 30)
	_, ok := tryOffset(local, utc)
	require.False(t, ok)

	off, ok := tryOffsetWithDuration(local, utc, 90*time.Second)
	require.True(t, ok)
	assert.Equal(t, 480, off)

	// Symmetric retry against utc minus duration.
	off, ok = tryOffsetWithDuration(wall(13, 58, 30), wall(6, 0, 0), 90*time.Second)
	require.True(t, ok)
	assert.Equal(t, 480, off)

	// No duration, no retry.
	_, ok = tryOffsetWithDuration(local, utc, 0)
	assert.False(t, ok)
}

func TestResolveDateCascadeOrdering(t *testing.T) {
	taken := datePtr(t, "2021-06-01T14:00:00")
	encoded := datePtr(t, "2021-06-01T15:00:00")
	container := datePtr(t, "2021-06-01T06:00:00Z")
	tool := datePtr(t, "2021-06-01T14:00:05")

	res, ok := ResolveDate(Candidates{DateTaken: taken, DateEncoded: encoded, ContainerCreated: container, ToolDateTime: tool})
	require.True(t, ok)
	assert.Equal(t, SourceDateTaken, res.Source)
	assert.True(t, res.Date.Equal(*taken))
	// Canonical property-store sources never force a store.
	assert.False(t, res.AlwaysStore)

	res, ok = ResolveDate(Candidates{DateEncoded: encoded, ContainerCreated: container})
	require.True(t, ok)
	assert.Equal(t, SourceDateEncoded, res.Source)

	res, ok = ResolveDate(Candidates{ContainerCreated: container, ToolDateTime: tool})
	require.True(t, ok)
	assert.Equal(t, SourceExternalTool, res.Source)
	assert.True(t, res.AlwaysStore)

	// The container's UTC wall clock is the last resort.
	res, ok = ResolveDate(Candidates{ContainerCreated: container})
	require.True(t, ok)
	assert.Equal(t, SourceContainer, res.Source)
	assert.True(t, res.AlwaysStore)

	_, ok = ResolveDate(Candidates{})
	assert.False(t, ok, "no candidates means undetermined, not an error")
}

func TestResolveDateFilenameMergesModTime(t *testing.T) {
	fnDate, ok := FilenameDate("2021-06-01.jpg")
	require.True(t, ok)
	require.Equal(t, PrecisionDay, fnDate.Precision())

	modified := time.Date(2021, 6, 1, 9, 41, 7, 0, time.Local)
	res, ok := ResolveDate(Candidates{FilenameDate: &fnDate, FSModified: modified})
	require.True(t, ok)
	assert.Equal(t, SourceFilename, res.Source)
	assert.True(t, res.AlwaysStore)
	assert.Equal(t, PrecisionSecond, res.Date.Precision())
	assert.Equal(t, "2021-06-01T09:41:07", res.Date.Format())

	// Different calendar date: no merge, day precision kept.
	modified = time.Date(2021, 6, 3, 9, 41, 7, 0, time.Local)
	res, ok = ResolveDate(Candidates{FilenameDate: &fnDate, FSModified: modified})
	require.True(t, ok)
	assert.Equal(t, PrecisionDay, res.Date.Precision())
	assert.Equal(t, "2021-06-01", res.Date.Format())
}

func TestResolveTimeZoneTagIsAuthoritative(t *testing.T) {
	container := datePtr(t, "2021-06-01T06:00:00Z")
	tool := datePtr(t, "2021-06-01T14:00:00")
	res, ok := ResolveTimeZone(Candidates{
		Tags:             map[string]string{TagTimeZone: "+05:30"},
		ToolTimeZone:     "+08:00",
		ContainerCreated: container,
		ToolDateTime:     tool,
	}, DateValue{}, false)
	require.True(t, ok)
	assert.Equal(t, ZoneSourceTag, res.Source)
	assert.Equal(t, TimeZoneValue{Kind: ZoneNormal, OffsetMinutes: 330}, res.Zone)
}

func TestResolveTimeZoneToolText(t *testing.T) {
	res, ok := ResolveTimeZone(Candidates{ToolTimeZone: "-07:00"}, DateValue{}, false)
	require.True(t, ok)
	assert.Equal(t, ZoneSourceExternalTool, res.Source)
	assert.Equal(t, TimeZoneValue{Kind: ZoneNormal, OffsetMinutes: -420}, res.Zone)

	// Unparsable maker-note text falls through to the next step.
	_, ok = ResolveTimeZone(Candidates{ToolTimeZone: "PDT"}, DateValue{}, false)
	assert.False(t, ok)
}

func TestResolveTimeZoneContainerVsTool(t *testing.T) {
	container := datePtr(t, "2021-06-01T06:01:40Z")
	tool := datePtr(t, "2021-06-01T14:02:10")
	res, ok := ResolveTimeZone(Candidates{ContainerCreated: container, ToolDateTime: tool}, *tool, true)
	require.True(t, ok)
	assert.Equal(t, ZoneSourceContainerVsTool, res.Source)
	assert.Equal(t, TimeZoneValue{Kind: ZoneNormal, OffsetMinutes: 480}, res.Zone)

	// A zero offset means a timezone-unaware camera, not genuine UTC.
	container = datePtr(t, "2021-06-01T06:00:00Z")
	tool = datePtr(t, "2021-06-01T06:00:20")
	res, ok = ResolveTimeZone(Candidates{ContainerCreated: container, ToolDateTime: tool}, *tool, true)
	require.True(t, ok)
	assert.Equal(t, ZoneForceLocal, res.Zone.Kind)
}

func TestResolveTimeZoneContainerVsFilesystem(t *testing.T) {
	container := datePtr(t, "2021-06-01T06:00:00Z")

	// Zero offset against the modification time is the one trusted signal.
	modified := time.Date(2021, 6, 1, 6, 0, 30, 0, time.Local)
	res, ok := ResolveTimeZone(Candidates{ContainerCreated: container, FSModified: modified}, DateValue{}, false)
	require.True(t, ok)
	assert.Equal(t, ZoneSourceContainerVsModified, res.Source)
	assert.Equal(t, ZoneForceLocal, res.Zone.Kind)

	// The creation time is checked before the modification time.
	created := time.Date(2021, 6, 1, 6, 0, 10, 0, time.Local)
	res, ok = ResolveTimeZone(Candidates{ContainerCreated: container, FSCreated: created, FSModified: modified}, DateValue{}, false)
	require.True(t, ok)
	assert.Equal(t, ZoneSourceContainerVsCreated, res.Source)

	// A nonzero file-system offset says nothing about the camera: rejected.
	modified = time.Date(2021, 6, 1, 14, 0, 0, 0, time.Local)
	_, ok = ResolveTimeZone(Candidates{ContainerCreated: container, FSModified: modified}, DateValue{}, false)
	assert.False(t, ok)
}

func TestResolveTimeZoneLocalDefault(t *testing.T) {
	date := *datePtr(t, "2021-06-01T14:00:00")
	res, ok := ResolveTimeZone(Candidates{}, date, true)
	require.True(t, ok)
	assert.Equal(t, ZoneSourceLocalDefault, res.Source)
	assert.Equal(t, ZoneForceLocal, res.Zone.Kind)

	// A UTC anchor that failed to match suppresses the default.
	container := datePtr(t, "2019-01-01T00:00:00Z")
	_, ok = ResolveTimeZone(Candidates{ContainerCreated: container}, date, true)
	assert.False(t, ok)

	// A UTC-tagged date gets no local default either.
	utcDate := *datePtr(t, "2021-06-01T14:00:00Z")
	_, ok = ResolveTimeZone(Candidates{}, utcDate, true)
	assert.False(t, ok)
}

func TestReconcileEndToEnd(t *testing.T) {
	// A video with only a container UTC time and a filename-embedded local
	// time: the filename wins the date cascade and the pair yields +08:00.
	container := datePtr(t, "2021-06-01T06:00:00Z")
	fnDate, ok := FilenameDate("20210601_140000.mp4")
	require.True(t, ok)

	c := Candidates{
		ContainerCreated: container,
		FilenameDate:     &fnDate,
		Duration:         30 * time.Second,
	}
	res, ok := ResolveDate(c)
	require.True(t, ok)
	assert.Equal(t, SourceFilename, res.Source)
	assert.Equal(t, "2021-06-01T14:00:00", res.Date.Format())

	zone, ok := ResolveTimeZone(c, res.Date, true)
	require.True(t, ok)
	assert.Equal(t, ZoneSourceContainerVsFilename, zone.Source)
	assert.Equal(t, TimeZoneValue{Kind: ZoneNormal, OffsetMinutes: 480}, zone.Zone)

	// The reconciled value formats as local time with the inferred offset.
	final := res.Date.WithZone(zone.Zone)
	assert.Equal(t, "2021-06-01T14:00:00+08:00", final.Format())
}
