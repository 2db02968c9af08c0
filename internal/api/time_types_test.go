package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTime_UnmarshalJSON_RFC3339(t *testing.T) {
	input := `"2024-01-15T10:30:00Z"`
	var ft FlexTime
	err := json.Unmarshal([]byte(input), &ft)
	require.NoError(t, err)

	expected := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, expected, ft.Time)
}

func TestFlexTime_UnmarshalJSON_RFC3339Nano(t *testing.T) {
	input := `"2024-01-15T10:30:00.123456789Z"`
	var ft FlexTime
	err := json.Unmarshal([]byte(input), &ft)
	require.NoError(t, err)

	expected := time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)
	assert.Equal(t, expected, ft.Time)
}

func TestFlexTime_UnmarshalJSON_EpochMs_Number(t *testing.T) {
	// 2024-01-15T10:30:00Z in epoch milliseconds
	input := `1705314600000`
	var ft FlexTime
	err := json.Unmarshal([]byte(input), &ft)
	require.NoError(t, err)

	expected := time.UnixMilli(1705314600000)
	assert.Equal(t, expected, ft.Time)
}

func TestFlexTime_UnmarshalJSON_EpochMs_String(t *testing.T) {
	// Same time as above, but as string
	input := `"1705314600000"`
	var ft FlexTime
	err := json.Unmarshal([]byte(input), &ft)
	require.NoError(t, err)

	expected := time.UnixMilli(1705314600000)
	assert.Equal(t, expected, ft.Time)
}

func TestFlexTime_MarshalJSON(t *testing.T) {
	ft := FlexTime{Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	data, err := json.Marshal(ft)
	require.NoError(t, err)

	assert.Equal(t, `"2024-01-15T10:30:00Z"`, string(data))
}

func TestFlexTime_InStruct(t *testing.T) {
	type TestStruct struct {
		StartedAt FlexTime `json:"started_at"`
		EndedAt   FlexTime `json:"ended_at"`
	}

	// Test with mixed formats
	input := `{"started_at":"2024-01-15T10:30:00Z","ended_at":1705314600000}`
	var ts TestStruct
	err := json.Unmarshal([]byte(input), &ts)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ts.StartedAt.Time)
	assert.Equal(t, time.UnixMilli(1705314600000), ts.EndedAt.Time)
}

func TestFlexTime_UnmarshalJSON_DateOnly(t *testing.T) {
	var ft FlexTime
	require.NoError(t, json.Unmarshal([]byte(`"2024-07-01"`), &ft))
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), ft.Time)
}

func TestFlexTime_InResolvesCalendarDates(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	var date FlexTime
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-01"`), &date))
	got := date.In(ny)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, ny), got)
	assert.Equal(t, 2024, got.In(ny).Year())

	var instant FlexTime
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-01T03:00:00Z"`), &instant))
	assert.Equal(t, time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC), instant.In(ny))
}

func TestFlexTime_UnmarshalJSON_Invalid(t *testing.T) {
	var ft FlexTime
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ft))
	assert.Error(t, json.Unmarshal([]byte(`true`), &ft))
}

func TestOmittableNullable(t *testing.T) {
	var body struct {
		Rating OmittableNullable[int]    `json:"rating,omitempty"`
		Review OmittableNullable[string] `json:"review,omitempty"`
		Status OmittableNullable[string] `json:"status,omitempty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"rating":4,"review":null}`), &body))

	rating := optional(body.Rating)
	assert.True(t, rating.HasValue())
	assert.Equal(t, 4, rating.Value)

	assert.True(t, optional(body.Review).IsNull())

	status := optional(body.Status)
	assert.False(t, status.Set)
}

func TestParseDateParam(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, err := parseDateParam("startDate", "2024-03-10", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, loc), *got)

	got, err = parseDateParam("startDate", "", loc)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDateParam("startDate", "03/10/2024", loc)
	require.Error(t, err)
}
