package api

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readupapp/readup-server/internal/domain"
)

const dateLayout = time.DateOnly

// FlexTime is a time type that can unmarshal from either:
// - RFC3339 string: "2024-01-15T10:30:00Z"
// - calendar date: "2024-01-15" (midnight UTC until resolved with In)
// - Epoch milliseconds (number): 1705314600000
// - Epoch milliseconds (string): "1705314600000"
//
// It always marshals to RFC3339 format for consistency.
type FlexTime struct {
	time.Time

	// dateOnly marks a calendar date without a time of day.
	dateOnly bool
}

// UnmarshalJSON handles flexible time parsing from JSON.
func (ft *FlexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if t, err := time.Parse(dateLayout, s); err == nil {
			ft.Time, ft.dateOnly = t, true
			return nil
		}
		t, err := parseFlexibleTime(s, time.UTC)
		if err != nil {
			return err
		}
		ft.Time = t
		return nil
	}

	// Some JSON encoders emit large integers as floats.
	var ms float64
	if err := json.Unmarshal(data, &ms); err == nil {
		ft.Time = time.UnixMilli(int64(ms))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexTime", string(data))
}

// MarshalJSON outputs time in RFC3339 format.
func (ft FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Format(time.RFC3339))
}

// Schema documents FlexTime as a plain string so huma does not enforce date-time format.
// Epoch milliseconds are still accepted as a string.
func (FlexTime) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeString,
		Description: "RFC3339 timestamp or YYYY-MM-DD date",
	}
}

// ToTime returns the underlying time.Time value.
func (ft FlexTime) ToTime() time.Time {
	return ft.Time
}

// In resolves the value for a server in loc: a calendar date becomes midnight in
// loc, an instant is returned unchanged.
func (ft FlexTime) In(loc *time.Location) time.Time {
	if !ft.dateOnly {
		return ft.Time
	}
	y, m, d := ft.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// parseFlexibleTime parses RFC3339, a calendar date (midnight in loc) or epoch milliseconds.
func parseFlexibleTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time string: %s", s)
}

// OmittableNullable distinguishes an absent field from an explicit null in a
// request body.
type OmittableNullable[T any] struct {
	Sent  bool
	Null  bool
	Value T
}

// UnmarshalJSON records that the field was sent and whether it was null.
func (o *OmittableNullable[T]) UnmarshalJSON(b []byte) error {
	o.Sent = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Schema returns the inline schema of T marked nullable. The registry's copy is
// shared with non-nullable fields of T, so it is never mutated.
func (o OmittableNullable[T]) Schema(r huma.Registry) *huma.Schema {
	s := *r.Schema(reflect.TypeOf(o.Value), false, "")
	s.Nullable = true
	return &s
}

// optional converts to the domain's partial-update value.
func optional[T any](o OmittableNullable[T]) domain.Optional[T] {
	switch {
	case !o.Sent:
		return domain.Optional[T]{}
	case o.Null:
		return domain.Null[T]()
	default:
		return domain.Some(o.Value)
	}
}
