package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/readupapp/readup-server/internal/errors"
	"github.com/readupapp/readup-server/internal/validation"
)

type sessionRequest struct {
	DurationSeconds int      `json:"durationSeconds" validate:"min=1"`
	ProgressPercent *float64 `json:"progressPercent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Status          string   `json:"status" validate:"omitempty,oneof=want reading finished dropped"`
	Review          string   `json:"review" validate:"max=10"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()

	progress := 42.5
	err := v.Validate(sessionRequest{DurationSeconds: 12, ProgressPercent: &progress, Status: "reading"})
	assert.NoError(t, err)
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       sessionRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "duration below minimum",
			req:       sessionRequest{DurationSeconds: 0},
			wantField: "durationSeconds",
			wantMsg:   "must be at least 1",
		},
		{
			name:      "progress above range",
			req:       sessionRequest{DurationSeconds: 1, ProgressPercent: floatPtr(101)},
			wantField: "progressPercent",
			wantMsg:   "must be less than or equal to 100",
		},
		{
			name:      "unknown status",
			req:       sessionRequest{DurationSeconds: 1, Status: "paused"},
			wantField: "status",
			wantMsg:   "must be one of: want reading finished dropped",
		},
		{
			name:      "review too long",
			req:       sessionRequest{DurationSeconds: 1, Review: "a very long review"},
			wantField: "review",
			wantMsg:   "must not exceed 10 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func floatPtr(f float64) *float64 { return &f }
