package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "hours and minutes", input: "09:30", want: "09:30"},
		{name: "with seconds", input: "18:15:00", want: "18:15"},
		{name: "end of day", input: "24:00", want: "24:00"},
		{name: "garbage", input: "9h30", wantErr: ErrInvalidTimeString},
		{name: "out of range", input: "25:00", wantErr: ErrInvalidTimeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	start := MustTimeString("23:30")

	end, err := start.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, "24:00", end.String())

	_, err = start.AddMinutes(31)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)
}

func TestTimeString_Compare(t *testing.T) {
	a := NewTimeString(time.Date(2025, 3, 3, 10, 0, 59, 0, time.UTC))
	b := MustTimeString("10:01")

	assert.True(t, a.IsBefore(b))
	assert.True(t, b.IsAfter(a))
	assert.True(t, a.Equal(MustTimeString("10:00")))
}

func TestTimeString_JSON(t *testing.T) {
	var payload struct {
		Start TimeString `json:"start"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"start":"07:05"}`), &payload))
	assert.Equal(t, 7*60+5, payload.Start.Minutes())

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"07:05"}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"start":7}`), &payload))
}
