package billing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    Month
		wantErr bool
	}{
		{"2026-01", Month{2026, time.January}, false},
		{"2026-12", Month{2026, time.December}, false},
		{"2026-13", Month{}, true},
		{"2026-00", Month{}, true},
		{"202601", Month{}, true},
		{"2026-1", Month{}, true},
		{"", Month{}, true},
		{"january", Month{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonth_Formats(t *testing.T) {
	m := Month{2026, time.March}
	assert.Equal(t, "2026-03", m.String())
	assert.Equal(t, "202603", m.Key())
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), m.Start())
}

func TestMonth_Next(t *testing.T) {
	assert.Equal(t, Month{2026, time.February}, Month{2026, time.January}.Next())
	assert.Equal(t, Month{2027, time.January}, Month{2026, time.December}.Next())
}

func TestMonth_JSON(t *testing.T) {
	m := Month{2026, time.September}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"2026-09"`, string(data))

	var back Month
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)

	var bad Month
	assert.Error(t, json.Unmarshal([]byte(`"2026/09"`), &bad))
}

func TestMonth_SQL(t *testing.T) {
	m := Month{2026, time.July}
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-07", v)

	var back Month
	require.NoError(t, back.Scan("2026-07"))
	assert.Equal(t, m, back)

	require.NoError(t, back.Scan([]byte("2026-08")))
	assert.Equal(t, Month{2026, time.August}, back)

	var zero Month
	require.NoError(t, zero.Scan(nil))
	assert.True(t, zero.IsZero())
}
