package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := "UPDATE goals SET title = ?, status = ? WHERE id = ? AND note <> '?'"

	assert.Equal(t, q, Rebind(DriverSQLite, q))
	assert.Equal(t,
		"UPDATE goals SET title = $1, status = $2 WHERE id = $3 AND note <> '?'",
		Rebind(DriverPostgres, q))
}

func TestTimeArg(t *testing.T) {
	at := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-02-01T10:30:00.000000000Z", TimeArg(DriverSQLite, at))
	assert.Equal(t, at, TimeArg(DriverPostgres, at))
	assert.Nil(t, NullTimeArg(DriverSQLite, nil))
}

func TestTimestamp_Scan(t *testing.T) {
	want := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{name: "time value", src: want},
		{name: "rfc3339 string", src: "2026-02-01T10:30:00Z"},
		{name: "sqlite default format", src: "2026-02-01 10:30:00"},
		{name: "bytes", src: []byte("2026-02-01T11:30:00+01:00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, ts.Scan(tt.src))
			assert.True(t, ts.Valid)
			assert.True(t, want.Equal(ts.Time))
		})
	}

	t.Run("null", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, ts.Scan(nil))
		assert.False(t, ts.Valid)
		assert.Nil(t, ts.Ptr())
	})

	t.Run("garbage", func(t *testing.T) {
		var ts Timestamp
		assert.Error(t, ts.Scan("yesterday"))
		assert.Error(t, ts.Scan(42))
	})
}
