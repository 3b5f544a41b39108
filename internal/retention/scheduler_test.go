package retention

import (
	"context"
	"testing"
	"time"

	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{name: "hourly", schedule: "0 * * * *", wantRunning: true},
		{name: "daily at 3", schedule: "0 3 * * *", wantRunning: true},
		{name: "empty schedule - no error, not running", schedule: ""},
		{name: "invalid schedule", schedule: "invalid cron", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.schedule, func(context.Context) {}, logging.Discard())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if tt.wantError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantRunning, s.IsRunning())

			if tt.wantRunning {
				require.NotNil(t, s.NextRun())
			} else {
				assert.Nil(t, s.NextRun())
			}

			s.Stop()
			assert.False(t, s.IsRunning())
		})
	}
}

func TestScheduler_StopsWithContext(t *testing.T) {
	s := NewScheduler("*/5 * * * *", func(context.Context) {}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.True(t, s.IsRunning())

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
