package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultOverdueSchedulerConfig(t *testing.T) {
	cfg := DefaultOverdueSchedulerConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Hour, cfg.ScanInterval)
	assert.Equal(t, 5*time.Minute, cfg.ScanTimeout)
}

func TestNewOverdueScheduler_NormalizesConfig(t *testing.T) {
	s := NewOverdueScheduler(nil, zap.NewNop(), OverdueSchedulerConfig{Enabled: true})

	assert.Equal(t, time.Hour, s.config.ScanInterval)
	assert.Equal(t, 5*time.Minute, s.config.ScanTimeout)
}

func TestOverdueScheduler_DisabledDoesNotRun(t *testing.T) {
	s := NewOverdueScheduler(nil, zap.NewNop(), OverdueSchedulerConfig{Enabled: false})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestOverdueScheduler_TriggerWhenStopped(t *testing.T) {
	s := NewOverdueScheduler(nil, zap.NewNop(), DefaultOverdueSchedulerConfig())

	err := s.TriggerImmediateScan(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestOverdueScheduler_StopWhenNotRunning(t *testing.T) {
	s := NewOverdueScheduler(nil, zap.NewNop(), DefaultOverdueSchedulerConfig())

	assert.NoError(t, s.Stop(context.Background()))
}
