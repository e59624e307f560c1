package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	require.NoError(t, s.Add("cleanup", "@every 1h", cron.FuncJob(func() {})))
	require.NoError(t, s.Add("disabled", "", cron.FuncJob(func() {})))
	assert.Error(t, s.Add("broken", "every tuesday", cron.FuncJob(func() {})))

	assert.Equal(t, 1, s.Len())
}

func TestScheduler_RunsAndRecovers(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	var runs int32
	require.NoError(t, s.Add("counter", "@every 1s", cron.FuncJob(func() {
		atomic.AddInt32(&runs, 1)
	})))
	require.NoError(t, s.Add("panicky", "@every 1s", cron.FuncJob(func() {
		panic("boom")
	})))

	s.Start()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
