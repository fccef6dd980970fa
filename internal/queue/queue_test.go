package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/semsort/pkg/types"
)

type testPayload struct {
	Value string `json:"value"`
}

func fastConfig() Config {
	return Config{
		Workers:      2,
		MaxAttempts:  3,
		BaseDelay:    5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	}
}

func TestEnqueueAndProcess(t *testing.T) {
	q, err := New("embed", t.TempDir(), fastConfig())
	require.NoError(t, err)
	defer q.Shutdown()

	var handled atomic.Int32
	q.Start(context.Background(), func(_ context.Context, job *types.QueueJob) error {
		var p testPayload
		require.NoError(t, json.Unmarshal(job.Payload, &p))
		assert.Equal(t, "hello", p.Value)
		assert.Equal(t, "embed", job.Stage)
		handled.Add(1)
		return nil
	})

	id, err := q.Enqueue(testPayload{Value: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		return handled.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		s := q.Stats()
		return s.Size == 0 && s.Active == 0 && s.Processed == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRetryThenSucceed(t *testing.T) {
	q, err := New("embed", t.TempDir(), fastConfig())
	require.NoError(t, err)
	defer q.Shutdown()

	var calls atomic.Int32
	q.Start(context.Background(), func(_ context.Context, _ *types.QueueJob) error {
		if calls.Add(1) < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	_, err = q.Enqueue(testPayload{Value: "retry"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return q.Stats().Processed == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(3), calls.Load())
	assert.Zero(t, q.Stats().Failed)
}

func TestDeadLetterAfterExhaustion(t *testing.T) {
	q, err := New("embed", t.TempDir(), fastConfig())
	require.NoError(t, err)
	defer q.Shutdown()

	q.Start(context.Background(), func(_ context.Context, _ *types.QueueJob) error {
		return errors.New("always fails")
	})

	id, err := q.Enqueue(testPayload{Value: "doomed"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return q.Stats().Failed == 1
	}, 5*time.Second, 10*time.Millisecond)

	dead := q.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, id, dead[0].ID)
	assert.Equal(t, types.JobFailed, dead[0].Status)
	assert.Equal(t, 3, dead[0].Attempts)
	assert.Contains(t, dead[0].LastError, "always fails")
}

func TestPermanentErrorSkipsRetries(t *testing.T) {
	q, err := New("embed", t.TempDir(), fastConfig())
	require.NoError(t, err)
	defer q.Shutdown()

	var calls atomic.Int32
	q.Start(context.Background(), func(_ context.Context, _ *types.QueueJob) error {
		calls.Add(1)
		return Permanent(errors.New("bad payload"))
	})

	_, err = q.Enqueue(testPayload{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return q.Stats().Failed == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())
}

func TestValidationErrorIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(fmt.Errorf("%w: NaN at 3", types.ErrValidation)))
	assert.True(t, IsPermanent(Permanent(errors.New("x"))))
	assert.False(t, IsPermanent(errors.New("transient")))
	assert.False(t, IsPermanent(types.ErrBackend))
}

func TestFailureIsolation(t *testing.T) {
	q, err := New("embed", t.TempDir(), fastConfig())
	require.NoError(t, err)
	defer q.Shutdown()

	var succeeded atomic.Int32
	q.Start(context.Background(), func(_ context.Context, job *types.QueueJob) error {
		var p testPayload
		require.NoError(t, json.Unmarshal(job.Payload, &p))
		if p.Value == "poison" {
			return errors.New("poison job")
		}
		succeeded.Add(1)
		return nil
	})

	_, err = q.Enqueue(testPayload{Value: "poison"})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = q.Enqueue(testPayload{Value: "good"})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return succeeded.Load() == 5 && q.Stats().Failed == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	q, err := New("organize", dir, fastConfig())
	require.NoError(t, err)

	// Never started: jobs stay pending
	_, err = q.Enqueue(testPayload{Value: "one"})
	require.NoError(t, err)
	_, err = q.Enqueue(testPayload{Value: "two"})
	require.NoError(t, err)
	q.Shutdown()

	q2, err := New("organize", dir, fastConfig())
	require.NoError(t, err)
	defer q2.Shutdown()

	assert.Equal(t, 2, q2.Stats().Size)

	var handled atomic.Int32
	q2.Start(context.Background(), func(_ context.Context, _ *types.QueueJob) error {
		handled.Add(1)
		return nil
	})

	require.Eventually(t, func() bool {
		return handled.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDeadLetterPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	q, err := New("embed", dir, fastConfig())
	require.NoError(t, err)

	q.Start(context.Background(), func(_ context.Context, _ *types.QueueJob) error {
		return Permanent(errors.New("unrecoverable"))
	})

	_, err = q.Enqueue(testPayload{Value: "dead"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return q.Stats().Failed == 1
	}, 2*time.Second, 10*time.Millisecond)
	q.Shutdown()

	q2, err := New("embed", dir, fastConfig())
	require.NoError(t, err)
	defer q2.Shutdown()

	assert.Equal(t, 1, q2.Stats().Failed)
	dead := q2.DeadLetters()
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].LastError, "unrecoverable")
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q, err := New("embed", t.TempDir(), fastConfig())
	require.NoError(t, err)

	q.Shutdown()
	_, err = q.Enqueue(testPayload{})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestConcurrencyLimit(t *testing.T) {
	cfg := fastConfig()
	cfg.Workers = 2

	q, err := New("embed", t.TempDir(), cfg)
	require.NoError(t, err)
	defer q.Shutdown()

	var inFlight, peak atomic.Int32
	q.Start(context.Background(), func(_ context.Context, _ *types.QueueJob) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	for i := 0; i < 10; i++ {
		_, err := q.Enqueue(testPayload{Value: fmt.Sprintf("job-%d", i)})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return q.Stats().Processed == 10
	}, 5*time.Second, 10*time.Millisecond)

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestBackoffDelayBounds(t *testing.T) {
	cfg := fastConfig().withDefaults()

	assert.Zero(t, backoffDelay(cfg, 0))
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffDelay(cfg, attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		// MaxDelay plus 25% jitter headroom
		assert.LessOrEqual(t, d, cfg.MaxDelay+cfg.MaxDelay/4)
	}
}
