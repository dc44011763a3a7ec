package failover

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestProducer(t *testing.T, counter *Counter, sink RecordSender, notifier SignalSender, opts ...ProducerOption) *Producer {
	t.Helper()

	opts = append([]ProducerOption{WithProducerLogger(newTestLogger(t))}, opts...)
	p, err := NewProducer(ProducerConfig{
		Interval: time.Second,
		Retry:    Backoff{Base: 100 * time.Millisecond, Max: 400 * time.Millisecond, Multiplier: 2},
	}, counter, sink, notifier, opts...)
	require.NoError(t, err)
	return p
}

func TestNewProducer_Validation(t *testing.T) {
	counter := NewCounter(0)
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	cfg := ProducerConfig{Interval: time.Second}

	_, err := NewProducer(cfg, nil, sink, notifier)
	require.ErrorIs(t, err, ErrCounterRequired)

	_, err = NewProducer(cfg, counter, nil, notifier)
	require.ErrorIs(t, err, ErrSinkRequired)

	_, err = NewProducer(cfg, counter, sink, nil)
	require.ErrorIs(t, err, ErrNotifierRequired)

	_, err = NewProducer(ProducerConfig{}, counter, sink, notifier)
	require.ErrorIs(t, err, ErrInvalidInterval)
}

func TestProducer_CountsIncreaseByOne(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		counter := NewCounter(0)
		sink := &fakeSink{}
		notifier := &fakeNotifier{}
		p := newTestProducer(t, counter, sink, notifier)

		done := make(chan error, 1)
		go func() { done <- p.Run(ctx, RoleMaster) }()

		// cycles at t=0,1,2,3
		time.Sleep(3500 * time.Millisecond)
		cancel()
		require.NoError(t, <-done)

		recs := sink.records()
		require.Len(t, recs, 4)
		for i, r := range recs {
			require.Equal(t, uint64(i), r.Count)
			require.Equal(t, DefaultAppID, r.AppID)
			require.Equal(t, RoleMaster, r.Role())
		}

		require.Equal(t, []Signal{
			Success(0), Success(1), Success(2), Success(3),
			Fail(4),
		}, notifier.sent())
		require.Equal(t, uint64(4), counter.Load())
	})
}

func TestProducer_ResumesFromSharedCounter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		counter := NewCounter(40)
		sink := &fakeSink{}
		p := newTestProducer(t, counter, sink, &fakeNotifier{})

		done := make(chan error, 1)
		go func() { done <- p.Run(ctx, RoleSlave) }()

		time.Sleep(1500 * time.Millisecond)
		cancel()
		require.NoError(t, <-done)

		recs := sink.records()
		require.Len(t, recs, 2)
		require.Equal(t, uint64(40), recs[0].Count)
		require.Equal(t, uint64(41), recs[1].Count)
		require.Equal(t, RoleSlave, recs[1].Role())
	})
}

func TestProducer_ResumeSeedsCounter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		// a later signal already moved the shared counter past the promotion point
		counter := NewCounter(40)
		sink := &fakeSink{}
		notifier := &fakeNotifier{}
		p := newTestProducer(t, counter, sink, notifier)

		done := make(chan error, 1)
		go func() { done <- p.Resume(ctx, RoleSlave, 7) }()

		time.Sleep(500 * time.Millisecond)
		cancel()
		require.NoError(t, <-done)

		recs := sink.records()
		require.Len(t, recs, 1)
		require.Equal(t, uint64(7), recs[0].Count)
		require.Equal(t, RoleSlave, recs[0].Role())
		require.Equal(t, []Signal{Success(7), Fail(8)}, notifier.sent())
	})
}

func TestProducer_RetriesUnreachableSink(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		counter := NewCounter(0)
		sink := &fakeSink{failFirst: 3}
		notifier := &fakeNotifier{}
		metrics := newCountingMetrics()
		p := newTestProducer(t, counter, sink, notifier, WithProducerMetrics(metrics))

		done := make(chan error, 1)
		go func() { done <- p.Run(ctx, RoleMaster) }()

		// retry delays are 100ms, then [100ms,200ms), then [100ms,400ms): the
		// record lands within 700ms and the next cycle starts no earlier than 1.3s
		time.Sleep(1250 * time.Millisecond)
		synctest.Wait()

		recs := sink.records()
		require.Len(t, recs, 1)
		require.Equal(t, uint64(0), recs[0].Count)
		require.Equal(t, []Signal{Success(0)}, notifier.sent())
		require.Equal(t, 3, metrics.retries)
		require.Equal(t, 1, metrics.sent)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestProducer_CancelDuringRetryReportsFail(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		counter := NewCounter(8)
		sink := &fakeSink{failAll: true}
		notifier := &fakeNotifier{}
		p := newTestProducer(t, counter, sink, notifier)

		done := make(chan error, 1)
		go func() { done <- p.Run(ctx, RoleMaster) }()

		time.Sleep(5 * time.Second)
		cancel()
		require.NoError(t, <-done)

		require.Empty(t, sink.records())
		require.Equal(t, []Signal{Fail(8)}, notifier.sent())
	})
}

func TestProducer_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	p := newTestProducer(t, NewCounter(3), sink, notifier)

	require.NoError(t, p.Run(ctx, RoleMaster))
	require.Empty(t, sink.records())
	require.Equal(t, []Signal{Fail(3)}, notifier.sent())
}
