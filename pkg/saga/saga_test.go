package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func recorder(log *[]string, name string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		*log = append(*log, name)
		return nil
	}
}

func TestSaga_Execute_Success(t *testing.T) {
	var log []string

	s := NewSaga(5 * time.Second)
	s.AddStep("reserve:1", recorder(&log, "reserve:1"), recorder(&log, "release:1"))
	s.AddStep("reserve:2", recorder(&log, "reserve:2"), recorder(&log, "release:2"))

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"reserve:1", "reserve:2"}, log)
	assert.Equal(t, 2, s.Executed())
}

func TestSaga_Execute_FailureCompensatesInReverse(t *testing.T) {
	var log []string
	boom := errors.New("库存不足")

	s := NewSaga(0)
	s.AddStep("reserve:1", recorder(&log, "reserve:1"), recorder(&log, "release:1"))
	s.AddStep("reserve:2", recorder(&log, "reserve:2"), recorder(&log, "release:2"))
	s.AddStep("reserve:3", func(ctx context.Context) error { return boom }, recorder(&log, "release:3"))

	err := s.Execute(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "reserve:3")
	assert.Equal(t, []string{"reserve:1", "reserve:2", "release:2", "release:1"}, log)
	assert.Equal(t, 0, s.Executed())
}

func TestSaga_CompensationFailureDoesNotStopOthers(t *testing.T) {
	var log []string

	s := NewSaga(0)
	s.AddStep("reserve:1", recorder(&log, "reserve:1"), recorder(&log, "release:1"))
	s.AddStep("reserve:2", recorder(&log, "reserve:2"), func(ctx context.Context) error {
		return errors.New("release failed")
	})
	s.AddStep("reserve:3", func(ctx context.Context) error { return errors.New("boom") }, nil)

	require.Error(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"reserve:1", "reserve:2", "release:1"}, log)
}

func TestSaga_NilActionAndCompensate(t *testing.T) {
	var log []string

	s := NewSaga(0)
	s.AddStep("noop", nil, nil)
	s.AddStep("fail", func(ctx context.Context) error { return errors.New("boom") }, nil)

	require.Error(t, s.Execute(context.Background()))
	assert.Empty(t, log)
}

func TestSaga_CancelledContext(t *testing.T) {
	var log []string
	ctx, cancel := context.WithCancel(context.Background())

	s := NewSaga(0)
	s.AddStep("reserve:1", func(ctx context.Context) error {
		log = append(log, "reserve:1")
		cancel()
		return nil
	}, recorder(&log, "release:1"))
	s.AddStep("reserve:2", recorder(&log, "reserve:2"), recorder(&log, "release:2"))

	err := s.Execute(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"reserve:1", "release:1"}, log)
}

func TestSaga_CompensateSeesContextValues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "tx"))

	var seen interface{}
	var seenErr error
	s := NewSaga(0)
	s.AddStep("reserve:1", func(ctx context.Context) error { return nil }, func(ctx context.Context) error {
		seen = ctx.Value(ctxKey{})
		seenErr = ctx.Err()
		return nil
	})
	s.AddStep("reserve:2", func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}, nil)

	require.Error(t, s.Execute(ctx))
	assert.Equal(t, "tx", seen)
	assert.NoError(t, seenErr, "补偿不受调用方取消影响")
}

func TestSaga_Timeout(t *testing.T) {
	s := NewSaga(20 * time.Millisecond)
	s.AddStep("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, nil)

	err := s.Execute(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
