package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRunner держит проход, пока тест не отпустит его через release
type blockingRunner struct {
	started chan int
	release chan passOutcome
}

type passOutcome struct {
	found int
	err   error
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan int, 4),
		release: make(chan passOutcome),
	}
}

func (r *blockingRunner) Run(ctx context.Context, target int, progress ProgressFunc) (int, error) {
	r.started <- target
	progress(1, 2, 3)

	select {
	case out := <-r.release:
		return out.found, out.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func waitStarted(t *testing.T, r *blockingRunner) int {
	t.Helper()
	select {
	case target := <-r.started:
		return target
	case <-time.After(2 * time.Second):
		t.Fatal("pass did not start")
		return 0
	}
}

// ===================== Start Tests =====================

func TestStart_Success(t *testing.T) {
	// Arrange
	runner := newBlockingRunner()
	status := NewStatusRegister()
	svc := NewScraperService(context.Background(), runner, status, 1000)

	// Act
	res, err := svc.Start(context.Background(), 0, false)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, StartStatusSuccess, res.Status)
	assert.Equal(t, 1000, res.Target)
	assert.True(t, res.State.Running)
	assert.NotEmpty(t, res.State.PassID)
	assert.Equal(t, 1000, waitStarted(t, runner))
	assert.True(t, svc.Running())

	runner.release <- passOutcome{found: 12}
	svc.Wait()

	st := svc.Status()
	assert.False(t, st.Running)
	assert.False(t, svc.Running())
	assert.Equal(t, 100, st.Progress)
	assert.Equal(t, 12, st.TotalFound)
	assert.Nil(t, st.LastError)
	require.NotNil(t, st.LastRun)
}

func TestStart_AlreadyRunning(t *testing.T) {
	// Arrange
	runner := newBlockingRunner()
	svc := NewScraperService(context.Background(), runner, NewStatusRegister(), 1000)

	_, err := svc.Start(context.Background(), 50, false)
	require.NoError(t, err)
	waitStarted(t, runner)

	// Act
	res, err := svc.Start(context.Background(), 50, false)

	// Assert
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.True(t, res.State.Running)

	runner.release <- passOutcome{}
	svc.Wait()
}

func TestStart_ForceQueuesSingleFollowUp(t *testing.T) {
	// Arrange
	runner := newBlockingRunner()
	status := NewStatusRegister()
	svc := NewScraperService(context.Background(), runner, status, 1000)

	_, err := svc.Start(context.Background(), 10, false)
	require.NoError(t, err)
	assert.Equal(t, 10, waitStarted(t, runner))

	// Act
	first, err := svc.Start(context.Background(), 20, true)
	require.NoError(t, err)
	second, err := svc.Start(context.Background(), 30, true)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, StartStatusQueued, first.Status)
	assert.Equal(t, StartStatusQueued, second.Status)
	assert.True(t, second.State.Queued)

	runner.release <- passOutcome{found: 1}
	// Повторные принудительные запросы схлопываются в один проход с последней целью
	assert.Equal(t, 30, waitStarted(t, runner))
	assert.False(t, status.Snapshot().Queued)
	assert.True(t, status.Snapshot().Running)

	runner.release <- passOutcome{found: 2}
	svc.Wait()

	assert.Empty(t, runner.started)
	st := svc.Status()
	assert.False(t, st.Running)
	assert.Equal(t, 2, st.TotalFound)
}

func TestStart_FailedPassRecordsError(t *testing.T) {
	// Arrange
	runner := newBlockingRunner()
	svc := NewScraperService(context.Background(), runner, NewStatusRegister(), 1000)

	_, err := svc.Start(context.Background(), 5, false)
	require.NoError(t, err)
	waitStarted(t, runner)

	// Act
	runner.release <- passOutcome{found: 1, err: errors.New("db unavailable")}
	svc.Wait()

	// Assert
	st := svc.Status()
	assert.False(t, st.Running)
	require.NotNil(t, st.LastError)
	assert.Contains(t, *st.LastError, "db unavailable")
	assert.Nil(t, st.LastRun)
	assert.Less(t, st.Progress, 100)
	assert.Equal(t, 1, st.TotalFound)

	// Новый проход сбрасывает ошибку
	_, err = svc.Start(context.Background(), 5, false)
	require.NoError(t, err)
	assert.Nil(t, svc.Status().LastError)
	waitStarted(t, runner)
	runner.release <- passOutcome{}
	svc.Wait()
}

func TestStart_FailedPassBeforeQueuedPassKeepsError(t *testing.T) {
	// Arrange
	runner := newBlockingRunner()
	status := NewStatusRegister()
	svc := NewScraperService(context.Background(), runner, status, 1000)

	_, err := svc.Start(context.Background(), 5, false)
	require.NoError(t, err)
	waitStarted(t, runner)

	res, err := svc.Start(context.Background(), 7, true)
	require.NoError(t, err)
	require.Equal(t, StartStatusQueued, res.Status)

	// Act
	runner.release <- passOutcome{err: errors.New("db down")}
	assert.Equal(t, 7, waitStarted(t, runner))

	// Assert
	st := status.Snapshot()
	assert.True(t, st.Running)
	require.NotNil(t, st.LastError)
	assert.Contains(t, *st.LastError, "db down")

	// Успешный отложенный проход сбрасывает ошибку
	runner.release <- passOutcome{found: 2}
	svc.Wait()

	st = status.Snapshot()
	assert.False(t, st.Running)
	assert.Nil(t, st.LastError)
	assert.Equal(t, 100, st.Progress)
	require.NotNil(t, st.LastRun)
}

func TestStart_ProgressReportedDuringPass(t *testing.T) {
	runner := newBlockingRunner()
	svc := NewScraperService(context.Background(), runner, NewStatusRegister(), 1000)

	_, err := svc.Start(context.Background(), 5, false)
	require.NoError(t, err)
	waitStarted(t, runner)

	assert.Eventually(t, func() bool {
		st := svc.Status()
		return st.Progress == 50 && st.TotalFound == 3
	}, time.Second, 10*time.Millisecond)

	runner.release <- passOutcome{found: 3}
	svc.Wait()
}

func TestStart_RootContextCancelStopsPass(t *testing.T) {
	root, cancel := context.WithCancel(context.Background())
	runner := newBlockingRunner()
	svc := NewScraperService(root, runner, NewStatusRegister(), 1000)

	_, err := svc.Start(context.Background(), 5, false)
	require.NoError(t, err)
	waitStarted(t, runner)

	cancel()
	svc.Wait()

	st := svc.Status()
	assert.False(t, st.Running)
	require.NotNil(t, st.LastError)
}

func TestStart_CanceledRequestContext(t *testing.T) {
	svc := NewScraperService(context.Background(), newBlockingRunner(), NewStatusRegister(), 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Start(ctx, 5, false)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, svc.Running())
}

// ===================== Stop Tests =====================

func TestStop_NotImplemented(t *testing.T) {
	svc := NewScraperService(context.Background(), newBlockingRunner(), NewStatusRegister(), 1000)

	assert.ErrorIs(t, svc.Stop(), ErrStopNotImplemented)
}
