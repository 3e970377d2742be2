package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockScraper мок для ScraperServiceInterface
type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Start(ctx context.Context, count int, force bool) (service.StartResult, error) {
	args := m.Called(ctx, count, force)
	return args.Get(0).(service.StartResult), args.Error(1)
}

func (m *MockScraper) Stop() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockScraper) Running() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockScraper) Status() entity.Status {
	args := m.Called()
	return args.Get(0).(entity.Status)
}

func (m *MockScraper) Wait() {
	m.Called()
}

// MockCounter мок для ProductCounter
type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) CountProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var testConfig = SchedulerConfig{
	Spec:               "@every 1h",
	MaxProducts:        1000,
	AutoStartThreshold: 10,
}

func newTestScheduler(t *testing.T) (*CronScheduler, *MockScraper, *MockCounter, *service.StatusRegister) {
	t.Helper()

	scraper := new(MockScraper)
	counter := new(MockCounter)
	status := service.NewStatusRegister()

	scheduler, err := NewCronScheduler(context.Background(), testConfig, scraper, counter, status)
	require.NoError(t, err)
	t.Cleanup(scheduler.Stop)

	return scheduler, scraper, counter, status
}

// ===================== NewCronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	scheduler, _, _, _ := newTestScheduler(t)

	assert.NotNil(t, scheduler.cron)
	assert.False(t, scheduler.Active())
	assert.Empty(t, scheduler.GetEntries())
}

func TestNewCronScheduler_InvalidSpec(t *testing.T) {
	cfg := testConfig
	cfg.Spec = "every now and then"

	scheduler, err := NewCronScheduler(context.Background(), cfg, new(MockScraper), new(MockCounter), service.NewStatusRegister())

	assert.Error(t, err)
	assert.Nil(t, scheduler)
}

// ===================== Activate / Deactivate Tests =====================

func TestCronScheduler_Activate(t *testing.T) {
	// Arrange
	scheduler, _, _, status := newTestScheduler(t)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	scheduler.now = func() time.Time { return now }

	// Act
	changed, err := scheduler.Activate()

	// Assert
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, scheduler.Active())
	assert.Len(t, scheduler.GetEntries(), 1)

	st := status.Snapshot()
	assert.True(t, st.SchedulerActive)
	require.NotNil(t, st.NextRun)
	assert.Equal(t, now.Add(time.Hour), *st.NextRun)
}

func TestCronScheduler_Activate_AlreadyActive(t *testing.T) {
	scheduler, _, _, _ := newTestScheduler(t)

	_, err := scheduler.Activate()
	require.NoError(t, err)

	changed, err := scheduler.Activate()

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, scheduler.GetEntries(), 1)
}

func TestCronScheduler_Deactivate(t *testing.T) {
	// Arrange
	scheduler, _, _, status := newTestScheduler(t)
	_, err := scheduler.Activate()
	require.NoError(t, err)

	// Act
	changed := scheduler.Deactivate()

	// Assert
	assert.True(t, changed)
	assert.False(t, scheduler.Active())
	assert.Empty(t, scheduler.GetEntries())

	st := status.Snapshot()
	assert.False(t, st.SchedulerActive)
	assert.Nil(t, st.NextRun)
}

func TestCronScheduler_Deactivate_WhenInactive(t *testing.T) {
	scheduler, _, _, _ := newTestScheduler(t)

	assert.False(t, scheduler.Deactivate())
}

func TestCronScheduler_Reactivate(t *testing.T) {
	scheduler, _, _, status := newTestScheduler(t)

	_, err := scheduler.Activate()
	require.NoError(t, err)
	scheduler.Deactivate()

	changed, err := scheduler.Activate()

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, scheduler.GetEntries(), 1)
	assert.True(t, status.Snapshot().SchedulerActive)
}

// ===================== Tick Tests =====================

func TestCronScheduler_Tick_StartsWhenBelowMax(t *testing.T) {
	// Arrange
	scheduler, scraper, counter, _ := newTestScheduler(t)

	scraper.On("Running").Return(false)
	counter.On("CountProducts", mock.Anything).Return(int64(120), nil)
	scraper.On("Start", mock.Anything, 1000, false).Return(service.StartResult{Status: service.StartStatusSuccess}, nil)

	// Act
	scheduler.tick()

	// Assert
	scraper.AssertExpectations(t)
	counter.AssertExpectations(t)
}

func TestCronScheduler_Tick_SkipsWhenRunning(t *testing.T) {
	scheduler, scraper, counter, _ := newTestScheduler(t)

	scraper.On("Running").Return(true)

	scheduler.tick()

	counter.AssertNotCalled(t, "CountProducts", mock.Anything)
	scraper.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestCronScheduler_Tick_SkipsWhenFull(t *testing.T) {
	scheduler, scraper, counter, _ := newTestScheduler(t)

	scraper.On("Running").Return(false)
	counter.On("CountProducts", mock.Anything).Return(int64(1000), nil)

	scheduler.tick()

	scraper.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestCronScheduler_Tick_CountErrorRecorded(t *testing.T) {
	// Arrange
	scheduler, scraper, counter, status := newTestScheduler(t)

	scraper.On("Running").Return(false)
	counter.On("CountProducts", mock.Anything).Return(int64(0), errors.New("db unavailable"))

	// Act
	scheduler.tick()

	// Assert
	st := status.Snapshot()
	require.NotNil(t, st.LastError)
	assert.Contains(t, *st.LastError, "db unavailable")
	scraper.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestCronScheduler_Tick_AlreadyRunningIsNotAnError(t *testing.T) {
	scheduler, scraper, counter, status := newTestScheduler(t)

	scraper.On("Running").Return(false)
	counter.On("CountProducts", mock.Anything).Return(int64(0), nil)
	scraper.On("Start", mock.Anything, 1000, false).Return(service.StartResult{}, service.ErrAlreadyRunning)

	scheduler.tick()

	assert.Nil(t, status.Snapshot().LastError)
}

func TestCronScheduler_Tick_RefreshesNextRun(t *testing.T) {
	// Arrange
	scheduler, scraper, _, status := newTestScheduler(t)
	_, err := scheduler.Activate()
	require.NoError(t, err)

	later := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	scheduler.now = func() time.Time { return later }
	scraper.On("Running").Return(true)

	// Act
	scheduler.tick()

	// Assert
	st := status.Snapshot()
	require.NotNil(t, st.NextRun)
	assert.Equal(t, later.Add(time.Hour), *st.NextRun)
}

// ===================== Bootstrap Tests =====================

func TestCronScheduler_Bootstrap_StartsBelowThreshold(t *testing.T) {
	// Arrange
	scheduler, scraper, counter, _ := newTestScheduler(t)
	ctx := context.Background()

	counter.On("CountProducts", ctx).Return(int64(3), nil)
	scraper.On("Start", ctx, 1000, false).Return(service.StartResult{Status: service.StartStatusSuccess}, nil)

	// Act
	started, err := scheduler.Bootstrap(ctx)

	// Assert
	require.NoError(t, err)
	assert.True(t, started)
	scraper.AssertExpectations(t)
}

func TestCronScheduler_Bootstrap_SkipsWhenPopulated(t *testing.T) {
	scheduler, scraper, counter, _ := newTestScheduler(t)
	ctx := context.Background()

	counter.On("CountProducts", ctx).Return(int64(10), nil)

	started, err := scheduler.Bootstrap(ctx)

	require.NoError(t, err)
	assert.False(t, started)
	scraper.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestCronScheduler_Bootstrap_CountError(t *testing.T) {
	scheduler, _, counter, _ := newTestScheduler(t)
	ctx := context.Background()

	counter.On("CountProducts", ctx).Return(int64(0), errors.New("db unavailable"))

	started, err := scheduler.Bootstrap(ctx)

	assert.Error(t, err)
	assert.False(t, started)
}
