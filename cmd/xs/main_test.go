package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/xs/internal/adapters/fingerprint"
	"go.trai.ch/xs/internal/adapters/metrics"
	"go.trai.ch/xs/internal/app"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newComponents(t *testing.T) (*app.Components, *mocks.MockConfigLoader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)

	configLoader := mocks.NewMockConfigLoader(ctrl)
	log := mocks.NewMockLogger(ctrl)
	application := app.New(configLoader, log, fingerprint.New(), metrics.NewRecorder())

	return &app.Components{App: application, Logger: log}, configLoader, log
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	components, _, _ := newComponents(t)
	provider := func(context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "xs version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	components, configLoader, log := newComponents(t)
	configLoader.EXPECT().Load(gomock.Any()).Return(nil, domain.ErrConfigParseFailed)
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrConfigParseFailed)
	})

	provider := func(context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"cache", "clear"}, new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Cleanup verifies that the provider cleanup runs after the command.
func TestRun_Cleanup(t *testing.T) {
	components, _, _ := newComponents(t)
	cleaned := false
	provider := func(context.Context) (*app.Components, func(), error) {
		return components, func() { cleaned = true }, nil
	}

	assert.Equal(t, 0, run(context.Background(), []string{"version"}, new(bytes.Buffer), new(bytes.Buffer), provider))
	assert.True(t, cleaned)
}

// TestRun_WatchStopsOnCancel verifies that canceling a watch session is a clean exit.
func TestRun_WatchStopsOnCancel(t *testing.T) {
	components, configLoader, log := newComponents(t)

	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><body><script src="/app.js"></script></body></html>`), 0o600))

	settings := domain.DefaultSettings("es2022")
	settings.CacheBackend = domain.CacheBackendMemory
	configLoader.EXPECT().Load(gomock.Any()).Return(&settings, nil)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	provider := func(context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	done := make(chan int)
	go func() {
		done <- run(ctx, []string{"load", page, "--watch", "--print"}, new(bytes.Buffer), new(bytes.Buffer), provider)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}
