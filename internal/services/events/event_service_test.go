package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/artifex/internal/interfaces"
)

func TestNilLoggerFallsBack(t *testing.T) {
	// Subscribe, publish, and close all log; a nil logger must not panic.
	svc := NewService(nil)
	defer svc.Close()

	var calls int64
	require.NoError(t, svc.Subscribe(interfaces.EventJobCreated, func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt64(&calls, 1)
		return nil
	}))

	require.NoError(t, svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventJobCreated}))
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestPublishSyncAggregatesHandlerErrors(t *testing.T) {
	svc := NewService(nil)
	defer svc.Close()

	require.NoError(t, svc.Subscribe(interfaces.EventJobFailed, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("handler broke")
	}))
	require.NoError(t, svc.Subscribe(interfaces.EventJobFailed, func(ctx context.Context, event interfaces.Event) error {
		return nil
	}))

	err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventJobFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 errors")
}

func TestPublishWithoutSubscribers(t *testing.T) {
	svc := NewService(nil)
	defer svc.Close()

	assert.NoError(t, svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventJobProgress}))
}
