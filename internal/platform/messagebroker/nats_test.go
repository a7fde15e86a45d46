package messagebroker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSClient_PublishCancelledContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := &NATSClient{logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Publish(ctx, "interviews.completed", []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
