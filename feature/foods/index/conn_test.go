package index

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPipe(t *testing.T) {
	a, b := Pipe()
	ctx := context.Background()

	msg := []byte(`{"type":"command","exit":true}`)
	require.NoError(t, a.Send(ctx, msg))
	msg[0] = 'X'

	got, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), got[0], "message must be copied on send")

	require.NoError(t, b.Close())
	_, err = a.Receive(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, a.Send(ctx, msg), ErrConnClosed)
}

// streamPair connects two StreamConns the way a parent and its child process are.
func streamPair() (gatewaySide, workerSide *StreamConn) {
	toWorkerR, toWorkerW := io.Pipe()
	toGatewayR, toGatewayW := io.Pipe()
	gatewaySide = NewStreamConn(toGatewayR, toWorkerW, toWorkerW, toGatewayR)
	workerSide = NewStreamConn(toWorkerR, toGatewayW, toGatewayW, toWorkerR)
	return gatewaySide, workerSide
}

func TestStreamConn_WorkerRoundTrip(t *testing.T) {
	loader := newFakeLoader()
	loader.locales = []string{"en_GB"}
	loader.setFoods("en_GB", food("1", "F1", "Apple"))

	gwConn, wConn := streamPair()
	worker := NewWorker(wConn, loader, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	g := NewGateway(gwConn, fakeLocales{}, zap.NewNop(), GatewayConfig{CallTimeout: time.Second})
	require.NoError(t, g.Init(context.Background()))

	res, err := g.Search(context.Background(), SearchParams{LocaleID: "en_GB", Description: "apple"})
	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, foodCodes(res))

	require.NoError(t, g.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit")
	}
}

func TestWorker_RejectsUndecodableCommandWithID(t *testing.T) {
	loader := newFakeLoader()
	gwConn, wConn := Pipe()
	worker := NewWorker(wConn, loader, zap.NewNop())
	go func() { _ = worker.Run(context.Background()) }()
	t.Cleanup(func() { _ = gwConn.Close() })

	ctx := context.Background()
	ready, err := gwConn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `"ready"`, string(ready))

	require.NoError(t, gwConn.Send(ctx, []byte(`{"type":"query","queryId":7,"parameters":"bad"}`)))
	reply, err := gwConn.Receive(ctx)
	require.NoError(t, err)
	var r Reply
	require.NoError(t, json.Unmarshal(reply, &r))
	require.NotNil(t, r.QueryID)
	assert.Equal(t, uint64(7), *r.QueryID)
	assert.False(t, r.Success)
	assert.NotEmpty(t, r.Error)
}
