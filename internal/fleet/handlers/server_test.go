package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func dialOpts() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
}

func TestServer_RegisterHTTPGateway(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50071, 8071, logger)
	api := NewAPI(Services{}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.RegisterHTTPGateway(ctx, api, dialOpts(), "secret", nil))

	assert.NotNil(t, s.httpServer.Handler)
	assert.Equal(t, s.httpEndpoint, s.httpServer.Addr)
}

func TestServer_StartStop(t *testing.T) {
	if testing.Short() {
		t.Skip("binds local ports")
	}
	logger := zaptest.NewLogger(t)
	s := NewServer(50072, 8072, logger)
	api := NewAPI(Services{}, logger)
	require.NoError(t, s.RegisterHTTPGateway(context.Background(), api, dialOpts(), "secret", nil))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	healthURL := fmt.Sprintf("http://localhost%s/healthz", s.httpEndpoint)
	assert.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 50*time.Millisecond, "healthz reports the gRPC health status")

	resp, err := http.Post(fmt.Sprintf("http://localhost%s/v1/clients", s.httpEndpoint), "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "mutations require a token")

	s.Stop()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for server to stop")
	}
}
