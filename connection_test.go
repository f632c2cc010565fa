package rqwire

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rqwire/rqwire/errs"
	"github.com/rqwire/rqwire/internal/mocknode"
)

func connectTo(t *testing.T, srv *mocknode.Server) *Connection {
	t.Helper()
	conn, err := NewConnectOptions(srv.Host(), srv.Port()).Connect(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConnect(t *testing.T) {
	srv := mocknode.New()
	defer srv.Close()

	conn := connectTo(t, srv)

	ready, err := conn.Ready(context.Background())
	require.NoError(t, err)
	assert.True(t, ready)
	assert.False(t, conn.Broken())
}

func TestConnectTLS(t *testing.T) {
	srv := mocknode.NewTLS()
	defer srv.Close()

	conn, err := NewConnectOptions(srv.Host(), srv.Port()).
		Scheme(SchemeHTTPS).
		AcceptInvalidCert(true).
		Connect(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	ready, err := conn.Ready(context.Background())
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestConnectTLSRejectsUntrustedCert(t *testing.T) {
	srv := mocknode.NewTLS()
	defer srv.Close()

	// The mock node uses a self-signed certificate; without the explicit
	// escape hatch the handshake must fail.
	_, err := NewConnectOptions(srv.Host(), srv.Port()).
		Scheme(SchemeHTTPS).
		Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
}

func TestConnectRefused(t *testing.T) {
	srv := mocknode.New()
	host, port := srv.Host(), srv.Port()
	srv.Close()

	_, err := NewConnectOptions(host, port).Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
}

func TestSequentialRequests(t *testing.T) {
	srv := mocknode.New()
	defer srv.Close()

	conn := connectTo(t, srv)

	// Several exchanges over the same persistent connection.
	for i := 0; i < 3; i++ {
		ready, err := conn.Ready(context.Background())
		require.NoError(t, err)
		assert.True(t, ready)
	}
	_, err := conn.Nodes(context.Background(), false)
	require.NoError(t, err)
}

func TestAuthError(t *testing.T) {
	srv := mocknode.New()
	defer srv.Close()
	srv.SetReady(http.StatusUnauthorized)
	srv.SetStatement(http.StatusUnauthorized, `irrelevant body`)

	conn := connectTo(t, srv)

	_, err := conn.Ready(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsAuth(err), "401 must map to an auth error regardless of endpoint")

	_, err = conn.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, errs.IsAuth(err), "401 must map to an auth error regardless of body content")
}

func TestBasicAuthHeader(t *testing.T) {
	srv := mocknode.New()
	defer srv.Close()

	conn, err := NewConnectOptions(srv.Host(), srv.Port()).
		User("root").
		Pass("secret").
		Connect(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Ready(context.Background())
	require.NoError(t, err)

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("root:secret"))
	assert.Equal(t, want, srv.Last().Auth)
}

func TestBasicAuthOmittedWithPartialCredentials(t *testing.T) {
	srv := mocknode.New()
	defer srv.Close()

	// Password missing: no Authorization header at all.
	conn, err := NewConnectOptions(srv.Host(), srv.Port()).
		User("root").
		Connect(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Ready(context.Background())
	require.NoError(t, err)
	assert.Empty(t, srv.Last().Auth)
}

func TestConnectionBreaksOnServerDrop(t *testing.T) {
	srv := mocknode.New()
	defer srv.Close()

	conn := connectTo(t, srv)

	ready, err := conn.Ready(context.Background())
	require.NoError(t, err)
	require.True(t, ready)

	srv.CloseClientConnections()

	_, err = conn.Ready(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
	assert.True(t, conn.Broken())

	// Every further request fails fast; the connection never resurrects.
	_, err = conn.Ready(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
}

func TestRequestAfterClose(t *testing.T) {
	srv := mocknode.New()
	defer srv.Close()

	conn := connectTo(t, srv)
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close(), "Close must be idempotent")

	_, err := conn.Ready(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
	assert.True(t, conn.Broken())
}

func TestRequestCanceledContext(t *testing.T) {
	srv := mocknode.New()
	defer srv.Close()

	conn := connectTo(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Ready(ctx)
	require.Error(t, err)
	assert.True(t, errs.IsConnection(err))
}
