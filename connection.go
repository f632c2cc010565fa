package rqwire

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/rqwire/rqwire/errs"
	"github.com/rqwire/rqwire/logger"
)

// Connection is a live channel to exactly one rqlite node, created by
// ConnectOptions.Connect. A background driver goroutine owns the socket and
// serializes requests, so only one request is ever in flight; concurrent
// callers queue behind each other. Once the driver dies, whether from an I/O
// error or an abandoned in-flight request, every further call fails with a
// connection error. Reconnection is the caller's responsibility: build a new
// Connection, there is no automatic retry.
type Connection struct {
	opts ConnectOptions // settings snapshot, read-only after Connect
	log  *logger.Logger

	conn net.Conn
	br   *bufio.Reader

	calls     chan *call
	closed    chan struct{}
	broken    atomic.Bool
	closeOnce sync.Once
}

// call is one request/response exchange handed to the driver goroutine.
type call struct {
	req  *http.Request
	done chan callResult // buffered so the driver never blocks on delivery
}

type callResult struct {
	resp *rawResponse
	err  error
}

// rawResponse is a fully buffered HTTP response.
type rawResponse struct {
	status int
	body   []byte
}

// Connect dials the node, performs the TLS handshake when the scheme is
// https, and starts the connection driver.
func (o *ConnectOptions) Connect(ctx context.Context) (*Connection, error) {
	addr := o.hostPort()

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, fmt.Sprintf("failed to dial %s", addr), err)
	}

	conn := raw
	if o.scheme == SchemeHTTPS {
		cfg := &tls.Config{ServerName: o.host}
		if o.acceptInvalidCert {
			// Explicit insecure escape hatch: disables both chain and
			// hostname verification.
			cfg.InsecureSkipVerify = true
		}
		tconn := tls.Client(raw, cfg)
		if err := tconn.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, errs.Wrap(errs.KindConnection, fmt.Sprintf("tls handshake with %s failed", addr), err)
		}
		conn = tconn
	}

	c := &Connection{
		opts:   *o,
		log:    o.log,
		conn:   conn,
		br:     bufio.NewReader(conn),
		calls:  make(chan *call),
		closed: make(chan struct{}),
	}
	go c.run()

	c.log.DebugWith("connected", map[string]any{"addr": addr, "scheme": string(o.scheme)})
	return c, nil
}

// run is the connection driver. It exits on the first I/O error, leaving the
// broken flag set so later requests fail fast instead of writing to a
// desynchronized stream.
func (c *Connection) run() {
	for {
		select {
		case <-c.closed:
			return
		case cl := <-c.calls:
			resp, err := c.roundTrip(cl.req)
			cl.done <- callResult{resp: resp, err: err}
			if err != nil {
				c.shutdown()
				return
			}
		}
	}
}

// roundTrip writes one request to the socket and reads back the full
// response, buffering the body.
func (c *Connection) roundTrip(req *http.Request) (*rawResponse, error) {
	if err := req.Write(c.conn); err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to send request", err)
	}

	resp, err := http.ReadResponse(c.br, req)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to read response", err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errs.Wrap(errs.KindConnection, "failed to read response body", err)
	}

	return &rawResponse{status: resp.StatusCode, body: body}, nil
}

// request builds and dispatches one HTTP exchange. body, when non-nil, is
// JSON-encoded. A 401 status is translated into an auth error; every other
// status passes through for the caller to interpret.
func (c *Connection) request(ctx context.Context, method, path string, body any) (*rawResponse, error) {
	if c.broken.Load() {
		return nil, errs.New(errs.KindConnection, "connection is closed or broken")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.KindConnection, "request aborted", err)
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errs.Wrap(errs.KindDataSer, "failed to encode request body", err)
		}
		payload = bytes.NewReader(raw)
	}

	url := fmt.Sprintf("%s://%s%s", c.opts.scheme, c.opts.hostPort(), path)
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, errs.Wrap(errs.KindDataSer, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.user != "" && c.opts.pass != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(c.opts.user + ":" + c.opts.pass))
		req.Header.Set("Authorization", "Basic "+cred)
	}

	cl := &call{req: req, done: make(chan callResult, 1)}
	select {
	case c.calls <- cl:
	case <-c.closed:
		return nil, errs.New(errs.KindConnection, "connection is closed or broken")
	case <-ctx.Done():
		return nil, errs.Wrap(errs.KindConnection, "request aborted", ctx.Err())
	}

	select {
	case res := <-cl.done:
		if res.err != nil {
			c.log.ErrorWith("request failed", res.err, map[string]any{"method": method, "path": path})
			return nil, res.err
		}
		c.log.DebugWith("request completed", map[string]any{
			"method": method, "path": path, "status": res.resp.status,
		})
		if res.resp.status == http.StatusUnauthorized {
			return nil, errs.New(errs.KindAuth, "node rejected credentials (status 401)")
		}
		return res.resp, nil
	case <-ctx.Done():
		// The response, whenever it arrives, can no longer be paired with a
		// waiting caller, so the stream cannot be reused.
		c.shutdown()
		return nil, errs.Wrap(errs.KindConnection, "request abandoned mid-flight", ctx.Err())
	}
}

// shutdown marks the connection broken and closes the socket. Idempotent.
func (c *Connection) shutdown() {
	c.broken.Store(true)
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// Close terminates the connection. The Connection cannot be reused.
func (c *Connection) Close() error {
	c.shutdown()
	return nil
}

// Broken reports whether the connection can no longer serve requests.
func (c *Connection) Broken() bool {
	return c.broken.Load()
}

// decodeJSON unmarshals a buffered response body into out. Numbers are kept
// as json.Number so integer values survive intact.
func decodeJSON(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return errs.Wrap(errs.KindDataSer, "failed to decode response body", err)
	}
	return nil
}
