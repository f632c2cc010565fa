// Package mocknode runs a configurable in-process stand-in for an rqlite
// node, used by the client tests. Responses are canned per endpoint and
// every request is recorded for assertions.
package mocknode

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Recorded captures one request as seen by the mock node.
type Recorded struct {
	Method      string
	Path        string
	Query       string
	Body        string
	ContentType string
	Auth        string // raw Authorization header
}

// Server is a mock rqlite node.
type Server struct {
	ts *httptest.Server

	mu              sync.Mutex
	statementStatus int
	statementBody   string
	nodesStatus     int
	nodesBody       string
	readyStatus     int
	removeStatus    int
	backupStatus    int
	backupBody      []byte
	requests        []Recorded
}

// New starts a plain-HTTP mock node.
func New() *Server {
	s := newServer()
	s.ts = httptest.NewServer(s.router())
	return s
}

// NewTLS starts a mock node behind a self-signed TLS certificate.
func NewTLS() *Server {
	s := newServer()
	s.ts = httptest.NewTLSServer(s.router())
	return s
}

func newServer() *Server {
	return &Server{
		statementStatus: http.StatusOK,
		statementBody:   `{"results":[{}]}`,
		nodesStatus:     http.StatusOK,
		nodesBody:       `{}`,
		readyStatus:     http.StatusOK,
		removeStatus:    http.StatusOK,
		backupStatus:    http.StatusOK,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/db/request", s.statement)
	r.Post("/db/query", s.statement)
	r.Get("/nodes", s.nodes)
	r.Get("/readyz", s.ready)
	r.Delete("/remove", s.remove)
	r.Get("/db/backup", s.backup)
	return r
}

// Close shuts the mock node down.
func (s *Server) Close() {
	s.ts.Close()
}

// CloseClientConnections drops every open client connection, simulating a
// node crash under a live Connection.
func (s *Server) CloseClientConnections() {
	s.ts.CloseClientConnections()
}

// Host returns the listen address host.
func (s *Server) Host() string {
	u, _ := url.Parse(s.ts.URL)
	return u.Hostname()
}

// Port returns the listen address port.
func (s *Server) Port() int {
	u, _ := url.Parse(s.ts.URL)
	p, _ := strconv.Atoi(u.Port())
	return p
}

// --- canned response setters ---

func (s *Server) SetStatement(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statementStatus = status
	s.statementBody = body
}

func (s *Server) SetNodes(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodesStatus = status
	s.nodesBody = body
}

func (s *Server) SetReady(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readyStatus = status
}

func (s *Server) SetRemove(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeStatus = status
}

func (s *Server) SetBackup(status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backupStatus = status
	s.backupBody = body
}

// Last returns the most recently recorded request.
func (s *Server) Last() Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}
	}
	return s.requests[len(s.requests)-1]
}

// --- handlers ---

func (s *Server) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.requests = append(s.requests, Recorded{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		Body:        string(body),
		ContentType: r.Header.Get("Content-Type"),
		Auth:        r.Header.Get("Authorization"),
	})
}

func (s *Server) statement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.statementStatus)
	io.WriteString(w, s.statementBody)
}

func (s *Server) nodes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.nodesStatus)
	io.WriteString(w, s.nodesBody)
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)
	w.WriteHeader(s.readyStatus)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)
	w.WriteHeader(s.removeStatus)
}

func (s *Server) backup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(s.backupStatus)
	w.Write(s.backupBody)
}
