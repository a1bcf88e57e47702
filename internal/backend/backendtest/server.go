// Package backendtest runs a fake backend-as-a-service for tests. Handlers
// are registered per method and path; every request is recorded.
package backendtest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// AnonKey is the API key tests should configure their client with.
const AnonKey = "test-anon-key"

type Call struct {
	Method         string
	Path           string
	RawQuery       string
	Authorization  string
	APIKey         string
	IdempotencyKey string
	Body           []byte
}

type Server struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]gin.HandlerFunc
	calls  []Call
}

// New starts a fake backend closed automatically at the end of the test.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{routes: make(map[string]gin.HandlerFunc)}
	engine := gin.New()
	engine.NoRoute(s.dispatch)
	s.Server = httptest.NewServer(engine)
	t.Cleanup(s.Close)
	return s
}

// Handle registers h for method and path (query strings are not part of the match).
func (s *Server) Handle(method, path string, h gin.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
}

// Calls returns a copy of every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts requests for method and path.
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) dispatch(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method:         c.Request.Method,
		Path:           c.Request.URL.Path,
		RawQuery:       c.Request.URL.RawQuery,
		Authorization:  c.GetHeader("Authorization"),
		APIKey:         c.GetHeader("apikey"),
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
		Body:           body,
	})
	h, ok := s.routes[c.Request.Method+" "+c.Request.URL.Path]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "no fake route for " + c.Request.Method + " " + c.Request.URL.Path})
		return
	}
	h(c)
}

// JSON answers every request with status and v.
func JSON(status int, v any) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(status, v)
	}
}

// Raw answers with a literal body, which may be malformed on purpose.
func Raw(status int, body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(status, "application/json", []byte(body))
	}
}

// NoContent answers 204 with no body.
func NoContent() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	}
}
