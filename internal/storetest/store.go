// Package storetest runs an in-memory todo store that speaks the same HTTP
// contract as the real backend. Tests in every package point clients at it.
package storetest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Makepad-fr/tada/internal/model"
)

// Request is one call the store received.
type Request struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

type fault struct {
	method, path string
	status       int
	remaining    int // <0 means forever
}

// Store is the fake. The zero value is not usable; call New.
type Store struct {
	mu       sync.Mutex
	items    []model.Item
	nextID   int
	requests []Request
	faults   []*fault

	Server *httptest.Server
}

// New starts a store seeded with items. Ids of seeded items are kept; new
// ids continue after the highest numeric one. Close it with t.Cleanup.
func New(seed ...model.Item) *Store {
	s := &Store{nextID: 1}
	for _, it := range seed {
		s.items = append(s.items, it)
		if n, err := strconv.Atoi(string(it.ID)); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Store) URL() string { return s.Server.URL + "/" }

func (s *Store) Close() { s.Server.Close() }

// Items returns what the store currently holds.
func (s *Store) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// SetItems replaces the stored items without going through the API, to
// simulate another client writing.
func (s *Store) SetItems(items ...model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]model.Item(nil), items...)
}

// Requests returns every request received so far.
func (s *Store) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests used method.
func (s *Store) Count(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Fail makes matching requests answer with status. An empty path matches
// every path. times <= 0 means every matching request fails.
func (s *Store) Fail(method, path string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if times <= 0 {
		times = -1
	}
	s.faults = append(s.faults, &fault{method: method, path: path, status: status, remaining: times})
}

func (s *Store) injected(method, path string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.faults {
		if f.remaining == 0 {
			continue
		}
		if f.method != method || (f.path != "" && f.path != path) {
			continue
		}
		if f.remaining > 0 {
			f.remaining--
		}
		return f.status, true
	}
	return 0, false
}

// ---------------------------------------------------
// HTTP
// ---------------------------------------------------

func (s *Store) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.record)

	r.GET("/todos", s.list)
	r.GET("/todo/:id", s.get)
	r.POST("/todo", s.create)
	r.PUT("/todo/:id", s.advance)
	r.PATCH("/todo/:id", s.patch)
	r.DELETE("/todo/:id", s.remove)
	return r
}

func (s *Store) record(c *gin.Context) {
	body, _ := c.GetRawData()
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Body:   string(body),
		Header: c.Request.Header.Clone(),
	})
	s.mu.Unlock()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	if status, ok := s.injected(c.Request.Method, c.Request.URL.Path); ok {
		c.AbortWithStatusJSON(status, gin.H{"detail": "injected failure"})
		return
	}
	c.Next()
}

type descriptionBody struct {
	Description string `json:"description"`
}

func (s *Store) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"todos": s.Items()})
}

func (s *Store) get(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOf(s.items, model.ID(c.Param("id")))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Todo not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": s.items[i]})
}

func (s *Store) create(c *gin.Context) {
	var body descriptionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := model.ID(strconv.Itoa(s.nextID))
	s.nextID++
	s.items = append(s.items, model.Item{ID: id, Description: body.Description, Status: model.StatusOpen})
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// advance mirrors the backend: open -> in progress -> finished, then stays.
func (s *Store) advance(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOf(s.items, model.ID(c.Param("id")))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Todo not found"})
		return
	}
	switch strings.ToLower(string(s.items[i].Status)) {
	case "open", "":
		s.items[i].Status = "in progress"
	case "in progress":
		s.items[i].Status = "finished"
	}
	c.JSON(http.StatusOK, gin.H{"affected-rows": 1})
}

func (s *Store) patch(c *gin.Context) {
	var body descriptionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOf(s.items, model.ID(c.Param("id")))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Todo not found"})
		return
	}
	s.items[i].Description = body.Description
	c.JSON(http.StatusOK, gin.H{"id": s.items[i].ID, "message": "Item successfully updated"})
}

func (s *Store) remove(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOf(s.items, model.ID(c.Param("id")))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Todo not found"})
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"action": "delete", "affected-rows": 1})
}
