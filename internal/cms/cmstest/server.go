// Package cmstest fakes the CMS GraphQL endpoint for tests.
package cmstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Root fields the fake answers.
var fields = []string{"about", "csr", "contact", "allFaqs", "allLegals", "allNewsArticles", "heroSection"}

type Server struct {
	*httptest.Server

	Token string

	mu        sync.Mutex
	responses map[string]any
	calls     map[string]int
	errors    []string
}

func New(token string) *Server {
	s := &Server{Token: token, responses: make(map[string]any), calls: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Set registers the value returned for a root field in a locale.
func (s *Server) Set(field, locale string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[field+"|"+locale] = value
}

// FailWith makes every query answer with GraphQL errors.
func (s *Server) FailWith(messages ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = messages
}

// Calls returns the number of queries for a root field.
func (s *Server) Calls(field string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[field]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	locale, _ := req.Variables["locale"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if len(s.errors) > 0 {
		errs := make([]map[string]string, 0, len(s.errors))
		for _, m := range s.errors {
			errs = append(errs, map[string]string{"message": m})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": errs})
		return
	}
	data := map[string]any{}
	for _, f := range fields {
		if strings.Contains(req.Query, f+"(") {
			s.calls[f]++
			data[f] = s.responses[f+"|"+locale]
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}
