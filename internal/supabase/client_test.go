package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPC(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/rest/v1/rpc/{fn}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "anon", req.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon", req.Header.Get("Authorization"))
		switch chi.URLParam(req, "fn") {
		case "get_sections_with_categories":
			_ = json.NewEncoder(w).Encode([]map[string]any{{"section_id": "sec_1", "title_en": "Men"}})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"function not found"}`))
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/", "anon", time.Second)

	var out []struct {
		SectionID string `json:"section_id"`
		TitleEN   string `json:"title_en"`
	}
	require.NoError(t, c.RPC(context.Background(), "get_sections_with_categories", nil, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Men", out[0].TitleEN)

	err := c.RPC(context.Background(), "nope", nil, &out)
	require.Error(t, err)
	assert.Equal(t, "rpc nope: status 404: function not found", err.Error())
}

func TestRPCResponseSizeCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"title_en":"`))
		_, _ = w.Write([]byte(strings.Repeat("a", MaxResponseSize)))
		_, _ = w.Write([]byte(`"}]`))
	}))
	t.Cleanup(srv.Close)

	var out []map[string]any
	err := New(srv.URL, "anon", time.Second).RPC(context.Background(), "get_sections_with_categories", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc get_sections_with_categories: decode")
}

func TestRPCTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	var out []map[string]any
	err := New(srv.URL, "anon", 50*time.Millisecond).RPC(context.Background(), "get_sections_with_categories", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Client.Timeout exceeded")
}
