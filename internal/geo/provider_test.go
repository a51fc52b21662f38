// ABOUTME: Tests for the colo region lookup provider
// ABOUTME: Covers embedded resolution, remote refresh, and caching behavior
package geo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestLookupEmbedded(t *testing.T) {
	p := NewProvider(Config{})

	loc, ok := p.Lookup("SJC")
	if !ok {
		t.Fatal("expected embedded lookup to succeed")
	}
	if loc.City != "San Jose" || loc.Country != "US" {
		t.Errorf("unexpected location: %+v", loc)
	}
}

func TestLookupUnknownWithoutRefreshURL(t *testing.T) {
	p := NewProvider(Config{})

	if _, ok := p.Lookup("ZZZ"); ok {
		t.Error("expected unknown code to miss")
	}
}

func TestDescribe(t *testing.T) {
	p := NewProvider(Config{})

	if got := p.Describe("LHR"); got != "LHR (London, GB)" {
		t.Errorf("unexpected description %q", got)
	}
	if got := p.Describe("ZZZ"); got != "ZZZ" {
		t.Errorf("expected bare code for unknown, got %q", got)
	}
	if got := p.Describe(""); got != "" {
		t.Errorf("expected empty description, got %q", got)
	}
}

func TestRemoteLookupCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]Location{
			"XYZ": {IATA: "XYZ", City: "Testville", Country: "TS"},
		})
	}))
	defer srv.Close()

	p := NewProvider(Config{RefreshURL: srv.URL, TTL: time.Minute})
	p.Start()
	defer p.Stop()

	loc, ok := p.Lookup("XYZ")
	if !ok {
		t.Fatal("expected remote lookup to succeed")
	}
	if loc.City != "Testville" {
		t.Errorf("unexpected location: %+v", loc)
	}

	// Second lookup must be served from cache.
	if _, ok := p.Lookup("XYZ"); !ok {
		t.Fatal("expected cached lookup to succeed")
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 remote fetch, got %d", hits.Load())
	}
}

func TestRemoteLookupFailureMisses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(Config{RefreshURL: srv.URL})

	if _, ok := p.Lookup("XYZ"); ok {
		t.Error("expected miss when the remote table is unavailable")
	}
}
