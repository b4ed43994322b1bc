package report

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestClient_URL(t *testing.T) {
	c := NewClient("")
	got := c.URL("Aotizhongxin")
	want := "https://raw.githubusercontent.com/echelon2718/Air-Quality-Analysis-Properties/main/properties/Aotizhongxin.html"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}

	c = NewClient("http://host/r/{station}.html")
	if got := c.URL("Wan Shou"); got != "http://host/r/Wan%20Shou.html" {
		t.Errorf("URL = %q, want escaped station", got)
	}
}

func TestClient_Fetch(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte("<h1>Dingling</h1><p>Overview &amp; alerts</p>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/properties/{station}.html")
	rep, err := c.Fetch(context.Background(), "Dingling")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != "/properties/Dingling.html" {
		t.Errorf("path = %q", path)
	}
	if rep.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", rep.Status)
	}
	if !strings.Contains(rep.HTML, "<h1>Dingling</h1>") {
		t.Errorf("HTML = %q", rep.HTML)
	}
	if !strings.Contains(rep.Text(), "Overview & alerts") {
		t.Errorf("Text = %q", rep.Text())
	}
	if rep.Duration <= 0 {
		t.Error("expected duration to be recorded")
	}
}

func TestClient_Fetch_NonSuccessNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/{station}.html")
	rep, err := c.Fetch(context.Background(), "Shunyi")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want 503", statusErr.Code)
	}
	if rep == nil || rep.Status != http.StatusServiceUnavailable || rep.HTML != "" {
		t.Errorf("report = %+v", rep)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}

	if _, err := c.Fetch(context.Background(), "Shunyi"); err == nil {
		t.Fatal("expected second fetch to fail too")
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hit %d times after second fetch, want 2 (no caching)", n)
	}
}

func TestClient_Fetch_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL + "/{station}.html")
	if _, err := c.Fetch(ctx, "Tiantan"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
