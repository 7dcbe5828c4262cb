package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articlePage = `<!DOCTYPE html>
<html><head><title>Why Go scales</title></head><body>
<nav>Home | About | Contact</nav>
<article>
<h1>Why Go scales</h1>
<p>Go was designed for building networked services at scale. Its concurrency
model makes it straightforward to handle thousands of simultaneous
connections, and its compilation speed keeps feedback loops short even in
large codebases. Teams that migrate to Go often report simpler deployments
and lower operational overhead, because a single static binary carries
everything the service needs.</p>
<p>The standard library covers most of what a network service needs, and the
ecosystem fills the remaining gaps with well maintained packages.</p>
</article>
</body></html>`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	content, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(content, "networked services at scale") {
		t.Errorf("article text missing from content:\n%s", content)
	}
	if strings.Contains(content, "Home | About | Contact") {
		t.Errorf("navigation boilerplate not stripped:\n%s", content)
	}
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("error is %T, want *Error", err)
	}
	if fe.URL != srv.URL {
		t.Errorf("Error.URL = %q", fe.URL)
	}
}

func TestFetch_TooShort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>Please log in.</p></body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for near-empty page")
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	f := NewHTTPFetcher(time.Second)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/nothing")
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("error is %T, want *Error", err)
	}
}

func TestStubFetcher(t *testing.T) {
	f := &StubFetcher{}
	content, err := f.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(content, "<h1>") {
		t.Error("stub content should carry an H1 heading")
	}
}
