package zwiftpower

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string) *Client {
	return NewClient(ClientOptions{
		BaseURL:   serverURL,
		TeamID:    "20561",
		Cookie:    "PHPSESSID=abc123",
		UserAgent: "podiumbot-test",
		Timeout:   5 * time.Second,
	})
}

func TestClient_TeamPage(t *testing.T) {
	var gotCookie, gotAgent, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.String()
		w.Write([]byte("<table><tr><td>results</td></tr></table>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	body, err := client.TeamPage(context.Background())
	if err != nil {
		t.Fatalf("TeamPage returned error: %v", err)
	}

	if string(body) == "" {
		t.Error("expected non-empty body")
	}
	if gotPath != "/team.php?id=20561" {
		t.Errorf("path = %q, want /team.php?id=20561", gotPath)
	}
	if gotCookie != "PHPSESSID=abc123" {
		t.Errorf("cookie header = %q", gotCookie)
	}
	if gotAgent != "podiumbot-test" {
		t.Errorf("user agent = %q", gotAgent)
	}
}

func TestClient_LoginBodyIsAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<form><input name="login"><input type="password" name="password"></form>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.TeamPage(context.Background())
	if !errors.Is(err, ErrAuthFailure) {
		t.Errorf("error = %v, want ErrAuthFailure", err)
	}
}

func TestClient_LoginRedirectIsAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ucp.php/login.php" {
			http.Redirect(w, r, "/ucp.php/login.php", http.StatusFound)
			return
		}
		w.Write([]byte("please sign in"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.TeamPage(context.Background())
	if !errors.Is(err, ErrAuthFailure) {
		t.Errorf("error = %v, want ErrAuthFailure", err)
	}
}

func TestClient_ForbiddenIsAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.TeamPage(context.Background())
	if !errors.Is(err, ErrAuthFailure) {
		t.Errorf("error = %v, want ErrAuthFailure", err)
	}
}

func TestClient_ServerErrorIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.TeamPage(context.Background())
	if err == nil {
		t.Fatal("expected error for status 500")
	}
	if errors.Is(err, ErrAuthFailure) {
		t.Error("a 500 is a transport failure, not an auth failure")
	}
}

func TestClient_EventPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.String() != "/events.php?zid=42" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("<html><body>Criterium</body></html>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	body, err := client.EventPage(context.Background(), server.URL+"/events.php?zid=42")
	if err != nil {
		t.Fatalf("EventPage returned error: %v", err)
	}
	if len(body) == 0 {
		t.Error("expected non-empty body")
	}
}
