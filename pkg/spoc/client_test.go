package spoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spoc-progress/pkg/config"
	"spoc-progress/pkg/httpclient"
	"spoc-progress/pkg/logging"
	"spoc-progress/pkg/types"
)

var testSession = types.Session{
	Credentials: types.Credentials{Token: "tok", Cookie: "_zte_cid_=abc"},
	ContentIDs: types.ContentIDs{
		ContentID:   "1",
		CourseID:    "2",
		DirectoryID: "3",
	},
	LearnerID: "2021000",
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logging.New("error", false, nil)
	hc := httpclient.New(&config.Config{RequestTimeout: 2 * time.Second}, log)
	return NewClient(server.URL, "https://spoc.buaa.edu.cn", hc, log)
}

func checkSessionHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	if r.Header.Get("Token") != "tok" {
		t.Errorf("Token = %q, want tok", r.Header.Get("Token"))
	}
	if r.Header.Get("Cookie") != "_zte_cid_=abc" {
		t.Errorf("Cookie = %q, want _zte_cid_=abc", r.Header.Get("Cookie"))
	}
	if r.Header.Get("Origin") != "https://spoc.buaa.edu.cn" {
		t.Errorf("Origin = %q", r.Header.Get("Origin"))
	}
	for key, want := range DefaultHeaders {
		if key == "Connection" {
			continue // consumed by the server
		}
		if got := r.Header.Get(key); got != want {
			t.Errorf("header %s = %q, want %q", key, got, want)
		}
	}
}

func TestClient_AddRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathAddRecord {
			t.Errorf("expected path %s, got %s", PathAddRecord, r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		checkSessionHeaders(t, r)

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		want := map[string]string{"kcnrid": "1", "kcid": "2", "nrlx": "99"}
		for k, v := range want {
			if body[k] != v {
				t.Errorf("body[%s] = %q, want %q", k, body[k], v)
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	if !client.AddRecord(context.Background(), testSession, "") {
		t.Error("expected AddRecord to succeed")
	}
}

func TestClient_SaveUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathSaveUser {
			t.Errorf("expected path %s, got %s", PathSaveUser, r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Query().Get("yhdm") != "2021000" {
			t.Errorf("yhdm = %q, want 2021000", r.URL.Query().Get("yhdm"))
		}
		checkSessionHeaders(t, r)
	})

	if !client.SaveUser(context.Background(), testSession) {
		t.Error("expected SaveUser to succeed")
	}
}

func TestClient_UpdateOnlineCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathUpdateOnline {
			t.Errorf("expected path %s, got %s", PathUpdateOnline, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(body) != 1 || body["kcid"] != "2" {
			t.Errorf("body = %v, want {kcid:2}", body)
		}
	})

	if !client.UpdateOnlineCount(context.Background(), testSession) {
		t.Error("expected UpdateOnlineCount to succeed")
	}
}

func TestClient_UpdateProgress(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathUpdateProgress {
			t.Errorf("expected path %s, got %s", PathUpdateProgress, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		want := map[string]any{
			"bfjd":   float64(42),
			"kcnrid": "1",
			"kcid":   "2",
			"sfyd":   "0",
			"bfsj":   12.5,
			"ssmlid": "3",
		}
		for k, v := range want {
			if body[k] != v {
				t.Errorf("body[%s] = %v, want %v", k, body[k], v)
			}
		}
	})

	if !client.UpdateProgress(context.Background(), testSession, 42, 12.5, types.NotRead) {
		t.Error("expected UpdateProgress to succeed")
	}
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"unauthorized", http.StatusUnauthorized},
		{"created is not success", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("nope"))
			})

			ctx := context.Background()
			if client.AddRecord(ctx, testSession, "") {
				t.Error("expected AddRecord to fail")
			}
			if client.SaveUser(ctx, testSession) {
				t.Error("expected SaveUser to fail")
			}
			if client.UpdateOnlineCount(ctx, testSession) {
				t.Error("expected UpdateOnlineCount to fail")
			}
			if client.UpdateProgress(ctx, testSession, 100, 10, types.FullyRead) {
				t.Error("expected UpdateProgress to fail")
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	log := logging.New("error", false, nil)
	hc := httpclient.New(&config.Config{RequestTimeout: time.Second}, log)
	client := NewClient(url, "https://spoc.buaa.edu.cn", hc, log)

	if client.UpdateProgress(context.Background(), testSession, 10, 1, types.NotRead) {
		t.Error("expected UpdateProgress to fail against a closed server")
	}
}

func TestClient_do_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("token expired"))
	})

	err := client.do(context.Background(), testSession, http.MethodGet, PathSaveUser, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusForbidden || statusErr.Body != "token expired" {
		t.Errorf("unexpected error: %v", statusErr)
	}
}

func TestClient_LogsRequestURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var logs bytes.Buffer
	log := logging.New("debug", true, &logs)
	hc := httpclient.New(&config.Config{RequestTimeout: 2 * time.Second}, log)
	client := NewClient(server.URL, "https://spoc.buaa.edu.cn", hc, log)

	if !client.SaveUser(context.Background(), testSession) {
		t.Fatal("expected SaveUser to succeed")
	}

	wantURL := server.URL + PathSaveUser + "?yhdm=2021000"
	found := false
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if entry["msg"] == "response received" {
			found = true
			if entry["url"] != wantURL {
				t.Errorf("url = %v, want %s", entry["url"], wantURL)
			}
		}
		if strings.Contains(line, "_zte_cid_=abc") {
			t.Errorf("cookie leaked into logs: %s", line)
		}
	}
	if !found {
		t.Errorf("no response log entry in:\n%s", logs.String())
	}
}
