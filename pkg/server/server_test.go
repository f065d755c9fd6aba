package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/cardcsv/pkg/config"
)

const sampleCards = `[{"name": "Wind Drake", "cmc": 3, "colors": ["Blue"], "subtypes": ["Drake"], "power": "2", "toughness": "2", "text": "Flying (This creature can't be blocked except by creatures with flying or reach.)"}]`

func newTestServer() *Server {
	return New(config.Default(), log.New(&bytes.Buffer{}))
}

func TestConvertRawBody(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/convert?clean_reminder_text=true", strings.NewReader(sampleCards))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	want := "name,cmc,colors,subtypes,power,toughness,text\n\"wind drake\",3,\"blue\",\"drake\",2,2,\"flying \"\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("unexpected content type %q", ct)
	}

	// the converted document stays available for download
	req = httptest.NewRequest(http.MethodGet, "/api/files/upload.csv", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != want {
		t.Errorf("download failed: %d %q", rec.Code, rec.Body.String())
	}
}

func TestConvertMultipart(t *testing.T) {
	srv := newTestServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("cards", "drakes.ndjson")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	fw.Write([]byte(`{"name": "Wind Drake", "cmc": 3, "text": "Flying"}` + "\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/convert?profile=stats-text&keywords_only=1", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	want := "name,cmc,power,toughness,text\n\"wind drake\",3,-1,-1,\"flying\"\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "drakes.csv") {
		t.Errorf("unexpected content disposition %q", cd)
	}
}

func TestConvertErrors(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		target string
		body   string
		status int
	}{
		{http.MethodGet, "/api/convert", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/convert", `{"not": "a list"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/convert?profile=unknown", sampleCards, http.StatusBadRequest},
		{http.MethodPost, "/api/convert?keywords_only=maybe", sampleCards, http.StatusBadRequest},
		{http.MethodPost, "/api/convert", `[{"name": {"first": "x"}}]`, http.StatusUnprocessableEntity},
		{http.MethodGet, "/api/files/missing.csv", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s %s: expected %d, got %d (%s)", tt.method, tt.target, tt.status, rec.Code, rec.Body.String())
			continue
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["status"] != "error" {
			t.Errorf("%s %s: expected json error body, got %q", tt.method, tt.target, rec.Body.String())
			continue
		}
		if resp["message"] == "" {
			t.Errorf("%s %s: expected a message in %q", tt.method, tt.target, rec.Body.String())
		}
	}
}

func TestProfiles(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Profiles []struct {
			Name    string   `json:"name"`
			Columns []string `json:"columns"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	found := false
	for _, p := range resp.Profiles {
		if p.Name == "default" && len(p.Columns) == 7 {
			found = true
		}
	}
	if !found {
		t.Errorf("default profile missing from %s", rec.Body.String())
	}
}
