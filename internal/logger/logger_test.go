package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogErrorFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", &buf)

	LogError(log, "summary", "CloseDay", "insert daily summary", "2026-10-19", errors.New("duplicate key"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["module"] != "summary" || entry["funcName"] != "CloseDay" || entry["data"] != "2026-10-19" {
		t.Fatalf("unexpected fields %v", entry)
	}
	if entry["msg"] != "duplicate key" || entry["level"] != "error" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("verbose", &buf)
	if log.GetLevel().String() != "info" {
		t.Fatalf("expected info, got %s", log.GetLevel())
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", &buf)
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["status"] != float64(http.StatusTeapot) || entry["path"] != "/api/ping" {
		t.Fatalf("unexpected entry %v", entry)
	}
}
