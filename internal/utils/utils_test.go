package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets content-type and status", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, []string{"interior"})

		if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json; charset=utf-8", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("encodes empty slices as arrays", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, []string{})

		if got := w.Body.String(); got != "[]\n" {
			t.Errorf("body = %q; want []", got)
		}
	})
}

func TestWriteJSONWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONWithHeaders(w, http.StatusOK, map[string]float64{"temperature": 21.5}, map[string]string{
		"X-Meteo-Period": "7d",
		"X-Meteo-Points": "1",
	})

	if got := w.Header().Get("X-Meteo-Period"); got != "7d" {
		t.Errorf("X-Meteo-Period = %q; want 7d", got)
	}
	if got := w.Header().Get("X-Meteo-Points"); got != "1" {
		t.Errorf("X-Meteo-Points = %q; want 1", got)
	}
	var body map[string]float64
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if body["temperature"] != 21.5 {
		t.Errorf("temperature = %v; want 21.5", body["temperature"])
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	status := http.StatusBadRequest
	msg := `invalid period "90d"`
	WriteError(w, status, msg)

	if w.Code != status {
		t.Errorf("Code = %d; want %d", w.Code, status)
	}

	var got ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if got.Error != http.StatusText(status) {
		t.Errorf("error = %q; want %q", got.Error, http.StatusText(status))
	}
	if got.Message != msg {
		t.Errorf("message = %q; want %q", got.Message, msg)
	}
}
