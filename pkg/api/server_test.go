package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func uploadRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthCheck(t *testing.T) {
	r := NewRouter()

	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("GET %s status = %d, want %d", path, w.Code, http.StatusOK)
			}

			var resp map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp["status"] != "healthy" {
				t.Errorf("status = %q, want %q", resp["status"], "healthy")
			}
		})
	}
}

func TestListNotes(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Notes []struct {
			Token string `json:"token"`
			Pitch int    `json:"pitch"`
		} `json:"notes"`
		OctaveStep int `json:"octaveStep"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if len(resp.Notes) != 17 {
		t.Errorf("notes = %d, want 17", len(resp.Notes))
	}
	if resp.Notes[0].Token != "a" || resp.Notes[0].Pitch != 33 {
		t.Errorf("first note = %+v, want a/33", resp.Notes[0])
	}
	if resp.OctaveStep != 24 {
		t.Errorf("octaveStep = %d, want 24", resp.OctaveStep)
	}
}

func TestConvertTuneToDP(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/tune2dp", "beep.txt", []byte("; beep\nc4\n")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	expected := append([]byte{0x00, 0x00, 0x2D, 0x00}, bytes.Repeat([]byte{0x27}, 45)...)
	if !bytes.Equal(w.Body.Bytes(), expected) {
		t.Errorf("body = % X, want % X", w.Body.Bytes(), expected)
	}

	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=beep.lmp" {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestConvertBadTune(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/tune2dp", "bad.txt", []byte("c4/z4")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestConvertBadLump(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/dp2midi", "bad.lmp", []byte{0x01, 0x02, 0x03, 0x04}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestConvertNoFile(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/convert/tune2midi", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestConvertTuneToMIDI(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/tune2midi", "tune.txt", []byte("c4/e4/g4")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/midi" {
		t.Errorf("Content-Type = %q, want audio/midi", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("MThd")) {
		t.Error("body is not a MIDI file")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/convert/tune2dp", nil))

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

// paddedTune returns a tune of exactly size bytes: comment lines followed
// by the given segments
func paddedTune(size int, segments string) []byte {
	tail := "\n" + segments + "\n"
	data := bytes.Repeat([]byte(";"), size-len(tail))
	return append(data, tail...)
}

func TestConvertUploadTooLarge(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/tune2dp", "big.txt", paddedTune(maxUploadSize+1, "c4/c16")))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestConvertUploadAtLimit(t *testing.T) {
	r := NewRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/tune2dp", "big.txt", paddedTune(maxUploadSize, "c4/c16")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	// c4 is 45 ticks and c16 is 11
	expected := append([]byte{0x00, 0x00, 0x38, 0x00}, bytes.Repeat([]byte{0x27}, 56)...)
	if !bytes.Equal(w.Body.Bytes(), expected) {
		t.Errorf("body length = %d, want %d", w.Body.Len(), len(expected))
	}
}
