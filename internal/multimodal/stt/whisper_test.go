package stt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voiceagent/internal/upstream"
)

func TestWhisperSTT_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transcribe", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "de", r.FormValue("language"))

		f, hdr, err := r.FormFile("audio")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "clip.webm", hdr.Filename)
		assert.Equal(t, "audio/webm", hdr.Header.Get("Content-Type"))
		data, _ := io.ReadAll(f)
		assert.Equal(t, "RIFFDATA", string(data))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"hello","language":"de"}`)
	}))
	defer srv.Close()

	w := NewWhisperSTT(WhisperSTTConfig{BaseURL: srv.URL + "/", Language: "de"})
	resp, err := w.Transcribe(context.Background(), TranscriptionRequest{
		Audio:       strings.NewReader("RIFFDATA"),
		Filename:    "clip.webm",
		ContentType: "audio/webm",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, "de", resp.Language)
}

func TestWhisperSTT_MissingText(t *testing.T) {
	for _, body := range []string{`{}`, `{"text":null}`, `{"text":""}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		}))

		resp, err := NewWhisperSTT(WhisperSTTConfig{BaseURL: srv.URL}).Transcribe(context.Background(), TranscriptionRequest{
			Audio: strings.NewReader("x"),
		})
		srv.Close()

		require.NoError(t, err, body)
		assert.Empty(t, resp.Text, body)
	}
}

func TestWhisperSTT_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewWhisperSTT(WhisperSTTConfig{BaseURL: srv.URL}).Transcribe(context.Background(), TranscriptionRequest{
		Audio: strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "model not loaded")
	assert.Equal(t, "status 503", upstream.Classify(err))
}

func TestWhisperSTT_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>oops</html>")
	}))
	defer srv.Close()

	_, err := NewWhisperSTT(WhisperSTTConfig{BaseURL: srv.URL}).Transcribe(context.Background(), TranscriptionRequest{
		Audio: strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestWhisperSTT_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewWhisperSTT(WhisperSTTConfig{BaseURL: url}).Transcribe(context.Background(), TranscriptionRequest{
		Audio: strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription request")
}

func TestNew_SelectsBackend(t *testing.T) {
	p, err := New(configFor("whisper"), 0)
	require.NoError(t, err)
	assert.Equal(t, "whisper", p.Name())

	p, err = New(configFor("openai"), 0)
	require.NoError(t, err)
	assert.Equal(t, "openai-whisper", p.Name())

	_, err = New(configFor("vosk"), 0)
	assert.Error(t, err)
}
