package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	syntaxErr := json.Unmarshal([]byte("{nope"), new(map[string]string))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"status error", &StatusError{Service: "webhook", StatusCode: 500, Body: `user_input="secret"`}, "status 500"},
		{"wrapped status error", fmt.Errorf("call: %w", &StatusError{StatusCode: 404}), "status 404"},
		{"openai api error", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, "status 429"},
		{"openai request error", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, "status 502"},
		{"deadline", fmt.Errorf("transcribe: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"transport", &url.Error{Op: "Post", URL: "http://whisper/transcribe", Err: errors.New("connection refused")}, "transport"},
		{"bad json", fmt.Errorf("parse response: %w", syntaxErr), "invalid response"},
		{"other", errors.New("hello my card is 4111"), "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestStatusError_KeepsBodyInMessage(t *testing.T) {
	err := &StatusError{Service: "transcription", StatusCode: 503, Body: "model loading"}
	assert.Equal(t, "transcription failed (status 503): model loading", err.Error())
}
