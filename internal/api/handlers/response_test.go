package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteArray_MarshalJSON(t *testing.T) {
	for _, tc := range []struct {
		in   byteArray
		want string
	}{
		{nil, `[]`},
		{byteArray{}, `[]`},
		{byteArray{1, 2, 3}, `[1,2,3]`},
		{byteArray{0, 127, 255}, `[0,127,255]`},
	} {
		got, err := json.Marshal(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(got))
	}
}

func TestProcessAudioResponse_Shape(t *testing.T) {
	data, err := json.Marshal(processAudioResponse{AudioData: []byte{9}, Transcription: "a", LLMResponse: "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"audio_data":[9],"transcription":"a","llm_response":"b"}`, string(data))
}
