package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"SERVER_HOST", "SERVER_PORT", "DEBUG", "FLASK_HOST", "FLASK_PORT", "FLASK_DEBUG", "CORS_ORIGINS", "UPSTREAM_TIMEOUT",
	"STT_BACKEND", "WHISPER_URL", "WHISPER_LANGUAGE", "OPENAI_API_KEY", "OPENAI_BASE_URL", "STT_OPENAI_MODEL",
	"GENERATION_BACKEND", "N8N_WEBHOOK_URL", "ANTHROPIC_API_KEY", "GENERATION_MODEL",
	"GENERATION_SYSTEM_PROMPT", "GENERATION_MAX_TOKENS",
	"KOKORO_URL", "KOKORO_MODEL", "KOKORO_VOICE",
	"SILENCE_THRESHOLD", "BARGE_IN_THRESHOLD", "SILENCE_DURATION", "SAMPLE_RATE",
	"SYNTHESIS_CACHE", "SYNTHESIS_CACHE_SIZE", "SYNTHESIS_CACHE_TTL", "RUNLOG_BACKEND",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "MIGRATIONS_PATH",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
}

// clearEnv blanks every key Load reads; t.Setenv restores the originals.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5001", cfg.Addr())
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, 120*time.Second, cfg.Server.UpstreamTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	assert.Equal(t, "whisper", cfg.STT.Backend)
	assert.Equal(t, "http://localhost:5050", cfg.STT.WhisperURL)
	assert.Equal(t, "en", cfg.STT.Language)

	assert.Equal(t, "webhook", cfg.Generation.Backend)
	assert.NotEmpty(t, cfg.Generation.WebhookURL)

	assert.Equal(t, "http://localhost:8880", cfg.TTS.KokoroURL)
	assert.Equal(t, "kokoro", cfg.TTS.Model)
	assert.Equal(t, "af_heart", cfg.TTS.Voice)

	assert.Equal(t, AudioConfig{
		SilenceThreshold: -40,
		BargeInThreshold: -30,
		SilenceDuration:  1000,
		SampleRate:       44100,
	}, cfg.Audio)

	assert.Empty(t, cfg.Cache.Backend)
	assert.Empty(t, cfg.RunLog.Backend)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DEBUG", "False")
	t.Setenv("WHISPER_URL", "http://whisper:5050/")
	t.Setenv("KOKORO_VOICE", "bf_emma")
	t.Setenv("SAMPLE_RATE", "16000")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, "http://whisper:5050", cfg.STT.WhisperURL)
	assert.Equal(t, "bf_emma", cfg.TTS.Voice)
	assert.Equal(t, 16000, cfg.Audio.SampleRate)
	assert.Equal(t, 5*time.Second, cfg.Server.UpstreamTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestFromEnv_LegacyServerKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLASK_HOST", "10.0.0.5")
	t.Setenv("FLASK_PORT", "5002")
	t.Setenv("FLASK_DEBUG", "False")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:5002", cfg.Addr())
	assert.False(t, cfg.Server.Debug)

	t.Setenv("SERVER_PORT", "6000")
	t.Setenv("DEBUG", "true")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:6000", cfg.Addr())
	assert.True(t, cfg.Server.Debug)

	t.Setenv("SERVER_PORT", "")
	t.Setenv("FLASK_PORT", "abc")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid FLASK_PORT")
}

func TestFromEnv_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("SILENCE_DURATION", "1s")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SERVER_PORT")
	assert.Contains(t, err.Error(), "invalid SILENCE_DURATION")
}

func TestAudioConfig_JSONKeys(t *testing.T) {
	data, err := json.Marshal(AudioConfig{SilenceThreshold: -40, BargeInThreshold: -30, SilenceDuration: 1000, SampleRate: 44100})
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]int{
		"SILENCE_THRESHOLD":  -40,
		"BARGE_IN_THRESHOLD": -30,
		"SILENCE_DURATION":   1000,
		"SAMPLE_RATE":        44100,
	}, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown stt backend", map[string]string{"STT_BACKEND": "vosk"}, "unknown STT_BACKEND"},
		{"anthropic without key", map[string]string{"GENERATION_BACKEND": "anthropic"}, "requires ANTHROPIC_API_KEY"},
		{"redis cache without addr", map[string]string{"SYNTHESIS_CACHE": "redis"}, "requires REDIS_ADDR"},
		{"postgres runlog without url", map[string]string{"RUNLOG_BACKEND": "postgres"}, "requires DATABASE_URL"},
		{"anthropic with key", map[string]string{"GENERATION_BACKEND": "anthropic", "ANTHROPIC_API_KEY": "k"}, ""},
		{"memory cache", map[string]string{"SYNTHESIS_CACHE": "memory"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := FromEnv()
			require.NoError(t, err)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KOKORO_MODEL=from-file\nKOKORO_VOICE=file-voice\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv only fills keys that are unset, so drop the blanks clearEnv left.
	os.Unsetenv("KOKORO_MODEL")
	os.Unsetenv("KOKORO_VOICE")
	t.Setenv("KOKORO_VOICE", "env-voice")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.TTS.Model)
	assert.Equal(t, "env-voice", cfg.TTS.Voice)
}
