package tts

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/nikhilbhutani/voiceagent/internal/cache"
)

// voiceIdentity is implemented by backends whose output depends on a fixed
// model and voice.
type voiceIdentity interface {
	Model() string
	Voice() string
}

// CachedTTS serves repeated (model, voice, input) requests from an AudioCache.
// Cache failures are logged and fall through to the wrapped provider.
type CachedTTS struct {
	next  TTSProvider
	cache cache.AudioCache
}

// NewCachedTTS wraps next so that results are stored in c.
func NewCachedTTS(next TTSProvider, c cache.AudioCache) *CachedTTS {
	return &CachedTTS{next: next, cache: c}
}

func (c *CachedTTS) Name() string { return c.next.Name() + "+" + c.cache.Name() }

func (c *CachedTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	key := c.key(req)

	if entry, ok, err := c.cache.Get(ctx, key); err != nil {
		slog.Warn("synthesis cache read failed", "cache", c.cache.Name(), "error", err)
	} else if ok {
		if res, ok := decodeEntry(entry); ok {
			slog.Debug("synthesis cache hit", "cache", c.cache.Name())
			return res, nil
		}
		slog.Warn("synthesis cache entry unreadable", "cache", c.cache.Name())
	}

	result, err := c.next.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, encodeEntry(result)); err != nil {
		slog.Warn("synthesis cache write failed", "cache", c.cache.Name(), "error", err)
	}
	return result, nil
}

func (c *CachedTTS) key(req SynthesisRequest) string {
	var model, voice string
	if id, ok := c.next.(voiceIdentity); ok {
		model, voice = id.Model(), id.Voice()
	}
	sum := sha256.Sum256([]byte(model + "\x00" + voice + "\x00" + req.Input))
	return hex.EncodeToString(sum[:])
}

// Entries are "<content type>\x00<audio>". Content types never contain NUL.
func encodeEntry(res *SynthesisResult) []byte {
	entry := make([]byte, 0, len(res.ContentType)+1+len(res.Audio))
	entry = append(entry, res.ContentType...)
	entry = append(entry, 0)
	return append(entry, res.Audio...)
}

func decodeEntry(entry []byte) (*SynthesisResult, bool) {
	i := bytes.IndexByte(entry, 0)
	if i < 0 {
		return nil, false
	}
	contentType := string(entry[:i])
	if contentType == "" {
		contentType = defaultContentType
	}
	return &SynthesisResult{Audio: entry[i+1:], ContentType: contentType}, true
}
