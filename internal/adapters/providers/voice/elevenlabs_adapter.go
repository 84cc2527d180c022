package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/montrealcare/care-router/internal/domain/providers"
	"github.com/montrealcare/care-router/pkg/config"
	"github.com/montrealcare/care-router/pkg/retry"
)

const (
	defaultVoiceHTTPTimeout = 30 * time.Second
	defaultModelID          = "eleven_multilingual_v2"
)

// ElevenLabsAdapter implements VoiceSynthesizer via the ElevenLabs
// text-to-speech API.
type ElevenLabsAdapter struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config
}

// NewElevenLabsAdapter creates a new ElevenLabs voice adapter
func NewElevenLabsAdapter(cfg *config.VoiceConfig) (*ElevenLabsAdapter, error) {
	if cfg.APIKey == "" || cfg.VoiceID == "" {
		return nil, fmt.Errorf("ELEVEN_API_KEY and ELEVEN_VOICE_ID must be set")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}

	return &ElevenLabsAdapter{
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultVoiceHTTPTimeout,
		},
		retryCfg: retry.DefaultConfig(),
	}, nil
}

type synthesisRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize converts text to MP3 audio and returns it base64-encoded.
// Transient upstream failures are retried with backoff; the recommendation
// core itself never retries.
func (a *ElevenLabsAdapter) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text is required")
	}

	body, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: defaultModelID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	var audio []byte
	err = a.retryCfg.Do(ctx, func() error {
		audio, err = a.doSynthesisRequest(ctx, body)
		return err
	})
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(audio), nil
}

func (a *ElevenLabsAdapter) doSynthesisRequest(ctx context.Context, body []byte) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/v1/text-to-speech/%s", a.baseURL, a.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis returned empty audio")
	}

	return audio, nil
}

var _ providers.VoiceSynthesizer = (*ElevenLabsAdapter)(nil)
