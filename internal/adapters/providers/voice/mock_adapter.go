package voice

import (
	"context"
	"encoding/base64"

	"github.com/montrealcare/care-router/internal/domain/providers"
)

// MockVoiceAdapter returns a fake base64 payload derived from the input text
type MockVoiceAdapter struct{}

// NewMockVoiceAdapter creates a new mock voice adapter
func NewMockVoiceAdapter() providers.VoiceSynthesizer {
	return &MockVoiceAdapter{}
}

// Synthesize encodes the text itself; no audio is produced
func (m *MockVoiceAdapter) Synthesize(ctx context.Context, text string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(text)), nil
}
