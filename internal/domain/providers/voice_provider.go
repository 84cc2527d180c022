package providers

import (
	"context"
)

// VoiceSynthesizer defines the interface for the text-to-speech collaborator
type VoiceSynthesizer interface {
	// Synthesize converts text to spoken audio, returned base64-encoded
	Synthesize(ctx context.Context, text string) (string, error)
}
