package backend

import (
	"bytes"
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	speechTimeout = 10 * time.Second
	speechURL     = "https://api.groq.com/openai/v1/audio/transcriptions"
	speechModel   = "whisper-large-v3"
)

// GroqTranscriber implements Transcriber via Groq's hosted Whisper.
type GroqTranscriber struct {
	http   *resty.Client
	apiKey string
}

// NewGroqTranscriber creates a transcriber client.
func NewGroqTranscriber(apiKey string) *GroqTranscriber {
	return &GroqTranscriber{
		http:   resty.New().SetTimeout(speechTimeout),
		apiKey: apiKey,
	}
}

// Transcribe converts the audio bytes to text. Failures are logged and
// swallowed: the caller gets an empty string and carries on without
// the transcription.
func (t *GroqTranscriber) Transcribe(ctx context.Context, audio []byte) string {
	if t.apiKey == "" || len(audio) == 0 {
		return ""
	}

	var body struct {
		Text string `json:"text"`
	}
	resp, err := t.http.R().
		SetContext(ctx).
		SetAuthToken(t.apiKey).
		SetFileReader("file", "voice.ogg", bytes.NewReader(audio)).
		SetFormData(map[string]string{"model": speechModel}).
		SetResult(&body).
		Post(speechURL)
	if err != nil {
		log.Warn().Err(err).Msg("transcription failed")
		return ""
	}
	if resp.IsError() {
		log.Warn().Int("status", resp.StatusCode()).Msg("transcription rejected")
		return ""
	}
	return body.Text
}
