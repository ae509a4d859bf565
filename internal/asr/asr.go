// Package asr wraps the speech-to-text collaborator. The pipeline treats it
// as an opaque audio-in/text-out function.
package asr

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Whisper transcribes through the OpenAI audio API.
type Whisper struct {
	client oai.Client
	model  string
}

func NewWhisper(apiKey, model string, timeout time.Duration) *Whisper {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	return &Whisper{client: oai.NewClient(opts...), model: model}
}

func (w *Whisper) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio")
	}
	resp, err := w.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		Model: oai.AudioModel(w.model),
		File:  oai.File(bytes.NewReader(audio), "voice.m4a", "application/octet-stream"),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
