package gen

import (
	"context"
	"errors"
	"io"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI rejects TTS inputs above 4096 characters.
const maxSpeechInputLen = 4096

// Speech renders answer text to MP3 audio.
type Speech struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

func NewSpeech(apiKey, model, voice string) (*Speech, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is not set")
	}
	return &Speech{
		client: openai.NewClient(apiKey),
		model:  openai.SpeechModel(model),
		voice:  openai.SpeechVoice(voice),
	}, nil
}

// Synthesize returns a stream of MP3 bytes for text. The caller owns the
// returned reader.
func (s *Speech) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if len(text) > maxSpeechInputLen {
		cut := maxSpeechInputLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
