// Package gen produces tutor answers and lesson drafts with Gemini. The
// model is instructed to reply with a bare JSON document; responses are
// fence-stripped and unmarshaled before anything touches the store.
package gen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/klipach/tutorguru/store"
)

// Answers deliberately run tighter than the configured lesson defaults.
const (
	answerTemperature = 0.5
	answerMaxTokens   = 2000
)

type Params struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

type Generator struct {
	llm llms.Model
}

func New(ctx context.Context, p Params) (*Generator, error) {
	if p.APIKey == "" {
		return nil, errors.New("gemini API key is not set")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(p.APIKey),
		googleai.WithDefaultModel(p.Model),
		googleai.WithDefaultMaxTokens(p.MaxTokens),
		googleai.WithDefaultTemperature(p.Temperature),
	)
	if err != nil {
		return nil, err
	}
	return &Generator{llm: llm}, nil
}

// AnswerQuery is everything the tutor prompt can draw on.
type AnswerQuery struct {
	Question string
	Context  string
	Lesson   *store.LessonRecord
}

type Answer struct {
	Answer     string
	References []store.Reference
}

func (g *Generator) Answer(ctx context.Context, q AnswerQuery) (*Answer, error) {
	user, err := renderPrompt(questionTmpl, q)
	if err != nil {
		return nil, err
	}

	resp, err := g.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, answerSystemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithMaxTokens(answerMaxTokens),
		llms.WithTemperature(answerTemperature),
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty model response")
	}
	return parseAnswer(resp.Choices[0].Content)
}

func parseAnswer(raw string) (*Answer, error) {
	payload := struct {
		Answer     string            `json:"answer"`
		References []store.Reference `json:"references"`
	}{}
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("malformed model response: %w", err)
	}
	if payload.Answer == "" {
		return nil, errors.New("model response has no answer")
	}

	refs := []store.Reference{}
	for _, r := range payload.References {
		if r.Title == "" && r.URL == "" {
			continue
		}
		refs = append(refs, r)
	}
	return &Answer{Answer: payload.Answer, References: refs}, nil
}

// LessonSpec describes the lesson to draft.
type LessonSpec struct {
	Subject                string
	Topic                  string
	Difficulty             string
	DurationMinutes        int
	AdditionalInstructions string
}

type LessonDraft struct {
	Title     string                 `json:"title"`
	Summary   string                 `json:"summary"`
	Content   []store.ContentSection `json:"content"`
	Exercises []store.Exercise       `json:"exercises"`
	Resources []store.Resource       `json:"resources"`
	Tags      []string               `json:"tags"`
}

// Lesson drafts a full lesson using the configured model defaults.
func (g *Generator) Lesson(ctx context.Context, spec LessonSpec) (*LessonDraft, error) {
	user, err := renderPrompt(lessonTmpl, spec)
	if err != nil {
		return nil, err
	}

	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, lessonSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty model response")
	}
	return parseLesson(resp.Choices[0].Content)
}

func parseLesson(raw string) (*LessonDraft, error) {
	draft := LessonDraft{}
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &draft); err != nil {
		return nil, fmt.Errorf("malformed model response: %w", err)
	}
	if draft.Title == "" || len(draft.Content) == 0 {
		return nil, errors.New("model response misses title or content")
	}
	return &draft, nil
}
