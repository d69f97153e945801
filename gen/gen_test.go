package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipach/tutorguru/store"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *Answer
		wantErr bool
	}{
		{
			name: "plain answer with references",
			raw:  `{"answer":"Use the chain rule.","references":[{"title":"Calculus","source":"book","url":"https://example.com"}]}`,
			want: &Answer{
				Answer: "Use the chain rule.",
				References: []store.Reference{
					{Title: "Calculus", Source: "book", URL: "https://example.com"},
				},
			},
		},
		{
			name: "fenced answer",
			raw:  "```json\n{\"answer\":\"42\",\"references\":[]}\n```",
			want: &Answer{Answer: "42", References: []store.Reference{}},
		},
		{
			name: "missing references key",
			raw:  `{"answer":"42"}`,
			want: &Answer{Answer: "42", References: []store.Reference{}},
		},
		{
			name: "empty references dropped",
			raw:  `{"answer":"42","references":[{"title":"","source":"","url":""},{"title":"kept","source":"","url":""}]}`,
			want: &Answer{Answer: "42", References: []store.Reference{{Title: "kept"}}},
		},
		{
			name:    "empty answer",
			raw:     `{"answer":"","references":[]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "sorry, I cannot help with that",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswer(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLesson(t *testing.T) {
	raw := "```json\n" + `{
		"title": "Fractions 101",
		"summary": "Adding and comparing fractions.",
		"content": [{"title": "Basics", "content": "A fraction is...", "order": 0}],
		"exercises": [{"question": "1/2 + 1/4 = ?", "correct_answer": "3/4", "explanation": "common denominator"}],
		"resources": [{"title": "Khan Academy", "url": "https://khanacademy.org", "type": "web"}],
		"tags": ["math", "fractions"]
	}` + "\n```"

	draft, err := parseLesson(raw)
	require.NoError(t, err)
	assert.Equal(t, "Fractions 101", draft.Title)
	assert.Len(t, draft.Content, 1)
	assert.Equal(t, "Basics", draft.Content[0].Title)
	assert.Len(t, draft.Exercises, 1)
	assert.Equal(t, "3/4", draft.Exercises[0].CorrectAnswer)
	assert.Equal(t, []string{"math", "fractions"}, draft.Tags)

	_, err = parseLesson(`{"title":"no content"}`)
	require.Error(t, err)
}

func TestQuestionPrompt(t *testing.T) {
	tests := []struct {
		name        string
		query       AnswerQuery
		contains    []string
		notContains []string
	}{
		{
			name:        "bare question",
			query:       AnswerQuery{Question: "What is photosynthesis?"},
			contains:    []string{"Question: What is photosynthesis?"},
			notContains: []string{"Additional context", "working through the lesson"},
		},
		{
			name: "with context",
			query: AnswerQuery{
				Question: "Why?",
				Context:  "We covered light reactions yesterday.",
			},
			contains: []string{"Additional context", "light reactions"},
		},
		{
			name: "with lesson",
			query: AnswerQuery{
				Question: "Why?",
				Lesson: &store.LessonRecord{
					Title:      "Photosynthesis",
					Subject:    "biology",
					Difficulty: "beginner",
					Content: []store.ContentSection{
						{Title: "Light reactions", Content: "Chlorophyll absorbs light."},
					},
				},
			},
			contains: []string{
				`working through the lesson "Photosynthesis"`,
				"--- Light reactions ---",
				"Chlorophyll absorbs light.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderPrompt(questionTmpl, tt.query)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestLessonPrompt(t *testing.T) {
	got, err := renderPrompt(lessonTmpl, LessonSpec{
		Subject:                "math",
		Topic:                  "fractions",
		Difficulty:             "beginner",
		DurationMinutes:        30,
		AdditionalInstructions: "use pizza examples",
	})
	require.NoError(t, err)
	assert.Contains(t, got, `beginner lesson on "fractions"`)
	assert.Contains(t, got, "about 30 minutes")
	assert.Contains(t, got, "use pizza examples")

	got, err = renderPrompt(lessonTmpl, LessonSpec{Subject: "math", Topic: "fractions", Difficulty: "beginner", DurationMinutes: 30})
	require.NoError(t, err)
	assert.False(t, strings.Contains(got, "Additional instructions"))
}
