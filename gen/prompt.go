package gen

import (
	"strings"
	"text/template"
)

const answerSystemPrompt = `You are a patient personal tutor. Answer the student's question clearly and ` +
	`accurately, adapting depth to the material provided. Respond with a single JSON object and nothing else:

{"answer": "<markdown answer>", "references": [{"title": "", "source": "", "url": ""}]}

Use an empty references array when you have none. Do not wrap the JSON in a code fence.`

const lessonSystemPrompt = `You are a curriculum author. Produce one self-contained lesson as a single ` +
	`JSON object and nothing else:

{"title": "", "summary": "", "content": [{"title": "", "content": "", "order": 0}], ` +
	`"exercises": [{"question": "", "options": [""], "correct_answer": "", "explanation": ""}], ` +
	`"resources": [{"title": "", "url": "", "type": "", "description": ""}], "tags": [""]}

Section content is markdown. Do not wrap the JSON in a code fence.`

var questionTmpl = template.Must(template.New("question").Parse(
	`Question: {{.Question}}
{{- if .Context}}

Additional context from the student:
{{.Context}}
{{- end}}
{{- if .Lesson}}

The student is currently working through the lesson "{{.Lesson.Title}}" ({{.Lesson.Subject}}, {{.Lesson.Difficulty}}).
{{- range .Lesson.Content}}

--- {{.Title}} ---
{{.Content}}
{{- end}}
{{- end}}
`))

var lessonTmpl = template.Must(template.New("lesson").Parse(
	`Draft a {{.Difficulty}} lesson on "{{.Topic}}" for the subject "{{.Subject}}".
The lesson should take about {{.DurationMinutes}} minutes to complete.
{{- if .AdditionalInstructions}}

Additional instructions:
{{.AdditionalInstructions}}
{{- end}}
`))

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
