package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerHTML(t *testing.T) {
	tests := []struct {
		name        string
		markdown    string
		contains    []string
		notContains []string
	}{
		{
			name:     "emphasis and code",
			markdown: "The *chain rule* applies: `f(g(x))`",
			contains: []string{"<em>chain rule</em>", "<code>f(g(x))</code>"},
		},
		{
			name:     "lists",
			markdown: "Steps:\n\n1. derive outer\n2. derive inner",
			contains: []string{"<ol>", "<li>derive outer</li>"},
		},
		{
			name:        "script stripped",
			markdown:    `hello <script>alert("x")</script> world`,
			contains:    []string{"hello", "world"},
			notContains: []string{"<script>", "alert"},
		},
		{
			name:        "event handlers stripped",
			markdown:    `<a href="https://example.com" onclick="steal()">link</a>`,
			contains:    []string{`href="https://example.com"`},
			notContains: []string{"onclick", "steal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnswerHTML(tt.markdown)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}
