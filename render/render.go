// Package render converts model-produced markdown into sanitized HTML.
package render

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var policy = bluemonday.UGCPolicy()

// AnswerHTML renders markdown to HTML safe to serve to browsers. The model
// output is untrusted input; script and event-handler payloads are stripped.
func AnswerHTML(markdown string) string {
	html := blackfriday.Run([]byte(markdown))
	return string(policy.SanitizeBytes(html))
}
