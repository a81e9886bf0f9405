package render

import (
	"strings"

	"github.com/diogo/localchat/internal/models"
)

// Markdown renders markdown content for terminal display
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders with default options at a specific width
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// Transcript projects a message list into terminal text. User content is
// shown verbatim under its role label; assistant content goes through the
// markdown renderer. The projection is stateless, so re-rendering after
// every streamed fragment is safe.
func Transcript(messages []models.Message, opts Options) string {
	var b strings.Builder

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleAssistant:
			b.WriteString("Assistant:\n")
			rendered, err := Markdown(msg.Content, opts)
			if err != nil {
				rendered = msg.Content + "\n"
			}
			b.WriteString(rendered)
		case models.RoleUser:
			b.WriteString("You:\n")
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		default:
			// system entries are prompt context, not conversation
			continue
		}
	}

	return b.String()
}
