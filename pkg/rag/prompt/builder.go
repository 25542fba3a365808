// Package prompt renders retrieved material into the chat messages sent to
// the generation model.
package prompt

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"resolution-rag-be/internal/constant"
	"resolution-rag-be/pkg/llm"
	"resolution-rag-be/pkg/store"
)

var (
	lineBreaks = regexp.MustCompile(`[\n\r\f]`)
	spaceRuns  = regexp.MustCompile(`\s{2,}`)
)

// Assistant identifies the persona named in the system prompt.
type Assistant struct {
	Name string
	Area string
}

// Builder assembles the message list for one generation turn.
type Builder struct {
	assistant Assistant
}

func NewBuilder(assistant Assistant) *Builder {
	return &Builder{assistant: assistant}
}

// Messages returns the system prompt for the last interaction followed by
// the conversation history, oldest first.
func (b *Builder) Messages(history []store.Interaction, useConsiderations bool) []llm.Message {
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]

	considerations := constant.NoConsiderationsAvailable
	if useConsiderations {
		considerations = Considerations(last.Considerations)
	}

	system := fmt.Sprintf(constant.SystemPromptTemplate,
		b.assistant.Name,
		b.assistant.Area,
		last.Query,
		Sources(last.Sources),
		Context(last.Context),
		considerations,
	)

	msgs := []llm.Message{{Role: constant.ChatMessageRoleSystem, Content: system}}
	return append(msgs, History(history)...)
}

// Sources renders "Documento: X, Página: Y, Ubicación: Z" entries separated
// by spaces, with percent-escapes decoded.
func Sources(sources []store.Source) string {
	if sources == nil {
		return constant.NoSourcesAvailable
	}
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("Documento: %s, Página: %s, Ubicación: %s",
			unescape(s.DocumentName), s.ResolvePage, unescape(s.FilePath))
	}
	return strings.Join(parts, " ")
}

// Context flattens line breaks and decodes percent-escapes.
func Context(context string) string {
	return unescape(strings.TrimSpace(strings.ReplaceAll(context, "\n", " ")))
}

type considerationView struct {
	Documento       string `json:"Documento"`
	Consideraciones string `json:"Consideraciones"`
	Copia           string `json:"A quien se envió copia"`
}

// Considerations renders the consideration descriptors as a JSON list.
func Considerations(items []store.Consideration) string {
	views := make([]considerationView, len(items))
	for i, c := range items {
		views[i] = considerationView{
			Documento:       c.DocumentName,
			Consideraciones: cleanText(strings.Join(c.Considerations, " ")),
			Copia:           c.Copia,
		}
	}
	data, err := json.Marshal(views)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// History turns interactions into alternating user/assistant messages.
// Empty queries and responses are skipped.
func History(interactions []store.Interaction) []llm.Message {
	var msgs []llm.Message
	for _, in := range interactions {
		if q := collapse(in.Query); q != "" {
			msgs = append(msgs, llm.Message{Role: constant.ChatMessageRoleUser, Content: q})
		}
		if r := collapse(in.FullResponse); r != "" {
			msgs = append(msgs, llm.Message{Role: constant.ChatMessageRoleAssistant, Content: r})
		}
	}
	return msgs
}

func collapse(text string) string {
	text = lineBreaks.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(text, " "))
}

func cleanText(text string) string {
	text = lineBreaks.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "|", ",")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(text, " "))
}

func unescape(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}
