package store

import (
	"strings"
	"time"
)

// Source points a reader at the page of a document a context item came from.
type Source struct {
	FilePath     string `json:"file_path"`
	DocumentName string `json:"document_name"`
	ResolvePage  string `json:"resolve_page"`
}

// Consideration carries the "Que," clauses and copy recipients of a source.
type Consideration struct {
	DocumentName   string   `json:"document_name"`
	Considerations []string `json:"considerations"`
	Copia          string   `json:"copia"`
}

// Sentiment classifies a feedback score.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

var negativeScores = map[string]struct{}{
	"👎": {}, "😞": {}, "🙁": {}, "negative": {}, "negativo": {},
}

var positiveScores = map[string]struct{}{
	"👍": {}, "😀": {}, "🙂": {}, "😊": {}, "positive": {}, "positivo": {},
}

// ParseSentiment maps a client feedback score onto a Sentiment.
func ParseSentiment(score string) Sentiment {
	s := strings.ToLower(strings.TrimSpace(score))
	if _, ok := negativeScores[s]; ok {
		return SentimentNegative
	}
	if _, ok := positiveScores[s]; ok {
		return SentimentPositive
	}
	return SentimentNeutral
}

// FeedbackOutcome is attached to an interaction once feedback is recorded.
type FeedbackOutcome struct {
	Sentiment  Sentiment `json:"sentiment"`
	Score      string    `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Interaction is one query turn of a session.
type Interaction struct {
	ID             string           `json:"interaction_uuid"`
	Query          string           `json:"query"`
	Context        string           `json:"context"`
	Sources        []Source         `json:"sources"`
	Considerations []Consideration  `json:"considerations"`
	SearchDuration time.Duration    `json:"search_documents_time"`
	FullResponse   string           `json:"full_response,omitempty"`
	Feedback       *FeedbackOutcome `json:"feedback,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Session is the server-side conversation state keyed by a client id.
type Session struct {
	ID                string        `json:"id"`
	LastInteractionAt time.Time     `json:"last_interaction_at"`
	Interactions      []Interaction `json:"interactions"`
}

// Clone returns a deep copy safe to hand out of the session registry.
func (s *Session) Clone() Session {
	c := Session{
		ID:                s.ID,
		LastInteractionAt: s.LastInteractionAt,
		Interactions:      make([]Interaction, len(s.Interactions)),
	}
	for i, in := range s.Interactions {
		c.Interactions[i] = in.Clone()
	}
	return c
}

func (in Interaction) Clone() Interaction {
	c := in
	c.Sources = append([]Source(nil), in.Sources...)
	c.Considerations = make([]Consideration, len(in.Considerations))
	for i, cons := range in.Considerations {
		cons.Considerations = append([]string(nil), cons.Considerations...)
		c.Considerations[i] = cons
	}
	if in.Feedback != nil {
		fb := *in.Feedback
		c.Feedback = &fb
	}
	return c
}
