package domain

import "math"

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// AnswerStatus describes how a question was resolved.
type AnswerStatus string

// Answer statuses. Only AnswerStatusAnswered carries sources.
const (
	// AnswerStatusAnswered means the synthesizer produced an answer.
	AnswerStatusAnswered AnswerStatus = "answered"

	// AnswerStatusNoQuery means the question was empty.
	AnswerStatusNoQuery AnswerStatus = "no_query"

	// AnswerStatusNoDocuments means the index holds no chunks.
	AnswerStatusNoDocuments AnswerStatus = "no_documents"

	// AnswerStatusNoRelevant means retrieval returned nothing.
	AnswerStatusNoRelevant AnswerStatus = "no_relevant_documents"

	// AnswerStatusProviderError means an embedder or synthesizer call failed.
	AnswerStatusProviderError AnswerStatus = "provider_error"
)

// User-facing messages for the non-answered statuses.
const (
	MessageNoQuery     = "Please enter a question."
	MessageNoDocuments = "No documents have been indexed yet. Add documents to the corpus and index them first."
	MessageNoRelevant  = "No relevant documents were found for this question."
	MessageRetryable   = "The language service is temporarily unavailable. Please try again in a moment."
	MessageProvider    = "The question could not be answered because the language service returned an error."
)

// Answer is the result of a question. It is produced fresh per query
// and never persisted.
type Answer struct {
	// Text is the synthesized answer or a user-safe status message.
	Text string `json:"answer"`

	// Status tells the caller which outcome occurred.
	Status AnswerStatus `json:"status"`

	// Sources are the retrieved chunks in ranked order.
	Sources []Source `json:"sources"`

	// Diagnostics is only set in debug mode.
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Source is a citation for one retrieved chunk.
type Source struct {
	File    string  `json:"file"`
	Locator string  `json:"locator"`
	ChunkID string  `json:"chunk_id"`
	Preview string  `json:"preview"`
	Score   float64 `json:"score"`
}

// Diagnostics carries debug counters for a query.
type Diagnostics struct {
	DocumentCount int    `json:"document_count"`
	ChunkCount    int    `json:"chunk_count"`
	Query         string `json:"query"`
	RefinedQuery  string `json:"refined_query,omitempty"`
	Retrieved     int    `json:"retrieved"`
	Prompt        string `json:"prompt,omitempty"`
}

// QueryOptions configures a single question.
type QueryOptions struct {
	// K is the number of chunks to retrieve (default DefaultTopK).
	K int

	// Debug attaches Diagnostics to the answer.
	Debug bool

	// History is the prior conversation, used to refine the question.
	History []Turn
}

// Turn is one message of a conversation.
type Turn struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// NewSource builds a citation from a scored chunk.
func NewSource(sc ScoredChunk) Source {
	return Source{
		File:    sc.Chunk.Metadata.SourceFile,
		Locator: sc.Chunk.Metadata.Locator,
		ChunkID: sc.Chunk.ID,
		Preview: sc.Chunk.Metadata.Preview,
		Score:   RoundScore(sc.Score),
	}
}

// RoundScore rounds a score to 4 decimal places.
func RoundScore(score float64) float64 {
	return math.Round(score*10000) / 10000
}

// StatusAnswer builds a source-less answer for a non-answered status.
func StatusAnswer(status AnswerStatus, message string) *Answer {
	return &Answer{
		Text:    message,
		Status:  status,
		Sources: []Source{},
	}
}
