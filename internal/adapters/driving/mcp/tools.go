package mcp

import (
	"context"
	"errors"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

// errIndexUnavailable is returned by tools that need the index service.
var errIndexUnavailable = errors.New("document listing is not available")

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question about railway regulations"`
	K        int    `json:"k,omitempty" jsonschema:"number of passages to retrieve (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Status  string         `json:"status"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one citation.
type SourceOutput struct {
	File    string  `json:"file"`
	Locator string  `json:"locator"`
	ChunkID string  `json:"chunk_id"`
	Preview string  `json:"preview"`
	Score   float64 `json:"score"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar passages for"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput is a retrieved chunk with its full text.
type PassageOutput struct {
	ChunkID string  `json:"chunk_id"`
	File    string  `json:"file"`
	Locator string  `json:"locator"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is an indexed file with its chunk count.
type DocumentOutput struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed railway regulations, with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the passages most similar to a query without generating an answer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List indexed documents with their chunk counts",
	}, s.handleListDocuments)
}

// handleAsk handles the ask tool invocation.
// Non-answered statuses are returned as output, not as tool errors.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Answer(ctx, input.Question, domain.QueryOptions{K: input.K})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Status:  string(answer.Status),
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{
			File:    src.File,
			Locator: src.Locator,
			ChunkID: src.ChunkID,
			Preview: src.Preview,
			Score:   src.Score,
		}
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	hits, err := s.ports.Query.Retrieve(ctx, input.Query, input.K)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]PassageOutput, len(hits)),
		Count:   len(hits),
	}
	for i := range hits {
		c := hits[i].Chunk
		output.Results[i] = PassageOutput{
			ChunkID: c.ID,
			File:    c.Metadata.SourceFile,
			Locator: c.Metadata.Locator,
			Score:   domain.RoundScore(hits[i].Score),
			Text:    c.Text,
		}
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Index == nil {
		return nil, ListDocumentsOutput{}, errIndexUnavailable
	}

	counts, err := s.ports.Index.ListIndexedFiles(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	docs := documentList(counts)
	return nil, ListDocumentsOutput{Documents: docs, Count: len(docs)}, nil
}

// documentList converts per-file counts into a list sorted by filename.
func documentList(counts map[string]int) []DocumentOutput {
	docs := make([]DocumentOutput, 0, len(counts))
	for file, n := range counts {
		docs = append(docs, DocumentOutput{File: file, Chunks: n})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].File < docs[j].File })
	return docs
}
