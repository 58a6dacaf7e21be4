// Package driving declares what the CLI, the MCP server and the chat UI may
// ask of the core: answering questions, maintaining the index and scoring
// answers against expectations. RAGEngine and EvaluationService in
// internal/core/services implement them.
package driving
