// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Segmenter / SegmenterRegistry: Split raw documents into units
//   - PostProcessorPipeline: Chunking and metadata enrichment
//   - VectorIndex: Persisted chunk storage with similarity search
//   - EmbeddingService: Converts text into vectors
//   - LLMService: Synthesizes answers from prompts
//   - CorpusStore: The corpus directory and its sidecar metadata
//   - SettingsStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, segmenter, or post-processor package
package driven
