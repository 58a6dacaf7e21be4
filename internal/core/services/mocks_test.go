package services

import (
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/adapters/driven/corpus/filesystem"
	"github.com/custodia-labs/railkm/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
	"github.com/custodia-labs/railkm/internal/postprocessors"
	"github.com/custodia-labs/railkm/internal/segmenters"
	"github.com/custodia-labs/railkm/internal/segmenters/plaintext"
)

// ==================== Embedder ====================

const bagDimensions = 128

// bagEmbedder hashes lower-cased words into a fixed number of buckets, so
// texts sharing words are close under cosine similarity.
type bagEmbedder struct {
	mu         sync.Mutex
	calls      int
	batchCalls int
	err        error
}

func (b *bagEmbedder) vector(text string) []float32 {
	v := make([]float32, bagDimensions)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:?!()\"'")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%bagDimensions]++
	}
	// Keep vectors non-zero for empty input.
	v[0] += 0.01
	return v
}

func (b *bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.vector(text), nil
}

func (b *bagEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batchCalls++
	if b.err != nil {
		return nil, b.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = b.vector(t)
	}
	return out, nil
}

func (b *bagEmbedder) Dimensions() int              { return bagDimensions }
func (b *bagEmbedder) ModelName() string            { return "bag-of-words" }
func (b *bagEmbedder) Ping(_ context.Context) error { return nil }
func (b *bagEmbedder) Close() error                 { return nil }

func (b *bagEmbedder) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *bagEmbedder) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls + b.batchCalls
}

// ==================== LLM ====================

// mockLLM records prompts and returns scripted replies.
type mockLLM struct {
	mu sync.Mutex

	reply     string
	err       error
	chatReply string
	chatErr   error

	prompts  []string
	chats    [][]driven.ChatMessage
	lastOpts driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats = append(m.chats, messages)
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.chatReply, nil
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) generateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLM) chatCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chats)
}

// ==================== Prompt store ====================

type mockPromptStore map[string]string

func (s mockPromptStore) Load(name string) (string, error) {
	p, ok := s[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

// ==================== Engine fixture ====================

type testEngine struct {
	*RAGEngine
	dir      string
	corpus   *filesystem.Store
	index    *memory.Index
	embedder *bagEmbedder
	llm      *mockLLM
}

// newTestEngine wires the engine to an in-memory index and a corpus in a
// temporary directory populated with files.
func newTestEngine(t *testing.T, files map[string]string) *testEngine {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		writeFile(t, dir, name, content)
	}

	corpus := filesystem.New(dir)
	pipeline, err := postprocessors.NewDefaultPipeline(domain.ChunkingSettings{ChunkSize: 200, Overlap: 20}, corpus)
	require.NoError(t, err)

	index := memory.NewIndex()
	embedder := &bagEmbedder{}
	llm := &mockLLM{reply: "Kecepatan maksimum adalah 60 km/jam.", chatReply: "refined question"}

	engine := NewRAGEngine(
		corpus,
		segmenters.NewRegistry(plaintext.New()),
		pipeline,
		index,
		embedder,
		llm,
		EngineConfig{TopK: 3, Refine: true},
	)

	return &testEngine{
		RAGEngine: engine,
		dir:       dir,
		corpus:    corpus,
		index:     index,
		embedder:  embedder,
		llm:       llm,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// railwayCorpus is a small corpus with two clearly distinct topics.
var railwayCorpus = map[string]string{
	"speed.txt":    "Kecepatan maksimum kereta api pada lintas cabang adalah 60 km/jam sesuai peraturan menteri.",
	"signal.txt":   "Sinyal masuk stasiun harus dipasang paling sedikit 500 meter sebelum wesel pertama.",
	"notes.md":     "not a supported file",
	".hidden.txt":  "hidden files are ignored",
	"sub/crew.txt": "Awak sarana perkeretaapian wajib memiliki sertifikat kecakapan yang masih berlaku.",
}
