package guard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/core/ports/driven"
)

// scriptedEmbedder fails with errs in order, then succeeds.
type scriptedEmbedder struct {
	errs  []error
	calls atomic.Int32
	block bool
}

func (e *scriptedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *scriptedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	n := int(e.calls.Add(1))
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if n <= len(e.errs) {
		return nil, e.errs[n-1]
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (e *scriptedEmbedder) Dimensions() int            { return 2 }
func (e *scriptedEmbedder) ModelName() string          { return "scripted" }
func (e *scriptedEmbedder) Ping(context.Context) error { return nil }
func (e *scriptedEmbedder) Close() error               { return nil }

func retryable() error {
	return &domain.ProviderError{Provider: "fake", Op: "embed", Retryable: true, Err: errors.New("503")}
}

func fatal() error {
	return &domain.ProviderError{Provider: "fake", Op: "embed", Err: errors.New("401")}
}

func testConfig() Config {
	return Config{
		Timeout:         time.Second,
		MaxAttempts:     3,
		BreakerFailures: 100,
		BreakerCooldown: time.Minute,
	}
}

func TestEmbed_RetriesRetryable(t *testing.T) {
	next := &scriptedEmbedder{errs: []error{retryable(), retryable()}}
	svc := NewEmbeddingService("fake", next, testConfig())

	v, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestEmbed_GivesUpAfterMaxAttempts(t *testing.T) {
	next := &scriptedEmbedder{errs: []error{retryable(), retryable(), retryable(), retryable()}}
	svc := NewEmbeddingService("fake", next, testConfig())

	_, err := svc.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestEmbed_PermanentErrorNotRetried(t *testing.T) {
	next := &scriptedEmbedder{errs: []error{fatal()}}
	svc := NewEmbeddingService("fake", next, testConfig())

	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, domain.IsRetryable(err))
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestEmbed_PlainErrorBecomesProviderError(t *testing.T) {
	next := &scriptedEmbedder{errs: []error{errors.New("boom")}}
	svc := NewEmbeddingService("fake", next, testConfig())

	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "fake-embedding", pe.Provider)
}

func TestEmbed_TimeoutIsRetryable(t *testing.T) {
	next := &scriptedEmbedder{block: true}
	cfg := testConfig()
	cfg.Timeout = 10 * time.Millisecond
	cfg.MaxAttempts = 2
	svc := NewEmbeddingService("fake", next, cfg)

	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestEmbed_CancelledContext(t *testing.T) {
	next := &scriptedEmbedder{block: true}
	svc := NewEmbeddingService("fake", next, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Embed(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.False(t, domain.IsRetryable(err))
}

func TestBreakerOpens(t *testing.T) {
	next := &scriptedEmbedder{errs: []error{fatal(), fatal(), fatal(), fatal()}}
	cfg := testConfig()
	cfg.BreakerFailures = 2
	svc := NewEmbeddingService("fake", next, cfg)

	for i := 0; i < 2; i++ {
		_, err := svc.Embed(context.Background(), "x")
		require.Error(t, err)
	}

	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.False(t, domain.IsRetryable(err))
	assert.Equal(t, int32(2), next.calls.Load(), "open breaker must not reach the provider")
}

func TestRateLimit(t *testing.T) {
	next := &scriptedEmbedder{}
	cfg := testConfig()
	cfg.RequestsPerSecond = 20
	svc := NewEmbeddingService("fake", next, cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := svc.Embed(context.Background(), "x")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestConfigFromSettings_Defaults(t *testing.T) {
	cfg := ConfigFromSettings(domain.GuardSettings{})
	assert.Equal(t, domain.DefaultProviderTimeout, cfg.Timeout)
	assert.Equal(t, domain.DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, domain.DefaultBreakerFailures, cfg.BreakerFailures)
	assert.Equal(t, domain.DefaultBreakerCooldown, cfg.BreakerCooldown)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Duration(0), calculateBackoff(time.Second, 0))
	assert.Equal(t, time.Duration(0), calculateBackoff(0, 3))

	base := 100 * time.Millisecond
	for attempt := 1; attempt <= 5; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		got := calculateBackoff(base, attempt)
		assert.GreaterOrEqual(t, got, expected*3/4)
		assert.LessOrEqual(t, got, expected*5/4)
	}

	assert.LessOrEqual(t, calculateBackoff(time.Second, 20), maxBackoff*5/4)
}

// ==================== LLM ====================

type stubLLM struct {
	out   string
	err   error
	calls int
}

func (l *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	l.calls++
	return l.out, l.err
}

func (l *stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	l.calls++
	return l.out, l.err
}

func (l *stubLLM) ModelName() string          { return "stub" }
func (l *stubLLM) Ping(context.Context) error { return nil }
func (l *stubLLM) Close() error               { return nil }

func TestLLM_Generate(t *testing.T) {
	next := &stubLLM{out: "jawaban"}
	svc := NewLLMService("fake", next, testConfig())

	out, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "jawaban", out)
	assert.Equal(t, "stub", svc.ModelName())
}

func TestLLM_EmptyCompletionIsError(t *testing.T) {
	next := &stubLLM{out: "  \n"}
	svc := NewLLMService("fake", next, testConfig())

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Equal(t, 1, next.calls)
}
