package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/ndstyle/mindflow2/domain/services"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) IsAvailable() bool {
	return m.Called().Bool(0)
}

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "gpt-4", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
			assert.Equal(t, "notes", req.Messages[1].Content)
		}
		assert.Equal(t, float32(0.7), req.Temperature)
		assert.Equal(t, 2000, req.MaxTokens)
		if assert.NotNil(t, req.ResponseFormat) {
			assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"nodes\":[]}"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", "gpt-4", server.URL+"/", time.Second)
	out, err := p.Complete(context.Background(), "notes", CompletionOptions{
		System: "sys", Temperature: 0.7, MaxTokens: 2000, Format: "json",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[]}`, out)
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":"slow down"}`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
				assert.True(t, isRetryable(err))
			},
		},
		{
			name:   "empty content",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResponse)
				assert.False(t, isRetryable(err))
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				assert.False(t, isRetryable(err))
			},
		},
		{
			name:   "structured api error",
			status: http.StatusServiceUnavailable,
			body:   `{"error":{"message":"overloaded","type":"server_error"}}`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
				assert.Equal(t, "overloaded", se.Body)
				assert.True(t, isRetryable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := NewOpenAIProvider("k", "m", server.URL, time.Second).Complete(context.Background(), "p", CompletionOptions{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	assert.False(t, NewOpenAIProvider("", "m", "", 0).IsAvailable())
}

func TestRetryProvider(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, RetryDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("retries server errors", func(t *testing.T) {
		inner := new(MockLLM)
		inner.On("Complete", mock.Anything, "p", mock.Anything).Return("", &StatusError{StatusCode: 503}).Once()
		inner.On("Complete", mock.Anything, "p", mock.Anything).Return("ok", nil).Once()

		out, err := NewRetryProvider(inner, cfg, zap.NewNop()).Complete(context.Background(), "p", CompletionOptions{})

		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		inner.AssertNumberOfCalls(t, "Complete", 2)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		inner := new(MockLLM)
		inner.On("Complete", mock.Anything, "p", mock.Anything).Return("", &StatusError{StatusCode: 500})

		_, err := NewRetryProvider(inner, cfg, zap.NewNop()).Complete(context.Background(), "p", CompletionOptions{})

		require.Error(t, err)
		inner.AssertNumberOfCalls(t, "Complete", 3)
	})

	t.Run("client errors are final", func(t *testing.T) {
		inner := new(MockLLM)
		inner.On("Complete", mock.Anything, "p", mock.Anything).Return("", &StatusError{StatusCode: 400})

		_, err := NewRetryProvider(inner, cfg, zap.NewNop()).Complete(context.Background(), "p", CompletionOptions{})

		require.Error(t, err)
		inner.AssertNumberOfCalls(t, "Complete", 1)
	})
}

func TestRetryProvider_Backoff(t *testing.T) {
	r := NewRetryProvider(nil, RetryConfig{RetryDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}, zap.NewNop())
	assert.Equal(t, 100*time.Millisecond, r.backoff(1))
	assert.Equal(t, 200*time.Millisecond, r.backoff(2))
	assert.Equal(t, 300*time.Millisecond, r.backoff(3))
}

func TestBreakerProvider_OpensAfterFailures(t *testing.T) {
	var calls int32
	inner := &funcProvider{complete: func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.New("boom")
	}}
	cfg := DefaultBreakerConfig("llm-test")
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.5
	b := NewBreakerProvider(inner, cfg, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := b.Complete(context.Background(), "p", CompletionOptions{})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.False(t, b.IsAvailable())

	_, err := b.Complete(context.Background(), "p", CompletionOptions{})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "open breaker does not call the provider")
}

type funcProvider struct {
	complete func() (string, error)
}

func (f *funcProvider) Complete(context.Context, string, CompletionOptions) (string, error) {
	return f.complete()
}
func (f *funcProvider) IsAvailable() bool { return true }

func TestGenerator(t *testing.T) {
	t.Run("passes prompt and options", func(t *testing.T) {
		inner := new(MockLLM)
		inner.On("IsAvailable").Return(true)
		inner.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "Notes:\nbuy milk\n")
		}), mock.MatchedBy(func(o CompletionOptions) bool {
			return o.Temperature == 0.7 && o.MaxTokens == 2000 && o.System != ""
		})).Return("{}", nil)

		out, err := NewGenerator(inner, zap.NewNop()).Generate(context.Background(), "buy milk")

		require.NoError(t, err)
		assert.Equal(t, "{}", out)
		inner.AssertExpectations(t)
	})

	t.Run("unavailable provider", func(t *testing.T) {
		inner := new(MockLLM)
		inner.On("IsAvailable").Return(false)

		_, err := NewGenerator(inner, zap.NewNop()).Generate(context.Background(), "x")

		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
		inner.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider failure", func(t *testing.T) {
		inner := new(MockLLM)
		inner.On("IsAvailable").Return(true)
		inner.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("down"))

		_, err := NewGenerator(inner, zap.NewNop()).Generate(context.Background(), "x")

		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	})
}

func TestMockProvider_ProducesNormalizableMap(t *testing.T) {
	gen := NewGenerator(NewMockProvider(), zap.NewNop())

	text, err := gen.Generate(context.Background(), "Go\n\nchannels\ngoroutines\n")
	require.NoError(t, err)

	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	require.True(t, start >= 0 && end > start)
	m, report, err := domain.NewNormalizer().NormalizeJSON([]byte(text[start : end+1]))
	require.NoError(t, err)
	assert.False(t, report.Repaired())
	assert.Equal(t, 3, m.NodeCount())
	assert.Equal(t, 2, m.EdgeCount())
	assert.Equal(t, "Go", m.Metadata().Title)
}

func TestMockProvider_Unavailable(t *testing.T) {
	p := NewMockProvider()
	p.SetAvailable(false)
	_, err := p.Complete(context.Background(), BuildPrompt("x"), CompletionOptions{})
	assert.Error(t, err)
}
