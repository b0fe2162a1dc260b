package advisory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantErr  bool
		disabled bool
	}{
		{name: "empty provider disables", cfg: Config{}, disabled: true},
		{name: "explicit none disables", cfg: Config{Provider: "none"}, disabled: true},
		{name: "gemini", cfg: Config{Provider: "gemini", APIKey: "k"}},
		{name: "anthropic", cfg: Config{Provider: "anthropic", APIKey: "k"}},
		{name: "openai", cfg: Config{Provider: "openai", APIKey: "k"}},
		{name: "case insensitive", cfg: Config{Provider: "Gemini", APIKey: "k"}},
		{name: "unknown provider", cfg: Config{Provider: "oracle"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator, err := NewGenerator(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, generator)
			if tt.disabled {
				_, ok := generator.(Disabled)
				assert.True(t, ok)
			}
		})
	}
}

func TestDisabled_AlwaysFails(t *testing.T) {
	_, err := Disabled{}.Generate(context.Background(), "prompt", nil)
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	t.Run("embeds context as json", func(t *testing.T) {
		prompt, err := buildPrompt("Advise:", map[string]int{"score": 70})
		require.NoError(t, err)
		assert.Contains(t, prompt, "Advise:")
		assert.Contains(t, prompt, `"score":70`)
	})

	t.Run("truncates large context slices", func(t *testing.T) {
		items := make([]any, 25)
		for i := range items {
			items[i] = i
		}
		prompt, err := buildPrompt("Advise:", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, "[0,1,2,3,4,5,6,7,8,9]")
	})
}

func TestPostJSON(t *testing.T) {
	saved := retryOptions
	retryOptions.InitialDelay = time.Millisecond
	retryOptions.MaxDelay = 5 * time.Millisecond
	t.Cleanup(func() { retryOptions = saved })

	t.Run("retries server errors until success", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		body, err := postJSON(context.Background(), server.Client(), "test", server.URL, nil, []byte(`{}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client errors fail without retry", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		_, err := postJSON(context.Background(), server.Client(), "test", server.URL, nil, []byte(`{}`))
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("rate limit surfaces the sentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := postJSON(ctx, server.Client(), "test", server.URL, nil, []byte(`{}`))
		require.Error(t, err)
	})

	t.Run("headers reach the server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := postJSON(context.Background(), server.Client(), "test", server.URL,
			map[string]string{"Authorization": "Bearer secret"}, []byte(`{}`))
		require.NoError(t, err)
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows capacity requests immediately", func(t *testing.T) {
		rl := newRateLimiter(10)
		defer rl.Close()

		for i := 0; i < 10; i++ {
			require.NoError(t, rl.wait(context.Background()))
		}
		assert.False(t, rl.tryAcquire())
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		defer rl.Close()

		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- rl.wait(ctx)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		err := <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
	})

	t.Run("zero requests per minute uses default", func(t *testing.T) {
		rl := newRateLimiter(0)
		defer rl.Close()
		assert.Equal(t, 60, rl.capacity)
	})
}
