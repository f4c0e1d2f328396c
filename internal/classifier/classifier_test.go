package classifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

type stubClient struct {
	answer string
	err    error
	calls  int
}

func (s *stubClient) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.answer, s.err
}

func TestClassifyShortContent(t *testing.T) {
	stub := &stubClient{answer: "Yes"}
	c := New(stub, logger.NewNoOp())

	verdict, err := c.Classify(context.Background(), "Acme", "too short")
	require.NoError(t, err)
	assert.Nil(t, verdict)
	assert.Zero(t, stub.calls, "short content must not reach the API")
}

func TestClassifyVerdicts(t *testing.T) {
	longContent := "Acme Mutual is a mutual insurance company offering life coverage."

	t.Run("yes", func(t *testing.T) {
		c := New(&stubClient{answer: "Yes"}, logger.NewNoOp())
		verdict, err := c.Classify(context.Background(), "Acme", longContent)
		require.NoError(t, err)
		require.NotNil(t, verdict)
		assert.True(t, *verdict)
	})

	t.Run("no", func(t *testing.T) {
		c := New(&stubClient{answer: "No"}, logger.NewNoOp())
		verdict, err := c.Classify(context.Background(), "Acme", longContent)
		require.NoError(t, err)
		require.NotNil(t, verdict)
		assert.False(t, *verdict)
	})

	t.Run("unparseable", func(t *testing.T) {
		c := New(&stubClient{answer: "It depends"}, logger.NewNoOp())
		verdict, err := c.Classify(context.Background(), "Acme", longContent)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnparseableAnswer)
		assert.Nil(t, verdict)
	})

	t.Run("fatal error passes through", func(t *testing.T) {
		c := New(&stubClient{err: fmt.Errorf("key rejected: %w", domain.ErrFatalConfig)}, logger.NewNoOp())
		_, err := c.Classify(context.Background(), "Acme", longContent)
		require.Error(t, err)
		assert.True(t, domain.IsFatalConfig(err))
	})
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := DefaultClientConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.RetryDelay = time.Millisecond
	cfg.MinInterval = time.Millisecond

	client, err := NewClient(cfg, &http.Client{Timeout: 5 * time.Second}, logger.NewNoOp())
	require.NoError(t, err)
	return client
}

func completionBody(answer string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q}}],"usage":{"total_tokens":7,"cost":0.0001}}`, answer)
}

func TestClientRequiresAPIKey(t *testing.T) {
	cfg := DefaultClientConfig()
	_, err := NewClient(cfg, http.DefaultClient, logger.NewNoOp())
	require.Error(t, err)
	assert.True(t, domain.IsFatalConfig(err))
}

func TestClientComplete(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, completionBody("Yes"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	answer, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Yes", answer)
	assert.Equal(t, "Bearer test-key", gotAuth)

	usage := client.Usage()
	assert.Equal(t, 1, usage.Requests)
	assert.Equal(t, 7, usage.UsedTokens)
	assert.InDelta(t, 0.0001, usage.TotalCost, 1e-9)
}

func TestClientPaymentRequiredIsFatal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"message":"insufficient credits"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.True(t, domain.IsFatalConfig(err))
	assert.Contains(t, err.Error(), "insufficient credits")
	assert.Equal(t, int32(1), calls.Load(), "fatal errors must not be retried")
}

func TestClientRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
			return
		}
		fmt.Fprint(w, completionBody("No"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	answer, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "No", answer)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, client.Usage().Retries)
}

func TestClientExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.False(t, domain.IsFatalConfig(err))
	assert.Contains(t, err.Error(), "failed after 4 attempts")
}
