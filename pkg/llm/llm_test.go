package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/protlit/pkg/httpx"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, DefaultModel, req.Model)
		assert.InDelta(t, DefaultTemperature, req.Temperature, 1e-9)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "hello", req.Messages[0].Content)
		}

		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "  hi there \n"}}], "usage": {"total_tokens": 3}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}, httpx.New(httpx.Options{}))
	out, err := c.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
}

func TestChatZeroTemperature(t *testing.T) {
	var got *float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Temperature *float64 `json:"temperature"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		got = req.Temperature
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer srv.Close()

	zero := 0.0
	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Temperature: &zero}, httpx.New(httpx.Options{}))
	_, err := c.Chat(context.Background(), "hello")
	require.NoError(t, err)
	require.NotNil(t, got, "temperature must be sent even when zero")
	assert.Equal(t, 0.0, *got)
}

func TestChatNoKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused"}, httpx.New(httpx.Options{}))
	_, err := c.Chat(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, httpx.New(httpx.Options{}))
	_, err := c.Chat(context.Background(), "hello")
	assert.Error(t, err)
}
