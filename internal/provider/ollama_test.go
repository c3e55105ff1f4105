package provider

import (
	"CampusChatbot_Backend/internal/config"
	"CampusChatbot_Backend/internal/models"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configWithName(name string) config.ProviderConfig {
	return config.ProviderConfig{
		Name:          name,
		TogetherModel: "test-model",
		OllamaURL:     "http://localhost:11434",
		OllamaModel:   "test-model",
		HFModel:       "test-model",
	}
}

func TestOllama_StreamsNDJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)

		w.Write([]byte(`{"message":{"content":"안"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"content":"녕"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"content":""},"done":true}` + "\n"))
	}))
	defer server.Close()

	p := NewOllama(server.URL, "test-model")

	chunks, err := collectChunks(t, p, []models.Turn{{Role: models.RoleUser, Content: "hi"}})
	require.NoError(t, err)

	var text string
	for _, c := range chunks {
		text += c.Content
	}
	assert.Equal(t, "안녕", text)
	assert.True(t, chunks[len(chunks)-1].Done)
}

func TestOllama_ConnectionRefused(t *testing.T) {
	p := NewOllama("http://127.0.0.1:1", "test-model")

	chunks, err := collectChunks(t, p, []models.Turn{{Role: models.RoleUser, Content: "hi"}})
	require.Error(t, err)
	require.Len(t, chunks, 1)
	assert.Error(t, chunks[0].Err)
}
