package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

func newOllamaServer(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var requests []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil && r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&body)
			requests = append(requests, body)
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/embed":
			input, _ := body["input"].([]any)
			embeddings := make([][]float32, len(input))
			for i := range input {
				embeddings[i] = []float32{float32(i + 1), 0.5}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"model": body["model"], "embeddings": embeddings})
		case "/api/chat":
			_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"Hallo!"},"done":true}`))
		case "/":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return server, &requests
}

func TestNewOllamaEmbedding_RequiresModel(t *testing.T) {
	_, err := NewOllamaEmbedding("http://localhost:11434", "", "", "")
	assert.Error(t, err)
}

func TestNewOllamaEmbedding_InvalidURL(t *testing.T) {
	_, err := NewOllamaEmbedding("://bad", "nomic-embed-text", "", "")
	assert.Error(t, err)
}

func TestOllamaEmbedding_Embed(t *testing.T) {
	server, requests := newOllamaServer(t)
	defer server.Close()

	emb, err := NewOllamaEmbedding(server.URL, "nomic-embed-text", "search_query: ", "search_document: ")
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", emb.Model())

	vectors, err := emb.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])

	query, err := emb.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, query, 2)

	require.Len(t, *requests, 2)
	assert.Equal(t, []any{"search_document: a", "search_document: b"}, (*requests)[0]["input"])
	assert.Equal(t, []any{"search_query: q"}, (*requests)[1]["input"])

	assert.NoError(t, emb.HealthCheck(context.Background()))
}

func TestOllamaEmbedding_EmptyInput(t *testing.T) {
	emb, err := NewOllamaEmbedding("http://localhost:11434", "nomic-embed-text", "", "")
	require.NoError(t, err)

	vectors, err := emb.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestOllamaLLM_Complete(t *testing.T) {
	server, requests := newOllamaServer(t)
	defer server.Close()

	llm, err := NewOllamaLLM(server.URL, "llama3")
	require.NoError(t, err)

	answer, err := llm.Complete(context.Background(), []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: "system"},
		{Role: domain.ChatRoleUser, Content: "hi"},
	}, domain.GenerationOptions{MaxTokens: 512, Temperature: 0.1, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, "Hallo!", answer)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "llama3", req["model"])
	assert.Equal(t, false, req["stream"])
	opts := req["options"].(map[string]any)
	assert.Equal(t, float64(512), opts["num_predict"])
	assert.Equal(t, float64(42), opts["seed"])
	assert.Equal(t, 0.1, opts["temperature"])
	assert.Len(t, req["messages"], 2)

	assert.NoError(t, llm.Ping(context.Background()))
}

func TestNewOllamaLLM_RequiresModel(t *testing.T) {
	_, err := NewOllamaLLM("http://localhost:11434", "")
	assert.Error(t, err)
}
