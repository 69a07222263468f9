package ai

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// newOllamaClient creates an API client for baseURL, falling back to OLLAMA_HOST.
func newOllamaClient(baseURL string, timeout time.Duration) (*api.Client, error) {
	hostURL := envconfig.Host()
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid Ollama URL %q: %w", baseURL, err)
		}
		hostURL = u
	}
	return api.NewClient(hostURL, &http.Client{Timeout: timeout}), nil
}
