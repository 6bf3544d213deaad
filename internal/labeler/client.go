// Package labeler talks to the language-model inference backend to predict a
// circuit type per design and to rewrite instructions into description tone.
// The backend is an opaque chat-completions service; batched responses are
// matched to requests by explicit request ID, never by position.
package labeler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/wadmes/VLSI-LLM/config"
)

type Client struct {
	Name    string // source model name recorded with each label
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client

	MaxRetries int
}

func NewClient(cfg config.ModelConfig, maxRetries int) *Client {
	if maxRetries <= 0 {
		maxRetries = 7
	}
	return &Client{
		Name:       cfg.Name,
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		MaxRetries: maxRetries,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user exchange and returns the completion text.
// Deterministic decoding (temperature 0) so labels are reproducible.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference backend returned %d: %s", resp.StatusCode, truncate(body, 512))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("inference backend returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// CompleteWithRetry wraps Complete with exponential backoff.
func (c *Client) CompleteWithRetry(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			log.Printf("Model %s: retry %d/%d after %v", c.Name, attempt, c.MaxRetries, backoff)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
		reply, err := c.Complete(ctx, system, user)
		if err == nil {
			return reply, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// BatchRequest is one prompt of a batch, identified by RequestID.
type BatchRequest struct {
	RequestID string
	System    string
	User      string
}

// BatchResult pairs a completion (or error) with its request ID. Results are
// keyed by ID because completions may finish out of submission order.
type BatchResult struct {
	RequestID string
	Content   string
	Err       error
}

// CompleteBatch runs up to parallel requests at once and returns results
// keyed by request ID.
func (c *Client) CompleteBatch(ctx context.Context, reqs []BatchRequest, parallel int) map[string]BatchResult {
	if parallel <= 0 {
		parallel = 4
	}
	results := make([]BatchResult, len(reqs))
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req BatchRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			content, err := c.CompleteWithRetry(ctx, req.System, req.User)
			results[i] = BatchResult{RequestID: req.RequestID, Content: content, Err: err}
		}(i, req)
	}
	wg.Wait()

	byID := make(map[string]BatchResult, len(results))
	for _, res := range results {
		byID[res.RequestID] = res
	}
	return byID
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
