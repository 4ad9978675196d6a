// Package assistant wraps the hosted assistant platform. Assistants are
// configured and run remotely; we only list them, verify they exist and
// snapshot their config onto assignments.
package assistant

import (
	"context"
	"fmt"
	"time"

	"waconsole/internal/cache"
	"waconsole/internal/config"
	"waconsole/internal/models"

	"github.com/sashabaranov/go-openai"
)

const listCacheKey = "assistant_catalog"

// Client wraps the platform API with a short-lived catalog cache.
type Client struct {
	api      *openai.Client
	cache    *cache.Cache
	cacheTTL time.Duration
	timeout  time.Duration
}

// NewClient creates a new assistant platform client
func NewClient(cfg *config.Config, c *cache.Cache) (*Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("assistant platform API key not configured: set OPENAI_API_KEY")
	}

	return &Client{
		api:      openai.NewClient(cfg.OpenAIKey),
		cache:    c,
		cacheTTL: time.Duration(cfg.AssistantCacheTTL) * time.Minute,
		timeout:  time.Duration(cfg.OpenAITimeout) * time.Second,
	}, nil
}

// List returns the assistant catalog, cached to keep the admin UI's
// repeated dropdown loads off the platform API.
func (c *Client) List(ctx context.Context) ([]models.AssistantInfo, error) {
	if cached, found := c.cache.Get(listCacheKey); found {
		if assistants, ok := cached.([]models.AssistantInfo); ok {
			return assistants, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	limit := 100
	resp, err := c.api.ListAssistants(ctx, &limit, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list assistants: %w", err)
	}

	assistants := make([]models.AssistantInfo, 0, len(resp.Assistants))
	for _, a := range resp.Assistants {
		assistants = append(assistants, toInfo(a))
	}

	c.cache.Set(listCacheKey, assistants, c.cacheTTL)

	return assistants, nil
}

// Get verifies an assistant exists on the platform and returns its
// current config. Failure surfaces to the caller; no retry.
func (c *Client) Get(ctx context.Context, id string) (*models.AssistantInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	a, err := c.api.RetrieveAssistant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assistant %s not available: %w", id, err)
	}

	info := toInfo(a)
	return &info, nil
}

// InvalidateCatalog drops the cached catalog after platform-side edits.
func (c *Client) InvalidateCatalog() {
	c.cache.Delete(listCacheKey)
}

func toInfo(a openai.Assistant) models.AssistantInfo {
	info := models.AssistantInfo{
		ID:        a.ID,
		Model:     a.Model,
		CreatedAt: time.Unix(a.CreatedAt, 0).UTC(),
	}
	if a.Name != nil {
		info.Name = *a.Name
	}
	if a.Description != nil {
		info.Description = *a.Description
	}
	if a.Instructions != nil {
		info.Instructions = *a.Instructions
	}
	return info
}
