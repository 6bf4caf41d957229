// Package ai wraps the generative model used for descriptions, search,
// recommendations and review summaries. Every operation has a deterministic
// fallback, so callers never see a model failure.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Tier selects between the fast model and the stronger reasoning model.
type Tier int

const (
	TierFast Tier = iota
	TierReasoning
)

// Prompt is a single completion request.
type Prompt struct {
	Text   string
	Tier   Tier
	JSON   bool          // ask for an application/json response
	Schema *genai.Schema // optional response schema, JSON only
}

// Completer produces a completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// ErrUnavailable is returned when no model is configured.
var ErrUnavailable = errors.New("ai completer unavailable")

// Unavailable is the Completer used when no API key is configured.
type Unavailable struct{}

func (Unavailable) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return "", ErrUnavailable
}

const requestTimeout = 30 * time.Second

// GeminiCompleter calls the Gemini API through the genai SDK.
type GeminiCompleter struct {
	client    *genai.Client
	textModel string
	jsonModel string
}

// NewGeminiCompleter creates a completer for the Gemini API backend.
func NewGeminiCompleter(ctx context.Context, apiKey, textModel, jsonModel string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiCompleter{
		client:    client,
		textModel: textModel,
		jsonModel: jsonModel,
	}, nil
}

func (g *GeminiCompleter) model(tier Tier) string {
	if tier == TierReasoning {
		return g.jsonModel
	}
	return g.textModel
}

// Complete makes a single GenerateContent call; there is no retry.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var config *genai.GenerateContentConfig
	if prompt.JSON {
		config = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   prompt.Schema,
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model(prompt.Tier), genai.Text(prompt.Text), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return resp.Text(), nil
}
