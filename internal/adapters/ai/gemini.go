// Package ai writes natural-language product comparisons with Gemini.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/technova/storefront-api/internal/models"
)

const DefaultModel = "gemini-1.5-flash"

var ErrEmptyResponse = errors.New("model returned no text")

type GeminiSummarizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiSummarizer(ctx context.Context, apiKey, modelName string) (*GeminiSummarizer, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(
		"You are a consumer electronics shopping assistant. Compare the products you are given " +
			"in at most 120 words of plain text. Name which shopper each product suits best. " +
			"Only use the facts provided.",
	)}}
	return &GeminiSummarizer{client: client, model: model}, nil
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, products []models.ProductView) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(Prompt(products)))
	if err != nil {
		return "", fmt.Errorf("generate comparison: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
		break
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func (g *GeminiSummarizer) Close() error {
	return g.client.Close()
}

// Prompt lists each product with its price, rating and specs.
func Prompt(products []models.ProductView) string {
	var b strings.Builder
	b.WriteString("Compare these products:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "\n%d. %s by %s, %.2f %s", i+1, p.Name, p.Brand, p.Price, p.Currency)
		if p.CompareAtPrice > 0 {
			fmt.Fprintf(&b, " (was %.2f)", p.CompareAtPrice)
		}
		if p.ReviewCount > 0 {
			fmt.Fprintf(&b, ", rated %.1f/5 from %d reviews", p.Rating, p.ReviewCount)
		}
		b.WriteString("\n")
		for _, s := range p.Specs {
			fmt.Fprintf(&b, "   - %s: %s\n", s.Key, s.Value)
		}
	}
	return b.String()
}
