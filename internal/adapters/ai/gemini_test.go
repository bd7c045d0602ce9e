package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/technova/storefront-api/internal/models"
)

func TestPrompt(t *testing.T) {
	prompt := Prompt([]models.ProductView{
		{
			Name: "Aero 14", Brand: "Acme", Price: 999.99, CompareAtPrice: 1249.99, Currency: "USD",
			Rating: 4.5, ReviewCount: 12,
			Specs: []models.Spec{{Key: "CPU", Value: "8-core"}},
		},
		{Name: "Slate 13", Brand: "Orbit", Price: 849, Currency: "USD"},
	})

	assert.Contains(t, prompt, "1. Aero 14 by Acme, 999.99 USD (was 1249.99), rated 4.5/5 from 12 reviews")
	assert.Contains(t, prompt, "   - CPU: 8-core")
	assert.Contains(t, prompt, "2. Slate 13 by Orbit, 849.00 USD\n")
	assert.NotContains(t, prompt, "Slate 13 by Orbit, 849.00 USD (was")
}
