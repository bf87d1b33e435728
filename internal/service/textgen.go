package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/pkg/anthropic"
)

const insightSystemPrompt = `You are a supportive health coach writing one short notification.
You are given today's value for one health metric plus two comparisons:
against yesterday and against the user's 7-day baseline. Write 1-2 warm,
specific sentences that mention both comparisons. No medical advice, no
exclamation overload, no emoji.`

type anthropicMessageGenerator struct {
	client *anthropic.Client
}

// NewAnthropicMessageGenerator wraps the Anthropic client as the insight
// message collaborator
func NewAnthropicMessageGenerator(client *anthropic.Client) MessageGenerator {
	return &anthropicMessageGenerator{client: client}
}

func (g *anthropicMessageGenerator) GenerateInsightMessage(ctx context.Context, userName string, comparison models.MetricComparison) (string, error) {
	data, err := json.Marshal(comparison)
	if err != nil {
		return "", fmt.Errorf("failed to encode comparison: %w", err)
	}

	user := fmt.Sprintf("Metric comparison data: %s", data)
	if userName != "" {
		user = fmt.Sprintf("User's first name: %s\n%s", userName, user)
	}

	message, err := g.client.Complete(ctx, insightSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("message generation failed: %w", err)
	}

	return message, nil
}
