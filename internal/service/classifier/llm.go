package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/mindguard/backend/internal/analysis/depression"
)

const llmSystemPrompt = `You are a mental-health screening classifier. ` +
	`Given a user's message, decide whether the author sounds depressed. ` +
	`Respond with a single JSON object and nothing else, in the form ` +
	`{"label": "Depressed" or "Not Depressed", "probability": confidence between 0 and 1}.`

const llmUserPrompt = `Message:
{text}`

// LLMClassifier predicts a depression label with a chat model, falling back
// to the keyword heuristic when the model misbehaves.
type LLMClassifier struct {
	runnable compose.Runnable[map[string]any, *schema.Message]
	fallback func(text string) depression.Verdict
}

// NewLLMClassifier compiles the prompt/model chain.
func NewLLMClassifier(ctx context.Context, chatModel model.ChatModel) (*LLMClassifier, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(llmSystemPrompt),
		schema.UserMessage(llmUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile classifier chain: %w", err)
	}

	return &LLMClassifier{runnable: runnable, fallback: depression.Analyze}, nil
}

// Classify asks the model for a verdict. Model or parse failures degrade to
// the heuristic rather than surfacing an error, mirroring how the upstream
// always answers with some prediction.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	msg, err := c.runnable.Invoke(ctx, map[string]any{"text": strings.TrimSpace(text)})
	if err != nil {
		log.Printf("[classifier] model invoke failed, using heuristic: %v", err)
		return c.heuristic(text), nil
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return c.heuristic(text), nil
	}

	verdict, err := parseVerdict(msg.Content)
	if err != nil {
		log.Printf("[classifier] model output parse failed, using heuristic: %v", err)
		return c.heuristic(text), nil
	}

	return Prediction{
		Label:       normalizeLabel(verdict.Label),
		Probability: clampProbability(verdict.Probability),
	}, nil
}

func (c *LLMClassifier) heuristic(text string) Prediction {
	v := c.fallback(text)
	return Prediction{Label: v.Label, Probability: v.Probability}
}

type verdictPayload struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// parseVerdict extracts the JSON object from the model reply, tolerating
// prose or code fences around it.
func parseVerdict(content string) (*verdictPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &verdictPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func normalizeLabel(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), depression.LabelDepressed) {
		return depression.LabelDepressed
	}
	return depression.LabelNotDepressed
}

func clampProbability(val float64) float64 {
	if val < 0 {
		return 0
	}
	if val > 1 {
		return 1
	}
	return val
}
