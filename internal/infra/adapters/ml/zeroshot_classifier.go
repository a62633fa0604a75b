package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smart-support-router/internal/config"
	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/model"
	"smart-support-router/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Classifier = (*ZeroShotClassifier)(nil)

const maxClassifyRunes = 512

const classifyPrompt = `You route customer support tickets. Respond with a single JSON object and nothing else: {"category": "Billing"|"Technical"|"Legal", "urgency": <number between 0 and 1>}. Higher urgency means the ticket needs attention sooner.`

// ZeroShotClassifier is the primary strategy: an OpenAI-compatible Chat
// Completions call that labels the ticket and scores its urgency. Any
// transport failure, non-2xx response or malformed model output is returned
// as an error for the failover policy to absorb.
type ZeroShotClassifier struct {
	apiKey string
	base   string // e.g., https://api.openai.com/v1
	model  string
	client *http.Client
}

func NewZeroShotClassifier(cfg *config.MLConfig) (*ZeroShotClassifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ml api key empty")
	}
	return &ZeroShotClassifier{
		apiKey: cfg.APIKey,
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		model:  cfg.Model,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (z *ZeroShotClassifier) Classify(ctx context.Context, text string) (model.Category, float64, error) {
	if r := []rune(text); len(r) > maxClassifyRunes {
		text = string(r[:maxClassifyRunes])
	}

	reqBody := struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
	}{
		Model: z.model,
		Messages: []chatMessage{
			{Role: "system", Content: classifyPrompt},
			{Role: "user", Content: text},
		},
	}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+z.apiKey)

	resp, err := z.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", 0, fmt.Errorf("%w: http %d", domain.ErrClassificationFailed, resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("%w: decode response: %v", domain.ErrClassificationFailed, err)
	}
	if len(payload.Choices) == 0 {
		return "", 0, fmt.Errorf("%w: empty choices", domain.ErrClassificationFailed)
	}
	return parseVerdict(payload.Choices[0].Message.Content)
}

// parseVerdict extracts {"category", "urgency"} from the model output,
// tolerating surrounding prose or code fences.
func parseVerdict(content string) (model.Category, float64, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return "", 0, fmt.Errorf("%w: no JSON object in output", domain.ErrClassificationFailed)
	}
	var verdict struct {
		Category string  `json:"category"`
		Urgency  float64 `json:"urgency"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &verdict); err != nil {
		return "", 0, fmt.Errorf("%w: malformed output: %v", domain.ErrClassificationFailed, err)
	}
	category := model.Category(verdict.Category)
	if !category.Valid() {
		return "", 0, fmt.Errorf("%w: unknown category %q", domain.ErrClassificationFailed, verdict.Category)
	}
	if verdict.Urgency < 0 || verdict.Urgency > 1 {
		return "", 0, fmt.Errorf("%w: urgency %v out of range", domain.ErrClassificationFailed, verdict.Urgency)
	}
	return category, verdict.Urgency, nil
}
