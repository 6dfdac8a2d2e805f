package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// MaxNoteLength bounds the note embedded in a prompt.
const MaxNoteLength = 200

// ErrNotConfigured is returned when the client has no generator.
var ErrNotConfigured = errors.New("gemini client not initialized")

// Classification is the model's reading of a transaction note.
type Classification struct {
	Category     string              `json:"category"`
	SpendingType models.SpendingType `json:"spending_type"`
	Confidence   float64             `json:"confidence"`
	Reasoning    string              `json:"reasoning"`
}

// Classify picks one of categories for note and, for expenses, tags it as a
// need or a want. The returned category always matches an entry of categories
// exactly.
func (c *Client) Classify(ctx context.Context, note string, txType models.TransactionType, categories []string) (*Classification, error) {
	noteHash := hashNote(note)
	log := logger.Log.With().Str("note_hash", noteHash).Str("type", string(txType)).Logger()

	if c == nil || c.generator == nil {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(note) == "" {
		return nil, fmt.Errorf("note is required")
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories available")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildPrompt(SanitizeForPrompt(note, MaxNoteLength), txType, categories)}},
	}}

	log.Debug().Int("category_count", len(categories)).Msg("Classifying transaction")
	resp, err := c.generator.GenerateContent(timeoutCtx, c.model, contents, responseConfig(txType, categories))
	if err != nil {
		log.Error().Err(err).Msg("Gemini classification failed")
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	jsonText := extractJSON(resp.Text())
	if jsonText == "" {
		log.Warn().Msg("No JSON found in Gemini response")
		return nil, fmt.Errorf("no JSON found in response")
	}

	var out Classification
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	matched := false
	for _, cat := range categories {
		if strings.EqualFold(cat, strings.TrimSpace(out.Category)) {
			out.Category = cat
			matched = true
			break
		}
	}
	if !matched {
		log.Warn().Str("suggested_category", out.Category).Msg("Suggested category not available")
		return nil, fmt.Errorf("suggested category %q not in available categories", out.Category)
	}

	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, fmt.Errorf("confidence out of range: %f", out.Confidence)
	}

	out.SpendingType = models.SpendingType(strings.ToLower(string(out.SpendingType)))
	if txType != models.TypeExpense || !out.SpendingType.Valid() {
		out.SpendingType = ""
	}
	out.Reasoning = sanitizeReasoning(out.Reasoning)

	log.Debug().
		Str("category", out.Category).
		Str("spending_type", string(out.SpendingType)).
		Float64("confidence", out.Confidence).
		Msg("Classified transaction")
	return &out, nil
}

func responseConfig(txType models.TransactionType, categories []string) *genai.GenerateContentConfig {
	temp := float32(0.3)
	props := map[string]*genai.Schema{
		"category": {
			Type:        genai.TypeString,
			Enum:        categories,
			Description: "The most appropriate category from the provided list",
		},
		"confidence": {
			Type:        genai.TypeNumber,
			Description: "Confidence score between 0 and 1",
		},
		"reasoning": {
			Type:        genai.TypeString,
			Description: "Brief explanation for the categorization",
		},
	}
	required := []string{"category", "confidence", "reasoning"}
	if txType == models.TypeExpense {
		props["spending_type"] = &genai.Schema{
			Type:        genai.TypeString,
			Enum:        []string{string(models.SpendingNeed), string(models.SpendingWant)},
			Description: "need for essentials, want for discretionary spending",
		}
		required = append(required, "spending_type")
	}

	return &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(500),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: "You are a JSON API. You MUST respond with ONLY valid JSON, no preamble or explanation. Output a single JSON object."}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: props,
			Required:   required,
		},
	}
}

func buildPrompt(note string, txType models.TransactionType, categories []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Categorize this %s: \"%s\"\n\nAvailable categories:\n- %s\n\nRules:\n",
		txType, note, strings.Join(categories, "\n- "))
	sb.WriteString("- Choose the MOST appropriate category from the list\n")
	if txType == models.TypeExpense {
		sb.WriteString("- spending_type is \"need\" for essentials (rent, groceries, bills, transport to work) and \"want\" for everything discretionary\n")
	}
	sb.WriteString("- Higher confidence (0.8-1.0) for obvious categories, lower (0.5-0.7) for ambiguous ones\n\nReturn JSON only.")
	return sb.String()
}

// extractJSON returns the outermost {...} span of text, or "" if none.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(text, "}")
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

// SanitizeForPrompt strips quoting and control characters from user input,
// collapses whitespace and truncates to maxLength bytes.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.Join(strings.Fields(input), " ")
	if len(input) > maxLength {
		input = strings.TrimSpace(input[:maxLength])
	}
	return input
}

func sanitizeReasoning(reasoning string) string {
	const maxReasoningLength = 500
	reasoning = strings.Join(strings.Fields(reasoning), " ")
	if len(reasoning) > maxReasoningLength {
		reasoning = strings.TrimSpace(reasoning[:maxReasoningLength])
	}
	return reasoning
}

func hashNote(note string) string {
	hash := sha256.Sum256([]byte(note))
	return hex.EncodeToString(hash[:8])
}
