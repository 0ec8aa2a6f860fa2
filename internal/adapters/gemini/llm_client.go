package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"github.com/mikey/llm-priority-scorer/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const tonePromptFormat = `Analyze the emotional tone of this email and return a JSON object with these fields:
- urgency (0-100): How urgent does the sender seem?
- stress (0-100): Level of stress/pressure in the tone
- anger (0-100): Any signs of frustration or anger
- excitement (0-100): Positive excitement or enthusiasm
- formality (0-100): How formal is the tone (100 = very formal)
- overall_intensity (0-100): Overall emotional intensity

Email text:
"""
%s
"""

Return ONLY valid JSON, no other text.`

const authorityPromptFormat = `Analyze this email sender and determine their authority level.
Return a JSON object with:
- authority_type: One of "vip", "manager", "client", "recruiter", "colleague", "external", "unknown"
- confidence: 0.0-1.0
- title: Their job title if detectable, null otherwise

Sender Name: %s
Sender Email: %s
Email Signature:
"""
%s
"""

Return ONLY valid JSON.`

// toneResponse is the structured tone analysis returned by the model
type toneResponse struct {
	Urgency          int `json:"urgency"`
	Stress           int `json:"stress"`
	Anger            int `json:"anger"`
	Excitement       int `json:"excitement"`
	Formality        int `json:"formality"`
	OverallIntensity int `json:"overall_intensity"`
}

// authorityResponse is the structured authority inference returned by the model
type authorityResponse struct {
	AuthorityType string  `json:"authority_type"`
	Confidence    float64 `json:"confidence"`
	Title         string  `json:"title"`
}

// GeminiClient implements core.LanguageService using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// AnalyzeTone analyzes the emotional tone of the text
func (c *GeminiClient) AnalyzeTone(ctx context.Context, text string) (*core.ToneVector, error) {
	prompt := fmt.Sprintf(tonePromptFormat, c.textProcessor.ProcessText(text, c.maxBodySize))

	responseText, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var tone toneResponse
	if err := unmarshalLLMJSON(responseText, &tone); err != nil {
		return nil, fmt.Errorf("failed to parse tone response: %w", err)
	}

	return &core.ToneVector{
		Urgency:          tone.Urgency,
		Stress:           tone.Stress,
		Anger:            tone.Anger,
		Excitement:       tone.Excitement,
		Formality:        tone.Formality,
		OverallIntensity: tone.OverallIntensity,
	}, nil
}

// InferAuthority infers the sender's authority level from name, address and signature
func (c *GeminiClient) InferAuthority(ctx context.Context, name, address, signature string) (*core.AuthorityInference, error) {
	if name == "" {
		name = "Unknown"
	}
	if signature == "" {
		signature = "No signature"
	}
	prompt := fmt.Sprintf(authorityPromptFormat, name, address, c.textProcessor.ProcessText(signature, 500))

	responseText, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var inference authorityResponse
	if err := unmarshalLLMJSON(responseText, &inference); err != nil {
		return nil, fmt.Errorf("failed to parse authority response: %w", err)
	}

	class := core.AuthorityClass(inference.AuthorityType)
	if !class.IsValid() {
		class = core.AuthorityUnknown
	}
	return &core.AuthorityInference{
		Class:      class,
		Confidence: inference.Confidence,
		Title:      inference.Title,
	}, nil
}

// generate runs one generation and returns the concatenated text parts
func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	responseText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText += string(text)
		}
	}
	if responseText == "" {
		return "", fmt.Errorf("no text parts in Gemini response")
	}
	return responseText, nil
}

// unmarshalLLMJSON parses model output as JSON, tolerating prose or markdown
// fences around the object
func unmarshalLLMJSON(text string, v interface{}) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return fmt.Errorf("no JSON object found in response")
	}
	return json.Unmarshal([]byte(text[jsonStart:jsonEnd]), v)
}
