package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"github.com/mikey/llm-priority-scorer/internal/utils"
	"go.uber.org/zap"
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

// BedrockClient implements core.LanguageService using Amazon Bedrock
type BedrockClient struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// AnalyzeTone analyzes the emotional tone of the text
func (c *BedrockClient) AnalyzeTone(ctx context.Context, text string) (*core.ToneVector, error) {
	prompt := fmt.Sprintf(tonePromptFormat, c.textProcessor.ProcessText(text, c.maxBodySize))

	responseText, err := c.invoke(ctx, prompt)
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
func (c *BedrockClient) InferAuthority(ctx context.Context, name, address, signature string) (*core.AuthorityInference, error) {
	if name == "" {
		name = "Unknown"
	}
	if signature == "" {
		signature = "No signature"
	}
	prompt := fmt.Sprintf(authorityPromptFormat, name, address, c.textProcessor.ProcessText(signature, 500))

	responseText, err := c.invoke(ctx, prompt)
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

// invoke builds the model-specific payload, calls Bedrock and extracts the
// response text
func (c *BedrockClient) invoke(ctx context.Context, prompt string) (string, error) {
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	default:
		return string(resp.Body), nil
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
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
