package external

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/domain"
)

const (
	// DefaultTextEndpoint is the Gemini text generation method.
	DefaultTextEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"
	// DefaultImageEndpoint is the Gemini multimodal generation method.
	DefaultImageEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro-vision:generateContent"

	ServiceTextGeneration  = "text_generation"
	ServiceImageGeneration = "image_generation"
)

// GenerationConfig holds the sampling parameters sent with every prompt.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// InlineData is a base64 payload embedded in a response part.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part is one piece of prompt or response content.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// Content groups parts.
type Content struct {
	Parts []Part `json:"parts"`
}

type generateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// GenerateResponse represents the JSON response structure from generateContent
type GenerateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls a generateContent endpoint.
type GeminiClient struct {
	*serviceClient
	generation GenerationConfig
}

// NewTextClient creates a client for insight text generation.
func NewTextClient(config domain.ServiceConfig, logger *logrus.Logger) *GeminiClient {
	return &GeminiClient{
		serviceClient: newServiceClient(ServiceTextGeneration, config, domain.ServiceConfig{
			Endpoint: DefaultTextEndpoint,
			Timeout:  10 * time.Second,
		}, logger),
		generation: GenerationConfig{Temperature: 0.4, TopK: 32, TopP: 0.95, MaxOutputTokens: 1024},
	}
}

// NewImageClient creates a client for symptom illustration requests.
func NewImageClient(config domain.ServiceConfig, logger *logrus.Logger) *GeminiClient {
	return &GeminiClient{
		serviceClient: newServiceClient(ServiceImageGeneration, config, domain.ServiceConfig{
			Endpoint: DefaultImageEndpoint,
			Timeout:  10 * time.Second,
		}, logger),
		generation: GenerationConfig{Temperature: 0.4, TopK: 32, TopP: 0.95, MaxOutputTokens: 2048},
	}
}

// Generate posts prompt and decodes the response.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (*GenerateResponse, error) {
	payload, err := json.Marshal(generateRequest{
		Contents:         []Content{{Parts: []Part{{Text: prompt}}}},
		GenerationConfig: c.generation,
	})
	if err != nil {
		return nil, err
	}

	target := c.endpoint
	if c.apiKey != "" {
		target += "?key=" + url.QueryEscape(c.apiKey)
	}

	body, err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var response GenerateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, domain.NewParseError(c.name, err)
	}
	return &response, nil
}

// GenerateText returns the text of the first part of the first candidate.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	response, err := c.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", domain.NewUpstreamError(c.name, http.StatusOK, "response carries no text candidate")
	}
	return response.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateImage returns the first inline image of the first candidate. A
// response without image data is not an error; found is false.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (image *InlineData, found bool, err error) {
	response, err := c.Generate(ctx, prompt)
	if err != nil {
		return nil, false, err
	}
	if len(response.Candidates) == 0 {
		return nil, false, nil
	}
	for _, part := range response.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return part.InlineData, true, nil
		}
	}
	return nil, false, nil
}
