package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"lms/config"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// TextGenerator is the capability the rest of the app depends on for
// generated text. Implementations must never be required for a request
// to succeed: callers fall back to a canned message on error.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string) (<-chan string, error)
}

// GeminiClient talks to the Gemini generateContent REST API. Credentials
// are loaded once at startup via InitGemini, not per call.
type GeminiClient struct {
	apiKey            string
	baseURL           string
	model             string
	systemInstruction string
	client            *resty.Client
}

// Generator is the process-wide text generator handle
var Generator TextGenerator

// InitGemini builds the shared Gemini client from config
func InitGemini() {
	Generator = &GeminiClient{
		apiKey:            config.AppConfig.GeminiApiKey,
		baseURL:           config.AppConfig.GeminiApiUrl,
		model:             config.AppConfig.GeminiModel,
		systemInstruction: "Sen BÜ-LMS akıllı eğitim asistanısın.",
		client: resty.New().
			SetTimeout(time.Duration(config.AppConfig.GeminiTimeout) * time.Second),
	}
	log.Printf("Gemini client initialised (model=%s)", config.AppConfig.GeminiModel)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) buildRequest(prompt string) geminiRequest {
	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if g.systemInstruction != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: g.systemInstruction}}}
	}
	return req
}

// Generate returns the full generated text for a prompt
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini api key not configured")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(g.buildRequest(prompt)).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("gemini api error (status %d): %s", resp.StatusCode(), resp.String())
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(resp.Body(), &gemResp); err != nil {
		return "", fmt.Errorf("invalid gemini response: %v", err)
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}

	text := ""
	for _, part := range gemResp.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}

// GenerateStream yields generated text as chunks. The REST batch endpoint
// is used underneath; the channel shape keeps handlers ready for SSE.
func (g *GeminiClient) GenerateStream(ctx context.Context, prompt string) (<-chan string, error) {
	text, err := g.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ch := make(chan string, 1)
	ch <- text
	close(ch)
	return ch, nil
}
