package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tigertix/ticket-assistant/internal/model"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// promptTemplate is the fixed instruction sent with every user
// message. The provider must answer with exactly one of the JSON
// shapes enumerated here; anything else counts as a primary-path
// failure and the caller degrades to the fallback parser.
const promptTemplate = `You are TigerTix, a friendly AI assistant for event ticket booking.

Analyze this message and determine the user's intent. Respond with ONLY valid JSON (no markdown):

INTENT TYPES:

1. GREETING - User says hi/hello/hey
Return: {"intent":"greeting", "response":"Hi! I'm TigerTix, your ticket assistant. I can show you available events or help you book tickets. What would you like to do?"}

2. VIEW EVENTS - User wants to see/list/show available events or tickets
Return: {"intent":"view"}

3. BOOK TICKETS - User wants to book/buy/reserve tickets
Extract event name and ticket count (default 1)
Return: {"intent":"book", "event":"Event Name", "tickets":2, "response":"I found that event! Let me prepare your booking."}

4. GENERAL CHAT - Everything else (questions, small talk, help requests)
Return: {"intent":"chat", "response":"[Natural conversational response as TigerTix assistant]"}

RULES:
- Always include a "response" field EXCEPT for "view" intent
- Be friendly and helpful
- Keep responses concise (1-2 sentences)
- Stay in character as TigerTix

User message: %q

JSON response:`

// GeminiClient calls the generative-language REST API. It implements
// Provider; the resolver treats every returned error identically, so
// the client reports failures freely and never retries.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewGeminiClient builds a client for the given API key and model.
// timeout bounds the whole request; a hung provider call suspends only
// the request that made it.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// generateContent request/response wire shapes, trimmed to the fields
// this client reads.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}
type geminiPart struct {
	Text string `json:"text"`
}
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// intentPayload is the JSON object the model is instructed to emit.
// An "error" key may appear instead of "intent".
type intentPayload struct {
	Intent   string `json:"intent"`
	Event    string `json:"event"`
	Tickets  int    `json:"tickets"`
	Response string `json:"response"`
	Err      string `json:"error"`
}

// Parse sends the instruction template plus user text and decodes the
// model's answer into an Intent. Any deviation from the contract is an
// error; the caller falls back.
func (g *GeminiClient) Parse(ctx context.Context, text string) (model.Intent, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: fmt.Sprintf(promptTemplate, text)}}}},
	})
	if err != nil {
		return model.Intent{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.Intent{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return model.Intent{}, fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.Intent{}, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.Intent{}, fmt.Errorf("read response: %w", err)
	}
	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return model.Intent{}, fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return model.Intent{}, fmt.Errorf("provider returned no candidates")
	}

	return parseIntentJSON(gr.Candidates[0].Content.Parts[0].Text)
}

// parseIntentJSON validates the model's text output against the fixed
// contract. Models sometimes wrap JSON in markdown fences despite
// instructions, so fences are stripped before decoding.
func parseIntentJSON(content string) (model.Intent, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var p intentPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return model.Intent{}, fmt.Errorf("provider output is not JSON: %w", err)
	}
	if p.Err != "" {
		return model.Intent{Kind: model.IntentError, Response: p.Err}, nil
	}

	switch model.IntentKind(p.Intent) {
	case model.IntentGreeting, model.IntentView, model.IntentChat:
		return model.Intent{Kind: model.IntentKind(p.Intent), Response: p.Response}, nil
	case model.IntentBook:
		tickets := p.Tickets
		if tickets < 1 {
			tickets = 1
		}
		if strings.TrimSpace(p.Event) == "" {
			return model.Intent{}, fmt.Errorf("book intent missing event name")
		}
		return model.Intent{
			Kind:     model.IntentBook,
			Event:    strings.TrimSpace(p.Event),
			Tickets:  tickets,
			Response: p.Response,
		}, nil
	default:
		return model.Intent{}, fmt.Errorf("unknown intent value %q", p.Intent)
	}
}
