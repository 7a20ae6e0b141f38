// Anthropic HTTP adapter. Calls the Messages API using stdlib net/http.
// Endpoints used:
//   - POST /v1/messages — non-streaming chat completion
//   - GET  /v1/models   — health check (lists available models)
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
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"
	headerAPIKey      = "x-api-key"
	headerVersion     = "anthropic-version"

	// HeaderBeta is the multi-value capability header. Values are joined
	// with commas; the session's BetaSource appends the MCP flag here once
	// an MCP tool has been used.
	HeaderBeta = "anthropic-beta"

	apiVersion = "2023-06-01"

	defaultMaxTokens = 1024
)

// AnthropicProvider implements Provider against the Anthropic Messages API.
type AnthropicProvider struct {
	baseURL     string
	apiKey      string
	model       string
	staticBetas []string
	httpClient  *http.Client
}

// NewAnthropicProvider creates an AnthropicProvider with a 60s default timeout.
// staticBetas are configuration-level beta flags always sent; the
// session-dependent flag comes through ChatRequest.Betas per call.
func NewAnthropicProvider(baseURL, apiKey, model string, staticBetas []string) *AnthropicProvider {
	return &AnthropicProvider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		staticBetas: staticBetas,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ===== internal Anthropic JSON types =====

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float32           `json:"temperature,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicChatResponse struct {
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      anthropicUsage          `json:"usage"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ===== Provider implementation =====

// ChatCompletion performs a non-streaming chat via POST /v1/messages.
// The beta header is assembled immediately before transmission so the
// session's current MCP usage state is what goes on the wire.
func (p *AnthropicProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	msgs := make([]anthropicMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = anthropicMessage(m)
	}

	payload := anthropicChatRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  msgs,
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		payload.Temperature = &temp
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: build request: %w", err)
	}
	httpReq.Header.Set(headerContentType, mimeJSON)
	httpReq.Header.Set(headerAPIKey, p.apiKey)
	httpReq.Header.Set(headerVersion, apiVersion)

	if betas := p.betaHeaderValues(req.Betas); len(betas) > 0 {
		httpReq.Header.Set(HeaderBeta, strings.Join(betas, ","))
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var out anthropicChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("anthropic chat: decode response: %w", err)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &ChatResponse{
		Content:    text.String(),
		StopReason: out.StopReason,
		Tokens:     out.Usage.InputTokens + out.Usage.OutputTokens,
	}, nil
}

// betaHeaderValues builds the final beta value list: configured static flags
// first, then the session contribution. The source handles dedup of its own
// marker; order of the static flags is preserved.
func (p *AnthropicProvider) betaHeaderValues(source BetaSource) []string {
	values := make([]string, 0, len(p.staticBetas)+1)
	values = append(values, p.staticBetas...)
	if source != nil {
		values = source.AppendMarker(values)
	}
	return values
}

// ModelInfo returns static metadata about the configured model.
func (p *AnthropicProvider) ModelInfo() ModelMeta {
	return ModelMeta{
		ID:       p.model,
		Provider: "anthropic",
		Version:  apiVersion,
	}
}

// HealthCheck verifies the API is reachable via GET /v1/models.
func (p *AnthropicProvider) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("anthropic health: build request: %w", err)
	}
	httpReq.Header.Set(headerAPIKey, p.apiKey)
	httpReq.Header.Set(headerVersion, apiVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("anthropic health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("anthropic health: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// decodeAPIError turns a non-200 response into a descriptive error.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr anthropicErrorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("anthropic chat: %s (%s, status %d)", apiErr.Error.Message, apiErr.Error.Type, resp.StatusCode)
	}
	return fmt.Errorf("anthropic chat: unexpected status %d", resp.StatusCode)
}
