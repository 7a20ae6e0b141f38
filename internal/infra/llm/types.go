// Shared types between the provider interface and adapters.
package llm

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string // "user" | "assistant"
	Content string
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int

	// Betas contributes session-dependent beta header values. Applied by the
	// adapter immediately before transmitting; nil means no session
	// contribution.
	Betas BetaSource
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string // The assistant message text.
	StopReason string // e.g. "end_turn" | "max_tokens"
	Tokens     int    // Total tokens consumed (input + output).
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID       string // e.g. "claude-sonnet-4-5"
	Provider string // e.g. "anthropic"
	Version  string // API version date
}
