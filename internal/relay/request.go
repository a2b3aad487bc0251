package relay

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound body for POST /api/chat. Messages and Prompt
// are mutually exclusive shapes; a non-empty Messages wins.
type ChatRequest struct {
	Messages []Turn         `json:"messages,omitempty"`
	Prompt   string         `json:"prompt,omitempty"`
	Model    string         `json:"model,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
	Stream   *bool          `json:"stream,omitempty"`
}

// Shape selects which upstream endpoint a payload targets.
type Shape int

const (
	// ShapeChat posts an ordered turn sequence to the chat endpoint.
	ShapeChat Shape = iota
	// ShapePrompt posts a single free-text prompt to the generate endpoint.
	ShapePrompt
)

// Payload is the normalized upstream request.
type Payload struct {
	Shape   Shape
	Model   string
	Turns   []Turn
	Prompt  string
	Stream  bool
	Options map[string]any
}

// Endpoint returns the upstream path for the payload's shape.
func (p Payload) Endpoint() string {
	if p.Shape == ShapeChat {
		return "/api/chat"
	}
	return "/api/generate"
}

type chatBody struct {
	Model    string         `json:"model"`
	Messages []Turn         `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options"`
}

type generateBody struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

// Body returns the JSON-serializable wire form of the payload.
func (p Payload) Body() any {
	if p.Shape == ShapeChat {
		return chatBody{Model: p.Model, Messages: p.Turns, Stream: p.Stream, Options: p.Options}
	}
	return generateBody{Model: p.Model, Prompt: p.Prompt, Stream: p.Stream, Options: p.Options}
}

// DefaultOptions returns the generation options applied when the caller
// supplies none. Caller-supplied options override key-by-key.
func DefaultOptions() map[string]any {
	return map[string]any{
		"num_ctx":     4096,
		"num_predict": 1024,
		"keep_alive":  "30m",
	}
}

// Normalize resolves an inbound request into an upstream payload. A
// non-empty turn sequence selects the chat shape; otherwise the prompt
// shape is used, with an empty prompt if none was given. Streaming is on
// unless the caller turned it off explicitly.
func Normalize(req ChatRequest, defaultModel string) Payload {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	stream := true
	if req.Stream != nil {
		stream = *req.Stream
	}
	opts := DefaultOptions()
	for k, v := range req.Options {
		opts[k] = v
	}
	p := Payload{Model: model, Stream: stream, Options: opts}
	if len(req.Messages) > 0 {
		p.Shape = ShapeChat
		p.Turns = req.Messages
	} else {
		p.Shape = ShapePrompt
		p.Prompt = req.Prompt
	}
	return p
}
