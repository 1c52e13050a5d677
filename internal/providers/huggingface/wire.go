package huggingface

// Wire types for the text-generation task (§6.2.3). Other tasks
// (feature-extraction, automatic-speech-recognition, text-to-image) have
// simpler ad hoc shapes handled directly in tasks.go.

type generateRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generateParameters   `json:"parameters"`
	Stream     bool                 `json:"stream,omitempty"`
}

type generateParameters struct {
	Temperature       *float64 `json:"temperature,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	TopK              *int     `json:"top_k,omitempty"`
	MaxNewTokens      *int     `json:"max_new_tokens,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
	StopSequences     []string `json:"stop,omitempty"`
	ReturnFullText    bool     `json:"return_full_text"`
}

// generateResponseItem is one element of the non-streamed shape: a
// one-element array for single-input requests.
type generateResponseItem struct {
	GeneratedText string `json:"generated_text"`
}

// streamEvent is one text-generation-inference SSE frame.
type streamEvent struct {
	Token struct {
		Text    string `json:"text"`
		Special bool   `json:"special"`
	} `json:"token"`
	GeneratedText *string `json:"generated_text"`
	Details       *struct {
		FinishReason string `json:"finish_reason"`
	} `json:"details"`
}

type hfErrorBody struct {
	Error string `json:"error"`
}
