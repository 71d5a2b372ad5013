package inference

import (
	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/generativeaiinference"
)

// Params are the sampling parameters of a single chat call.
type Params struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	TopK             int
}

// AskOption overrides one sampling parameter for a single call.
type AskOption func(*Params)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) AskOption {
	return func(p *Params) { p.Temperature = t }
}

// WithMaxTokens sets the maximum number of generated tokens.
func WithMaxTokens(n int) AskOption {
	return func(p *Params) { p.MaxTokens = n }
}

// WithTopP sets the nucleus sampling threshold.
func WithTopP(v float64) AskOption {
	return func(p *Params) { p.TopP = v }
}

// WithFrequencyPenalty sets the frequency penalty.
func WithFrequencyPenalty(v float64) AskOption {
	return func(p *Params) { p.FrequencyPenalty = v }
}

// WithPresencePenalty sets the presence penalty.
func WithPresencePenalty(v float64) AskOption {
	return func(p *Params) { p.PresencePenalty = v }
}

// WithTopK sets top-k sampling. 0 leaves it unset.
func WithTopK(k int) AskOption {
	return func(p *Params) { p.TopK = k }
}

// buildChatRequest packages one prompt into a generic-format, on-demand chat
// request. Nothing from earlier calls is carried over.
func buildChatRequest(compartmentID, modelID, prompt string, p Params) generativeaiinference.ChatRequest {
	chat := generativeaiinference.GenericChatRequest{
		Messages: []generativeaiinference.Message{
			generativeaiinference.UserMessage{
				Content: []generativeaiinference.ChatContent{
					generativeaiinference.TextContent{Text: common.String(prompt)},
				},
			},
		},
		MaxTokens:        common.Int(p.MaxTokens),
		Temperature:      common.Float64(p.Temperature),
		TopP:             common.Float64(p.TopP),
		FrequencyPenalty: common.Float64(p.FrequencyPenalty),
		PresencePenalty:  common.Float64(p.PresencePenalty),
		IsStream:         common.Bool(false),
	}
	if p.TopK > 0 {
		chat.TopK = common.Int(p.TopK)
	}

	noRetry := common.NoRetryPolicy()

	return generativeaiinference.ChatRequest{
		ChatDetails: generativeaiinference.ChatDetails{
			CompartmentId: common.String(compartmentID),
			ServingMode: generativeaiinference.OnDemandServingMode{
				ModelId: common.String(modelID),
			},
			ChatRequest: chat,
		},
		RequestMetadata: common.RequestMetadata{
			RetryPolicy: &noRetry,
		},
	}
}
