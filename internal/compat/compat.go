// Package compat exposes the chat client through an OpenAI-compatible
// /v1/chat/completions endpoint.
//
// Only the last message of an incoming conversation is forwarded; earlier
// turns are not sent. Request sampling parameters override the configured
// defaults when non-zero.
package compat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oracle/oci-go-sdk/v65/generativeaiinference"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/zalbiraw/ocichat/internal/inference"
)

const maxBodyBytes = 1 << 20

// Asker sends a prompt to a model. *inference.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, prompt, modelID string, opts ...inference.AskOption) (generativeaiinference.ChatResponse, error)
}

// Handler serves OpenAI-style chat completion requests.
type Handler struct {
	asker        Asker
	defaultModel string
	log          *zap.SugaredLogger
	now          func() time.Time
}

// New creates a handler. defaultModel is used when a request names no model.
func New(asker Asker, defaultModel string, log *zap.SugaredLogger) *Handler {
	return &Handler{
		asker:        asker,
		defaultModel: defaultModel,
		log:          log.Named("compat"),
		now:          time.Now,
	}
}

// Routes mounts the endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/v1/chat/completions", h.ChatCompletions)
}

// ChatCompletions handles POST /v1/chat/completions.
func (h *Handler) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.log.Warnw("failed to parse OpenAI request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_request_error", "Failed to parse OpenAI request")
		return
	}

	if req.Stream {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "streaming is not supported")
		return
	}

	prompt := lastMessage(req.Messages)
	if strings.TrimSpace(prompt) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "the last message must contain text")
		return
	}

	model := req.Model
	if model == "" {
		model = h.defaultModel
	}

	h.log.Debugw("OpenAI request parsed", "model", model, "messages", len(req.Messages))

	resp, err := h.asker.Ask(r.Context(), prompt, model, askOptions(req)...)
	if err != nil {
		h.log.Errorw("ask failed", "model", model, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}

	text, err := inference.FirstText(resp)
	if err != nil {
		h.log.Errorw("unexpected response shape", "model", model, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.toOpenAIResponse(resp, model, text))
}

// lastMessage extracts the last message as the prompt.
func lastMessage(messages []openai.ChatCompletionMessage) string {
	if len(messages) == 0 {
		return ""
	}
	last := messages[len(messages)-1]
	if last.Content != "" || len(last.MultiContent) == 0 {
		return last.Content
	}

	var parts []string
	for _, part := range last.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			parts = append(parts, part.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// askOptions turns the non-zero sampling parameters of req into overrides.
func askOptions(req openai.ChatCompletionRequest) []inference.AskOption {
	var opts []inference.AskOption
	if req.MaxTokens != 0 {
		opts = append(opts, inference.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature != 0 {
		opts = append(opts, inference.WithTemperature(float64(req.Temperature)))
	}
	if req.TopP != 0 {
		opts = append(opts, inference.WithTopP(float64(req.TopP)))
	}
	if req.FrequencyPenalty != 0 {
		opts = append(opts, inference.WithFrequencyPenalty(float64(req.FrequencyPenalty)))
	}
	if req.PresencePenalty != 0 {
		opts = append(opts, inference.WithPresencePenalty(float64(req.PresencePenalty)))
	}
	return opts
}

func (h *Handler) toOpenAIResponse(resp generativeaiinference.ChatResponse, model, text string) openai.ChatCompletionResponse {
	id := "chatcmpl-" + fmt.Sprint(h.now().UnixNano())
	if resp.OpcRequestId != nil && *resp.OpcRequestId != "" {
		id = "chatcmpl-" + *resp.OpcRequestId
	}
	if resp.ChatResult.ModelId != nil && *resp.ChatResult.ModelId != "" {
		model = *resp.ChatResult.ModelId
	}

	return openai.ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: h.now().Unix(),
		Model:   model,
		Choices: []openai.ChatCompletionChoice{{
			Index: 0,
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: text,
			},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, openai.ErrorResponse{
		Error: &openai.APIError{
			Type:    errType,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
