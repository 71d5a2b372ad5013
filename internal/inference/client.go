// Package inference wraps the OCI Generative AI inference SDK behind a single
// stateless operation: send one prompt, get one chat response back.
package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/oracle/oci-go-sdk/v65/generativeaiinference"
	"go.uber.org/zap"

	"github.com/zalbiraw/ocichat/internal/config"
)

// ChatAPI is the subset of the SDK client used here.
// *generativeaiinference.GenerativeAiInferenceClient satisfies it.
type ChatAPI interface {
	Chat(ctx context.Context, request generativeaiinference.ChatRequest) (generativeaiinference.ChatResponse, error)
}

// Client sends prompts to the configured model endpoint.
type Client struct {
	api ChatAPI
	cfg config.Config
	log *zap.SugaredLogger
}

// New creates a client around an existing ChatAPI.
func New(cfg config.Config, api ChatAPI, log *zap.SugaredLogger) *Client {
	return &Client{
		api: api,
		cfg: cfg,
		log: log.Named("inference"),
	}
}

// NewFromConfig builds the SDK inference client from cfg: credentials from the
// configured source, host pinned to cfg.Endpoint, and an HTTP client bounded by
// the connect and read timeouts.
func NewFromConfig(cfg config.Config, log *zap.SugaredLogger) (*Client, error) {
	provider, err := configurationProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load OCI credentials: %w", err)
	}

	sdk, err := generativeaiinference.NewGenerativeAiInferenceClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}
	sdk.Host = cfg.Endpoint
	sdk.HTTPClient = newHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout)

	log.Named("inference").Infow("inference client ready",
		"endpoint", cfg.Endpoint,
		"auth_type", cfg.AuthType,
		"profile", cfg.Profile,
	)

	return New(cfg, &sdk, log), nil
}

// Ask sends prompt to modelID as a single user message and returns the raw
// response. Sampling parameters default to the configured values and can be
// overridden with opts. Retries are disabled: one call, one outcome.
//
// Prompt emptiness is not checked here; that is the caller's job.
func (c *Client) Ask(ctx context.Context, prompt, modelID string, opts ...AskOption) (generativeaiinference.ChatResponse, error) {
	params := c.defaultParams()
	for _, opt := range opts {
		opt(&params)
	}

	request := buildChatRequest(c.cfg.CompartmentID, modelID, prompt, params)

	c.log.Debugw("sending chat request",
		"model_id", modelID,
		"prompt_len", len(prompt),
		"max_tokens", params.MaxTokens,
		"temperature", params.Temperature,
		"top_p", params.TopP,
	)
	start := time.Now()

	resp, err := c.api.Chat(ctx, request)
	if err != nil {
		c.log.Warnw("chat request failed", "model_id", modelID, "elapsed", time.Since(start), "error", err)
		return generativeaiinference.ChatResponse{}, fmt.Errorf("chat request failed: %w", err)
	}

	c.log.Infow("chat request completed",
		"model_id", modelID,
		"elapsed", time.Since(start),
		"opc_request_id", stringValue(resp.OpcRequestId),
	)
	return resp, nil
}

func (c *Client) defaultParams() Params {
	return Params{
		MaxTokens:        c.cfg.MaxTokens,
		Temperature:      c.cfg.Temperature,
		TopP:             c.cfg.TopP,
		FrequencyPenalty: c.cfg.FrequencyPenalty,
		PresencePenalty:  c.cfg.PresencePenalty,
		TopK:             c.cfg.TopK,
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
