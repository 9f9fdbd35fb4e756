package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/replicate/replicate-go"
)

const (
	// DefaultReplicateBaseURL is the Replicate API root.
	DefaultReplicateBaseURL = "https://api.replicate.com/v1"

	// DefaultReplicateModel is the model used for recommendations.
	DefaultReplicateModel = "openai/gpt-5"

	// PlaceholderReplicateToken is the sample token shipped in example
	// configuration. It is treated as unset.
	PlaceholderReplicateToken = "your_replicate_api_token_here"

	defaultPollInterval = 500 * time.Millisecond
	defaultMaxRetries   = 2
	defaultRetryBackoff = 500 * time.Millisecond
)

// ReplicateGenerator generates text through the Replicate predictions API.
type ReplicateGenerator struct {
	client          *replicate.Client
	owner           string
	name            string
	pollInterval    time.Duration
	maxTokens       int
	temperature     float64
	reasoningEffort string

	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
}

// ReplicateOption configures a ReplicateGenerator.
type ReplicateOption func(*ReplicateGenerator)

// WithReplicateBaseURL overrides the API root.
func WithReplicateBaseURL(u string) ReplicateOption {
	return func(g *ReplicateGenerator) {
		if u != "" {
			g.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithReplicateModel overrides the model ("owner/name"). Values without an
// owner are ignored.
func WithReplicateModel(model string) ReplicateOption {
	return func(g *ReplicateGenerator) {
		owner, name, ok := strings.Cut(model, "/")
		if ok && owner != "" && name != "" {
			g.owner, g.name = owner, name
		}
	}
}

// WithReplicateHTTPClient sets the HTTP client.
func WithReplicateHTTPClient(c *http.Client) ReplicateOption {
	return func(g *ReplicateGenerator) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithPollInterval sets how often a pending prediction is polled.
func WithPollInterval(d time.Duration) ReplicateOption {
	return func(g *ReplicateGenerator) {
		if d > 0 {
			g.pollInterval = d
		}
	}
}

// WithReplicateRetries sets how many times the client retries rate-limited
// requests and the pause between attempts.
func WithReplicateRetries(n int, backoff time.Duration) ReplicateOption {
	return func(g *ReplicateGenerator) {
		if n >= 0 {
			g.maxRetries = n
		}
		if backoff > 0 {
			g.retryBackoff = backoff
		}
	}
}

// NewReplicateGenerator creates a generator authenticated with token. An
// empty or placeholder token returns ErrNoToken.
func NewReplicateGenerator(token string, opts ...ReplicateOption) (*ReplicateGenerator, error) {
	if !ValidReplicateToken(token) {
		return nil, ErrNoToken
	}
	owner, name, _ := strings.Cut(DefaultReplicateModel, "/")
	g := &ReplicateGenerator{
		owner:           owner,
		name:            name,
		pollInterval:    defaultPollInterval,
		maxTokens:       200,
		temperature:     0.7,
		reasoningEffort: "medium",
		baseURL:         DefaultReplicateBaseURL,
		maxRetries:      defaultMaxRetries,
		retryBackoff:    defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(g)
	}

	clientOpts := []replicate.ClientOption{
		replicate.WithToken(token),
		replicate.WithBaseURL(g.baseURL),
		replicate.WithRetryPolicy(g.maxRetries, &replicate.ConstantBackoff{Base: g.retryBackoff}),
	}
	if g.httpClient != nil {
		clientOpts = append(clientOpts, replicate.WithHTTPClient(g.httpClient))
	}
	client, err := replicate.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create replicate client: %w", err)
	}
	g.client = client
	return g, nil
}

// ValidReplicateToken reports whether token is set and not the placeholder.
func ValidReplicateToken(token string) bool {
	return token != "" && token != PlaceholderReplicateToken
}

// Generate creates a prediction, waits for it to finish and returns its
// output fragments.
func (g *ReplicateGenerator) Generate(ctx context.Context, prompt string) ([]string, error) {
	input := replicate.PredictionInput{
		"prompt":           prompt,
		"max_tokens":       g.maxTokens,
		"temperature":      g.temperature,
		"reasoning_effort": g.reasoningEffort,
	}

	p, err := g.client.CreatePredictionWithModel(ctx, g.owner, g.name, input, nil, false)
	if err != nil {
		return nil, classifyReplicateError(ctx, err)
	}

	if !p.Status.Terminated() {
		if err := g.client.Wait(ctx, p, replicate.WithPollingInterval(g.pollInterval)); err != nil {
			return nil, classifyReplicateError(ctx, err)
		}
	}

	if p.Status != replicate.Succeeded {
		return nil, NewFatalError(fmt.Errorf("prediction %s %s: %v", p.ID, p.Status, p.Error))
	}
	return outputFragments(p.Output)
}

// classifyReplicateError maps a client error to a transient or fatal error.
// A done context wins over whatever the client reported.
func classifyReplicateError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var apiErr *replicate.APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return classifyHTTPError(apiErr.Status, []byte(apiErr.Detail))
	}
	return NewTransientError(fmt.Errorf("replicate request failed: %w", err))
}

// outputFragments accepts either a list of string fragments or a single
// string, as decoded by the client.
func outputFragments(out any) ([]string, error) {
	switch v := out.(type) {
	case nil:
		return nil, NewFatalError(ErrEmptyOutput)
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		fragments := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, NewFatalError(fmt.Errorf("unsupported prediction output fragment %T", item))
			}
			fragments = append(fragments, s)
		}
		return fragments, nil
	default:
		return nil, NewFatalError(fmt.Errorf("unsupported prediction output format %T", out))
	}
}
