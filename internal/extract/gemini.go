package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"chitieu/internal/core"
	applog "chitieu/internal/log"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 15 * time.Second
)

// generateFunc sends one prompt to the model and returns its text answer.
type generateFunc func(ctx context.Context, model, prompt string) (string, error)

type GeminiExtractor struct {
	generate generateFunc
	model    string
	timeout  time.Duration
	logger   *applog.Logger
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *applog.Logger
}

// NewGeminiExtractor builds an extractor backed by the Gemini API.
func NewGeminiExtractor(ctx context.Context, cfg GeminiConfig) (*GeminiExtractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	generate := func(ctx context.Context, model, prompt string) (string, error) {
		contents := []*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		}
		resp, err := client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
		return resp.Text(), nil
	}

	return newExtractor(generate, cfg), nil
}

func newExtractor(generate generateFunc, cfg GeminiConfig) *GeminiExtractor {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = applog.Discard()
	}
	return &GeminiExtractor{
		generate: generate,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger.WithComponent(applog.ComponentExtract),
	}
}

// Extract asks the model for a candidate. Any failure, timeout included, is
// reported as ErrExtractionFailed; there are no retries.
func (g *GeminiExtractor) Extract(ctx context.Context, text string) (core.Candidate, error) {
	if strings.TrimSpace(text) == "" {
		return core.Candidate{}, ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := g.generate(ctx, g.model, BuildPrompt(text))
	if err != nil {
		g.logger.WarnContext(ctx, "Model call failed",
			applog.FieldOperation, applog.OpExtract,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldError, err)
		return core.Candidate{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	candidate, err := ParseResponse(raw)
	if err != nil {
		g.logger.WarnContext(ctx, "Unusable model response",
			applog.FieldOperation, applog.OpExtract,
			applog.FieldError, err)
		return core.Candidate{}, err
	}

	fields := applog.NewFields().
		WithOperation(applog.OpExtract).
		WithExpense(candidate.Amount, candidate.Category.String(), candidate.Confidence)
	fields[applog.FieldDuration] = time.Since(start).Milliseconds()
	g.logger.DebugContext(ctx, "Expense extracted", fields.ToSlice()...)

	return candidate, nil
}
