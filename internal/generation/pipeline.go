package generation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Generator sends one request to a language model and returns the raw text it produced
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// UnavailableGenerator fails every request. It stands in when no model is configured so
// the rest of the API keeps working.
type UnavailableGenerator struct {
	Reason string
}

func (u UnavailableGenerator) Generate(ctx context.Context, req Request) (string, error) {
	return "", &ServiceError{Scope: req.Scope, StatusCode: http.StatusServiceUnavailable, Err: errors.New(u.Reason)}
}

// Pipeline runs a request through a Generator and parses the answer. Each run is bounded
// by the pipeline timeout as well as the caller's context. Failed runs are not retried.
type Pipeline struct {
	gen     Generator
	timeout time.Duration
	logger  zerolog.Logger
}

func NewPipeline(gen Generator, timeout time.Duration, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		gen:     gen,
		timeout: timeout,
		logger:  logger.With().Str("component", "generation_pipeline").Logger(),
	}
}

func (p *Pipeline) Run(ctx context.Context, req Request) (any, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.gen.Generate(ctx, req)
	if err != nil {
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			svcErr = &ServiceError{Err: err}
		}
		svcErr.Scope = req.Scope
		p.logger.Error().Err(svcErr).Str("scope", string(req.Scope)).Dur("duration", time.Since(start)).Msg("Generation request failed")
		return nil, svcErr
	}

	v, err := Parse(text)
	if err != nil {
		var malformed *MalformedOutputError
		if errors.As(err, &malformed) {
			malformed.Scope = req.Scope
		}
		p.logger.Warn().Err(err).Str("scope", string(req.Scope)).Int("output_len", len(text)).Msg("Generation output is not JSON")
		return nil, err
	}

	p.logger.Debug().Str("scope", string(req.Scope)).Dur("duration", time.Since(start)).Msg("Generation request completed")
	return v, nil
}
