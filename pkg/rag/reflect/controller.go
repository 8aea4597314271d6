package reflect

import (
	"context"
	"fmt"

	"club-assistant-be/internal/pkg/logger"
	"club-assistant-be/pkg/rag/grader"
	"club-assistant-be/pkg/store"
)

// Disclaimer is appended when every regeneration attempt still fails
// the grounding check.
const Disclaimer = "\n\n(Not: Bu bilgi dökümanlarımızda tam olarak bulunamadı. Lütfen kulüple direkt iletişime geçin.)"

const defaultMaxAttempts = 2

// Grader is the grounding check the controller runs on each candidate.
type Grader interface {
	Grade(ctx context.Context, generation string, passages []store.Passage) (*grader.Grade, error)
}

// Regenerator produces a stricter retry when the check fails.
type Regenerator interface {
	Regenerate(ctx context.Context, question string, passages []store.Passage) (string, error)
}

// Controller runs the bounded quality loop over a fresh generation:
// grade, and on failure regenerate up to maxAttempts times. When the
// attempts are exhausted the last generation is kept with Disclaimer
// appended. The returned count is the number of grading passes.
type Controller struct {
	grader      Grader
	regenerator Regenerator
	logger      logger.ILogger
	maxAttempts int
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxAttempts overrides the regeneration bound.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.maxAttempts = n
		}
	}
}

func NewController(g Grader, r Regenerator, log logger.ILogger, options ...Option) *Controller {
	c := &Controller{
		grader:      g,
		regenerator: r,
		logger:      log,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Reflect validates the generation against the passages, regenerating
// on failure. Grader and regenerator backend errors abort the loop and
// propagate.
func (c *Controller) Reflect(ctx context.Context, question, generation string, passages []store.Passage) (string, int, error) {
	attempts := 0
	for {
		grade, err := c.grader.Grade(ctx, generation, passages)
		if err != nil {
			return "", attempts, fmt.Errorf("reflection: %w", err)
		}
		attempts++

		if grade.BinaryScore {
			c.logger.Info("Reflection", "Quality check passed", map[string]interface{}{
				"attempts": attempts,
			})
			return generation, attempts, nil
		}

		c.logger.Warn("Reflection", "Hallucination detected", map[string]interface{}{
			"attempts":  attempts,
			"reasoning": grade.Reasoning,
		})

		if attempts > c.maxAttempts {
			return generation + Disclaimer, attempts, nil
		}

		generation, err = c.regenerator.Regenerate(ctx, question, passages)
		if err != nil {
			return "", attempts, fmt.Errorf("reflection: %w", err)
		}
	}
}
