package ai

import "context"

// Generator produces text from a prompt. Implemented by the gemini package
// and stubbed in tests.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
