package planner

import "context"

// Generator is the external generation source. It receives a fully built
// prompt and returns the raw model output; the builder owns all parsing
// and validation of that output.
type Generator interface {
	// Complete sends a system/user message pair and returns the model's
	// text response.
	Complete(ctx context.Context, system, user string) (string, error)
}
