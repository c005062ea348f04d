// Package tools is the tool-calling collaborator. Tool execution is
// not implemented yet; the runner validates that every requested tool
// name resolves to a registered capability and then reports what it
// would do. Unresolvable names are an error, never a silent no-op.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hyperchat/internal/history"
)

// ErrUnresolvable marks a requested tool name with no registered
// capability behind it.
var ErrUnresolvable = errors.New("unresolvable tool")

// Runner resolves tool names and produces a final answer.
type Runner struct {
	registry map[string]bool
}

// NewRunner registers the known tool capabilities.
func NewRunner(available []string) *Runner {
	registry := make(map[string]bool, len(available))
	for _, name := range available {
		registry[name] = true
	}
	return &Runner{registry: registry}
}

// DefaultRunner knows the capabilities the backends currently declare.
func DefaultRunner() *Runner {
	return NewRunner([]string{"weather", "inventory"})
}

// Run checks that each requested tool resolves, then returns the
// placeholder final answer.
// TODO: execute resolved tools (weather and inventory need live API
// calls) and fold their output into the answer.
func (r *Runner) Run(ctx context.Context, model string, toolNames []string, message string, rawHistory []history.RawTurn) (string, error) {
	for _, name := range toolNames {
		if !r.registry[name] {
			return "", fmt.Errorf("%w %q", ErrUnresolvable, name)
		}
	}
	return fmt.Sprintf("[TOOLS MODEL %s] Would call tools [%s] to answer: '%s'",
		model, strings.Join(toolNames, ", "), message), nil
}
