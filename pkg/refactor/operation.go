package refactor

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnana997/refract/pkg/text"
)

// Operation is the lifecycle every refactoring implements.
//
// Validate reports whether the operation can run against the context.
// Preview computes the edits without side effects; calling it twice on the
// same context yields the same edits. Apply generates the preview, splices
// the edits bottom-to-top, writes the file, and updates the context buffer.
type Operation interface {
	Name() string
	Validate(ctx *Context) (ValidationResult, error)
	Preview(ctx *Context) (*Preview, error)
	Apply(ctx *Context) (*Result, error)
}

// Execute validates and applies in one step. An invalid result becomes an
// ErrInvalidConfig with the messages joined by "; ".
func Execute(op Operation, ctx *Context) (*Result, error) {
	validation, err := op.Validate(ctx)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(validation.Errors, "; "))
	}
	return op.Apply(ctx)
}

// DryRun returns the preview diff without applying anything.
func DryRun(op Operation, ctx *Context) (string, error) {
	preview, err := op.Preview(ctx)
	if err != nil {
		return "", err
	}
	return preview.Diff, nil
}

// Runner drives operations with optional dry-run mode.
type Runner struct {
	DryRun bool

	logger *slog.Logger
}

// NewRunner creates a runner that applies operations for real.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// WithDryRun switches the runner to preview-only mode.
func (r *Runner) WithDryRun() *Runner {
	r.DryRun = true
	return r
}

// Run validates the operation, logs any warnings, then either previews
// (dry-run) or applies.
func (r *Runner) Run(op Operation, ctx *Context) (*Result, error) {
	validation, err := op.Validate(ctx)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(validation.Errors, "; "))
	}

	for _, warning := range validation.Warnings {
		r.logger.Warn("validation warning",
			"operation", op.Name(),
			"warning", warning)
	}

	if r.DryRun {
		preview, err := op.Preview(ctx)
		if err != nil {
			return nil, err
		}
		return Success(fmt.Sprintf("[DRY RUN] Would apply: %s\n%s", op.Name(), preview.Diff)), nil
	}

	return op.Apply(ctx)
}

// applyPreview splices a preview's edits into the context buffer, writes the
// target file, and returns a result. Used by every single-file operation;
// MoveToFile manages its two files itself.
func applyPreview(ctx *Context, preview *Preview, description string) (*Result, error) {
	newSource := text.ApplyEdits(ctx.Source, preview.Edits)

	if err := os.WriteFile(ctx.TargetFile, []byte(newSource), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ctx.TargetFile, err)
	}
	ctx.Source = newSource

	applied := make([]text.Edit, len(preview.Edits))
	copy(applied, preview.Edits)
	text.SortDescending(applied)

	return Success(description).
		WithFile(ctx.TargetFile).
		WithEdits(applied), nil
}
