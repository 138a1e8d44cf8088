// internal/validation/python.go
package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"

	"github.com/xkilldash9x/vizgen-cli/internal/config"
)

// ErrSyntax is wrapped by the error Check returns in strict mode.
var ErrSyntax = errors.New("generated code has syntax errors")

// Diagnostic locates the first syntax problem found in a program.
type Diagnostic struct {
	Line    int // 1-indexed
	Column  int // 0-indexed, in bytes
	Kind    string
	Snippet string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d, column %d: %s near %q", d.Line, d.Column, d.Kind, d.Snippet)
}

// Validator parses Python source with tree-sitter.
type Validator struct {
	mode   config.ValidationMode
	logger *zap.Logger
}

func NewValidator(mode config.ValidationMode, logger *zap.Logger) *Validator {
	if mode == "" {
		mode = config.ValidationWarn
	}
	return &Validator{mode: mode, logger: logger.Named("validator")}
}

// Mode reports the configured validation mode.
func (v *Validator) Mode() config.ValidationMode {
	return v.mode
}

// Check parses code according to the configured mode. A nil Diagnostic means
// the code parsed cleanly or validation is off. In strict mode a syntax error
// is also returned as an error wrapping ErrSyntax.
func (v *Validator) Check(ctx context.Context, code string) (*Diagnostic, error) {
	if v.mode == config.ValidationOff {
		return nil, nil
	}

	diag, err := Parse(ctx, code)
	if err != nil {
		return nil, err
	}
	if diag == nil {
		return nil, nil
	}

	if v.mode == config.ValidationStrict {
		v.logger.Warn("Rejecting generated code", zap.Stringer("diagnostic", diag))
		return diag, fmt.Errorf("%w: %s", ErrSyntax, diag)
	}
	v.logger.Warn("Generated code has syntax errors; storing it anyway", zap.Stringer("diagnostic", diag))
	return diag, nil
}

// Parse runs the Python grammar over code and returns the first error node, if any.
func Parse(ctx context.Context, code string) (*Diagnostic, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	source := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter failed to parse code: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	node := firstErrorNode(root)
	if node == nil {
		node = root
	}
	kind := "syntax error"
	if node.IsMissing() {
		kind = "missing " + node.Type()
	}
	point := node.StartPoint()
	return &Diagnostic{
		Line:    int(point.Row) + 1,
		Column:  int(point.Column),
		Kind:    kind,
		Snippet: lineAt(source, int(point.Row)),
	}, nil
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

func lineAt(source []byte, row int) string {
	lines := strings.Split(string(source), "\n")
	if row < 0 || row >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[row])
}
