package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"
	"go.uber.org/zap"
)

const accessQuery = "data.research.access.allow"

// DefaultPolicy is the built-in route access policy. Reads are public except the admin area and the
// inquiry inbox; the listed public writes are open to everyone; everything else needs a session.
const DefaultPolicy = `package research.access

default allow := false

safe_methods := {"GET", "HEAD", "OPTIONS"}

allow if input.authenticated

allow if {
	input.method in safe_methods
	not admin_area
}

allow if {
	input.method == "POST"
	public_write
}

admin_area if {
	input.segments[0] == "api"
	input.segments[1] == "admin"
}

admin_area if input.segments == ["api", "contact"]

public_write if input.segments == ["api", "contact"]

public_write if input.segments == ["api", "auth", "request-otp"]

public_write if input.segments == ["api", "auth", "verify-otp"]

public_write if input.segments == ["api", "auth", "logout"]

public_write if {
	count(input.segments) == 4
	input.segments[0] == "api"
	input.segments[1] == "posts"
	input.segments[3] in {"comments", "like", "view"}
}
`

// OPAEvaluator evaluates route access with a prepared Rego query.
type OPAEvaluator struct {
	query  rego.PreparedEvalQuery
	logger *zap.Logger
}

// NewOPAEvaluator compiles module (DefaultPolicy when empty) and prepares the allow query.
func NewOPAEvaluator(ctx context.Context, module string, logger *zap.Logger) (*OPAEvaluator, error) {
	if strings.TrimSpace(module) == "" {
		module = DefaultPolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pq, err := rego.New(
		rego.Query(accessQuery),
		rego.Module("access.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: compile: %w", err)
	}
	return &OPAEvaluator{query: pq, logger: logger}, nil
}

// LoadOPAEvaluator reads a Rego module from path, or uses DefaultPolicy when path is empty.
func LoadOPAEvaluator(ctx context.Context, path string, logger *zap.Logger) (*OPAEvaluator, error) {
	if path == "" {
		return NewOPAEvaluator(ctx, "", logger)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	return NewOPAEvaluator(ctx, string(raw), logger)
}

// Authorize returns whether the request is allowed. Evaluation errors deny.
func (e *OPAEvaluator) Authorize(ctx context.Context, in Input) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"method":        strings.ToUpper(in.Method),
		"path":          in.Path,
		"segments":      segments(in.Path),
		"authenticated": in.Authenticated,
		"subject":       in.Subject,
	}))
	if err != nil {
		e.logger.Error("policy: evaluation failed", zap.String("path", in.Path), zap.Error(err))
		return false, fmt.Errorf("policy: eval: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, _ := rs[0].Expressions[0].Value.(bool)
	return allowed, nil
}

// HealthCheck verifies the prepared query evaluates and yields a boolean.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"method": "GET", "path": "/healthz", "segments": []string{"healthz"}, "authenticated": false,
	}))
	if err != nil {
		return fmt.Errorf("eval access policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	if _, ok := rs[0].Expressions[0].Value.(bool); !ok {
		return fmt.Errorf("policy query returned non-boolean result")
	}
	return nil
}
