package flows

import "context"

// ResetMetrics carries metric IDs for the password-reset flow.
type ResetMetrics struct {
	Requested int
	Failure   int
}

// ResetErrors carries host-level sentinel errors for the password-reset flow.
type ResetErrors struct {
	NotReady    error
	ResetFailed error
}

// ResetDeps captures password-reset request dependencies.
type ResetDeps struct {
	Send func(ctx context.Context, email string) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, eventType string, success bool, email string, cause error, meta func() map[string]string)

	Metrics ResetMetrics
	Event   string
	Errors  ResetErrors
}

// RunPasswordReset asks the backend to dispatch a reset message. Every
// failure collapses to the single reset sentinel so callers cannot probe
// which addresses exist; the underlying cause still reaches the audit trail.
func RunPasswordReset(ctx context.Context, email string, deps ResetDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Send == nil {
		return deps.Errors.NotReady
	}

	if err := deps.Send(ctx, email); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Event, false, email, err, nil)
		return deps.Errors.ResetFailed
	}

	deps.MetricInc(deps.Metrics.Requested)
	deps.EmitAudit(ctx, deps.Event, true, email, nil, nil)
	return nil
}
