package flows

import (
	"context"
	"errors"
)

// SocialMetrics carries metric IDs for the social sign-in flow.
type SocialMetrics struct {
	Success   int
	Failure   int
	Cancelled int
}

// SocialErrors carries host-level sentinel errors for the social sign-in
// flow.
type SocialErrors struct {
	NotReady  error
	Cancelled error
}

// SocialDeps captures social sign-in dependencies.
type SocialDeps struct {
	SignIn          func(ctx context.Context, providerID string) error
	MapBackendError func(error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, eventType string, success bool, email string, cause error, meta func() map[string]string)

	Metrics SocialMetrics
	Event   string
	Errors  SocialErrors
}

// RunSocialSignIn delegates the provider interaction to the backend and maps
// the outcome. A cancelled provider flow counts separately from a failed one
// but both surface as errors to the caller.
func RunSocialSignIn(ctx context.Context, providerID string, deps SocialDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.SignIn == nil || deps.MapBackendError == nil {
		return deps.Errors.NotReady
	}

	err := deps.SignIn(ctx, providerID)
	if err == nil {
		deps.MetricInc(deps.Metrics.Success)
		deps.EmitAudit(ctx, deps.Event, true, "", nil, func() map[string]string {
			return map[string]string{"provider": providerID}
		})
		return nil
	}

	mapped := deps.MapBackendError(err)
	if errors.Is(mapped, deps.Errors.Cancelled) {
		deps.MetricInc(deps.Metrics.Cancelled)
	} else {
		deps.MetricInc(deps.Metrics.Failure)
	}
	deps.EmitAudit(ctx, deps.Event, false, "", err, func() map[string]string {
		return map[string]string{"provider": providerID}
	})
	return mapped
}
