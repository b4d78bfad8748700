package internaldefs

import (
	authclient "github.com/HugoQuintal01/pocketbase-login-use-case"
)

// CounterDef binds a core metric ID to its exported name and help text.
type CounterDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its exported name and help text.
type HistogramDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter in a fixed order.
var CounterDefs = []CounterDef{
	{ID: authclient.MetricSignInSuccess, Name: "authclient_sign_in_success_total", Help: "Successful password sign-ins."},
	{ID: authclient.MetricSignInFailure, Name: "authclient_sign_in_failure_total", Help: "Failed password sign-ins."},
	{ID: authclient.MetricRegisterSuccess, Name: "authclient_register_success_total", Help: "Successful registrations."},
	{ID: authclient.MetricRegisterFailure, Name: "authclient_register_failure_total", Help: "Failed registrations."},
	{ID: authclient.MetricValidationRejected, Name: "authclient_validation_rejected_total", Help: "Submissions rejected before any backend call."},
	{ID: authclient.MetricSubmissionPending, Name: "authclient_submission_pending_total", Help: "Submissions rejected while another was outstanding."},
	{ID: authclient.MetricSocialSuccess, Name: "authclient_social_success_total", Help: "Successful social sign-ins."},
	{ID: authclient.MetricSocialFailure, Name: "authclient_social_failure_total", Help: "Failed social sign-ins."},
	{ID: authclient.MetricSocialCancelled, Name: "authclient_social_cancelled_total", Help: "Social sign-ins abandoned by the user."},
	{ID: authclient.MetricResetRequested, Name: "authclient_reset_requested_total", Help: "Accepted password-reset requests."},
	{ID: authclient.MetricResetFailure, Name: "authclient_reset_failure_total", Help: "Failed password-reset requests."},
	{ID: authclient.MetricReauthFailure, Name: "authclient_reauth_failure_total", Help: "Failed reauthentications before a sensitive operation."},
	{ID: authclient.MetricPasswordChangeSuccess, Name: "authclient_password_change_success_total", Help: "Completed password changes."},
	{ID: authclient.MetricPasswordChangeFailure, Name: "authclient_password_change_failure_total", Help: "Password changes rejected after reauthentication."},
	{ID: authclient.MetricAccountDeleteSuccess, Name: "authclient_account_delete_success_total", Help: "Completed account deletions."},
	{ID: authclient.MetricAccountDeleteFailure, Name: "authclient_account_delete_failure_total", Help: "Account deletions rejected after reauthentication."},
	{ID: authclient.MetricSignOut, Name: "authclient_sign_out_total", Help: "Explicit sign-outs."},
	{ID: authclient.MetricSessionChanges, Name: "authclient_session_changes_total", Help: "Session changes reported by the backend."},
}

// HistogramDefs enumerates every exported histogram in a fixed order.
var HistogramDefs = []HistogramDef{
	{ID: authclient.MetricSubmitLatency, Name: "authclient_submit_latency_seconds", Help: "Submit round-trip latency histogram."},
}

// HistogramBounds are the upper bucket boundaries in seconds, as rendered in
// Prometheus le labels.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds using characters legal in
// OTel instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
