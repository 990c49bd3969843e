package driven

import "errors"

// Error taxonomy shared by adapters and services. Adapters wrap these with
// context using fmt.Errorf("...: %w", Err...) and callers classify with errors.Is.
var (
	// ErrSignatureInvalid indicates a webhook body did not match its signature.
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrConfigMissing indicates the webhook secret or GitHub App credentials are not configured.
	ErrConfigMissing = errors.New("required configuration missing")

	// ErrSigning indicates the app assertion could not be signed.
	ErrSigning = errors.New("app assertion signing failed")

	// ErrUpstreamAuth indicates GitHub rejected a token request or the token itself.
	ErrUpstreamAuth = errors.New("upstream authentication failed")

	// ErrUpstream indicates GitHub answered a content request with an unexpected status.
	ErrUpstream = errors.New("upstream request failed")

	// ErrTransientNetwork indicates a timeout or connection failure on an outbound call.
	ErrTransientNetwork = errors.New("transient network error")

	// ErrParse indicates a workflow document is not valid YAML.
	ErrParse = errors.New("workflow parse error")
)
