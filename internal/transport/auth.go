package transport

import "net/http"

// Authenticator applies an access credential to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, key string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {
	// No authentication applied
}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, key string) {
	req.Header.Set("Authorization", "Bearer "+key)
}

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, key string) {
	req.Header.Set(a.Header, key)
}

// QueryAuth implements access key as query parameter authentication,
// the scheme the scheduling API uses.
type QueryAuth struct {
	Param string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request, key string) {
	if req.URL == nil {
		return
	}

	query := req.URL.Query()
	query.Set(a.Param, key)
	req.URL.RawQuery = query.Encode()
}
