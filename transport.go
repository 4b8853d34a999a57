package client

import (
	"net/http"

	"github.com/google/uuid"
)

// sessionTransport adds the bearer token of the current session and a
// request id to every outgoing request.
type sessionTransport struct {
	base  http.RoundTripper
	token func() string
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	if tok := t.token(); tok != "" {
		cloned.Header.Set("Authorization", "Bearer "+tok)
	}
	if cloned.Header.Get("X-Request-ID") == "" {
		cloned.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base.RoundTrip(cloned)
}
