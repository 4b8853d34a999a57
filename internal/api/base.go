// Package api holds one thin wrapper per backend endpoint. Every wrapper
// returns an envelope.Result; none of them return bare errors.
package api

import (
	"fmt"
	"net/url"
)

const prefix = "/api/v1"

// path formats an endpoint under prefix. String arguments are escaped as
// single path segments.
func path(format string, args ...any) string {
	for i, a := range args {
		if s, ok := a.(string); ok {
			args[i] = url.PathEscape(s)
		}
	}
	return prefix + fmt.Sprintf(format, args...)
}
