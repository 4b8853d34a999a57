package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/optionsrc"
)

// FetchOptions loads the raw option list behind endpoint. endpoint may be
// given with or without the /api/v1 prefix.
func FetchOptions(ctx context.Context, c *envelope.Caller, endpoint string, query map[string]string) envelope.Result[[]optionsrc.RawOption] {
	p := endpoint
	if !strings.HasPrefix(p, prefix) {
		p = prefix + "/" + strings.TrimLeft(p, "/")
	}
	return envelope.Call[[]optionsrc.RawOption](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   p,
		Query:  query,
		Op:     "fetch options",
	})
}
