package api

import (
	"context"
	"io"
	"net/http"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/types"
)

// Upload sends one file as multipart/form-data under the "file" field.
func Upload(ctx context.Context, c *envelope.Caller, name string, r io.Reader, fields map[string]string) envelope.Result[types.Upload] {
	return envelope.Call[types.Upload](ctx, c, envelope.Request{
		Method: http.MethodPost,
		Path:   path("/uploads"),
		Files:  []envelope.File{{Param: "file", Name: name, Reader: r}},
		Form:   fields,
		Op:     "upload",
	})
}

// SetProductImage uploads an image and attaches it to a product.
func SetProductImage(ctx context.Context, c *envelope.Caller, productID int64, name string, r io.Reader) envelope.Result[types.Product] {
	return envelope.Call[types.Product](ctx, c, envelope.Request{
		Method: http.MethodPost,
		Path:   path("/products/%d/image", productID),
		Files:  []envelope.File{{Param: "image", Name: name, Reader: r}},
		Op:     "set product image",
	})
}
