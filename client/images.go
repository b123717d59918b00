package client

import (
	"context"
	"net/http"

	"github.com/jemaristudio/eshop-go/core"
	"github.com/jemaristudio/eshop-go/transport"
)

// FetchImage downloads raw image bytes from the CDN. Image URLs are
// pre-signed by the catalog endpoints, so no auth header is sent.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	const op = "client.FetchImage"
	ctx, span := c.startSpan(ctx, "eshop.fetch_image")
	defer span.End()

	if imageURL == "" {
		return nil, &core.APIError{Op: op, Kind: "validation", Message: "image url can't be empty", Err: core.ErrValidation}
	}

	resp, err := c.transport.SendBytes(ctx, transport.Request{
		URL:    imageURL,
		Method: http.MethodGet,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return nil, transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "image fetch failed")
		span.RecordError(srvErr)
		return nil, srvErr
	}
	if len(resp.Bytes) == 0 {
		return nil, &core.APIError{Op: op, Kind: "decode", Message: "empty image body", Err: core.ErrDecode}
	}
	return resp.Bytes, nil
}
