package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jemaristudio/eshop-go/core"
	"github.com/jemaristudio/eshop-go/transport"
)

// ProductQuery narrows a product listing. The zero value lists the
// first page unfiltered.
type ProductQuery struct {
	// Search is an optional substring filter, URL-encoded on the wire.
	Search string
	// CategoryID filters by category. Empty or core.CategoryAll ("0")
	// means no filter.
	CategoryID string
}

// Products lists the catalog: first page, fixed page size, newest first.
// Requires an authenticated session.
func (c *Client) Products(ctx context.Context, query ProductQuery) ([]Product, error) {
	const op = "client.Products"
	ctx, span := c.startSpan(ctx, "eshop.products")
	defer span.End()

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	params := url.Values{}
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(c.config.PageLimit))
	params.Set("sort", "created_at")
	params.Set("order", "DESC")
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.CategoryID != "" && query.CategoryID != core.CategoryAll {
		params.Set("categoryId", query.CategoryID)
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("products") + "?" + params.Encode(),
		Method:  http.MethodGet,
		Headers: headers,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return nil, transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "product listing failed")
		span.RecordError(srvErr)
		return nil, srvErr
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	products, err := decodeProductList(env.Data)
	if err != nil {
		c.logFailure(ctx, op, "decode", err)
		span.RecordError(err)
		return nil, decodeError(op, err)
	}

	span.SetAttribute("eshop.product_count", len(products))
	return products, nil
}

// ProductByID fetches one product with its variants and categories.
func (c *Client) ProductByID(ctx context.Context, id string) (*Product, error) {
	const op = "client.ProductByID"
	ctx, span := c.startSpan(ctx, "eshop.product_detail")
	defer span.End()

	if id == "" {
		return nil, &core.APIError{Op: op, Kind: "validation", Message: "product id can't be empty", Err: core.ErrValidation}
	}

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("products/" + url.PathEscape(id)),
		Method:  http.MethodGet,
		Headers: headers,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return nil, transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "product lookup failed")
		span.RecordError(srvErr)
		return nil, srvErr
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	product, err := decodeProduct(env.Data)
	if err != nil {
		c.logFailure(ctx, op, "decode", err)
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	return &product, nil
}

// Categories lists all catalog categories. No caching across calls -
// each screen visit fetches fresh.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	const op = "client.Categories"
	ctx, span := c.startSpan(ctx, "eshop.categories")
	defer span.End()

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("categories"),
		Method:  http.MethodGet,
		Headers: headers,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return nil, transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "category listing failed")
		span.RecordError(srvErr)
		return nil, srvErr
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	categories, err := decodeCategoryList(env.Data)
	if err != nil {
		c.logFailure(ctx, op, "decode", err)
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	return categories, nil
}
