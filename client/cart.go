package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jemaristudio/eshop-go/core"
	"github.com/jemaristudio/eshop-go/transport"
)

type addToCartRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

type validateCouponRequest struct {
	Code string `json:"code"`
}

type checkoutRequest struct {
	CouponCode string `json:"couponCode,omitempty"`
}

// CartItems fetches the server-side cart for the authenticated user.
func (c *Client) CartItems(ctx context.Context) ([]CartItem, error) {
	const op = "client.CartItems"
	ctx, span := c.startSpan(ctx, "eshop.cart_items")
	defer span.End()

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("carts"),
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
		srvErr := serverError(op, resp, "cart fetch failed")
		span.RecordError(srvErr)
		return nil, srvErr
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	items, err := decodeCartItems(env.Data)
	if err != nil {
		c.logFailure(ctx, op, "decode", err)
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	span.SetAttribute("eshop.cart_size", len(items))
	return items, nil
}

// AddToCart puts a variant into the server-side cart. Quantities below
// one are rejected locally.
func (c *Client) AddToCart(ctx context.Context, variantID string, quantity int) error {
	const op = "client.AddToCart"
	ctx, span := c.startSpan(ctx, "eshop.add_to_cart")
	defer span.End()

	if variantID == "" {
		return &core.APIError{Op: op, Kind: "validation", Message: "variant id can't be empty", Err: core.ErrValidation}
	}
	if quantity < 1 {
		return &core.APIError{Op: op, Kind: "validation", Message: "quantity must be at least 1", Err: core.ErrValidation}
	}

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return err
	}

	body, err := json.Marshal(addToCartRequest{VariantID: variantID, Quantity: quantity})
	if err != nil {
		return &core.APIError{Op: op, Kind: "encode", Err: err}
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("carts"),
		Method:  http.MethodPost,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "add to cart failed")
		span.RecordError(srvErr)
		return srvErr
	}
	return nil
}

// UpdateCartQuantity sets the quantity of an existing cart line.
// Values below one clamp to one - the line is never removed implicitly;
// callers remove explicitly via RemoveFromCart.
func (c *Client) UpdateCartQuantity(ctx context.Context, itemID string, quantity int) error {
	const op = "client.UpdateCartQuantity"
	ctx, span := c.startSpan(ctx, "eshop.update_cart")
	defer span.End()

	if itemID == "" {
		return &core.APIError{Op: op, Kind: "validation", Message: "cart item id can't be empty", Err: core.ErrValidation}
	}
	if quantity < 1 {
		quantity = 1
	}

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return err
	}

	body, err := json.Marshal(updateCartRequest{Quantity: quantity})
	if err != nil {
		return &core.APIError{Op: op, Kind: "encode", Err: err}
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("carts/" + url.PathEscape(itemID)),
		Method:  http.MethodPut,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "cart update failed")
		span.RecordError(srvErr)
		return srvErr
	}
	return nil
}

// RemoveFromCart deletes a cart line.
func (c *Client) RemoveFromCart(ctx context.Context, itemID string) error {
	const op = "client.RemoveFromCart"
	ctx, span := c.startSpan(ctx, "eshop.remove_from_cart")
	defer span.End()

	if itemID == "" {
		return &core.APIError{Op: op, Kind: "validation", Message: "cart item id can't be empty", Err: core.ErrValidation}
	}

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return err
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("carts/" + url.PathEscape(itemID)),
		Method:  http.MethodDelete,
		Headers: headers,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "cart removal failed")
		span.RecordError(srvErr)
		return srvErr
	}
	return nil
}

// ValidateCoupon checks a coupon code against the server. Returns false
// with a nil error when the server rejects the code as invalid; an error
// means the validity could not be determined.
func (c *Client) ValidateCoupon(ctx context.Context, code string) (bool, error) {
	const op = "client.ValidateCoupon"
	ctx, span := c.startSpan(ctx, "eshop.validate_coupon")
	defer span.End()

	if code == "" {
		return false, &core.APIError{Op: op, Kind: "validation", Message: "coupon code can't be empty", Err: core.ErrValidation}
	}

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	body, err := json.Marshal(validateCouponRequest{Code: code})
	if err != nil {
		return false, &core.APIError{Op: op, Kind: "encode", Err: err}
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("coupons/validate"),
		Method:  http.MethodPost,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return false, transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	// The server answers an invalid code with a 4xx and success=false,
	// which is a negative answer, not a failure.
	if resp.Code == http.StatusBadRequest || resp.Code == http.StatusNotFound {
		return false, nil
	}
	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "coupon validation failed")
		span.RecordError(srvErr)
		return false, srvErr
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		span.RecordError(err)
		return false, decodeError(op, err)
	}
	return env.Success != nil && *env.Success, nil
}

// Checkout submits the current server-side cart as an order, optionally
// applying a coupon. The cart contents are left to the server; callers
// refresh their local snapshot afterwards.
func (c *Client) Checkout(ctx context.Context, couponCode string) error {
	const op = "client.Checkout"
	ctx, span := c.startSpan(ctx, "eshop.checkout")
	defer span.End()

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return err
	}

	body, err := json.Marshal(checkoutRequest{CouponCode: couponCode})
	if err != nil {
		return &core.APIError{Op: op, Kind: "encode", Err: err}
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("checkout"),
		Method:  http.MethodPost,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		c.logFailure(ctx, op, "request", err)
		span.RecordError(err)
		return transportError(op, err)
	}
	span.SetAttribute("http.status_code", resp.Code)

	if !resp.IsSuccess() {
		srvErr := serverError(op, resp, "checkout failed")
		span.RecordError(srvErr)
		return srvErr
	}

	c.logger.Info("Checkout accepted", map[string]interface{}{
		"operation": "checkout",
		"coupon":    couponCode != "",
	})
	return nil
}
