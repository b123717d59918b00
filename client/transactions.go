package client

import (
	"context"
	"net/http"

	"github.com/jemaristudio/eshop-go/transport"
)

// Transactions fetches the full order history in server order. Use
// FilterTransactions to narrow to active or completed orders.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	const op = "client.Transactions"
	ctx, span := c.startSpan(ctx, "eshop.transactions")
	defer span.End()

	headers, err := c.bearerHeaders(ctx, op)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp, err := c.transport.Send(ctx, transport.Request{
		URL:     c.endpoint("transactions"),
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
		srvErr := serverError(op, resp, "transaction history failed")
		span.RecordError(srvErr)
		return nil, srvErr
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	transactions, err := decodeTransactions(env.Data)
	if err != nil {
		c.logFailure(ctx, op, "decode", err)
		span.RecordError(err)
		return nil, decodeError(op, err)
	}
	span.SetAttribute("eshop.transaction_count", len(transactions))
	return transactions, nil
}
