package client

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jemaristudio/eshop-go/session"
)

// User is re-exported from the session package; the login exchange
// captures it into the session store.
type User = session.User

// Product is a catalog entry with its variants and categories in
// server order.
type Product struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	AvgRating   float64
	Variants    []Variant
	Categories  []Category
}

// Variant is a purchasable option of a product. Price stays a
// decimal-as-string on the wire; use Price() for arithmetic.
type Variant struct {
	ID        string
	ProductID string
	Name      string
	PriceRaw  string
	Stock     int
}

// Price parses the decimal price. Returns zero on a malformed value;
// the API has never produced one in practice but callers doing money
// math should prefer PriceChecked.
func (v Variant) Price() decimal.Decimal {
	d, err := decimal.NewFromString(v.PriceRaw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PriceChecked parses the decimal price, surfacing malformed values.
func (v Variant) PriceChecked() (decimal.Decimal, error) {
	return decimal.NewFromString(v.PriceRaw)
}

// Category is a flat catalog grouping (no nesting).
type Category struct {
	ID          string
	Name        string
	Description string
}

// CartItem is one line of the server-side cart.
type CartItem struct {
	ID       string
	Product  Product
	Variant  Variant
	Quantity int
}

// LineTotal is variant price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Variant.Price().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// TransactionStatus is the order state reported by the server. Unknown
// values decode as StatusOther rather than failing.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusProcessed TransactionStatus = "processed"
	StatusDelivered TransactionStatus = "delivered"
	StatusCompleted TransactionStatus = "completed"
	StatusOther     TransactionStatus = "other"
)

func parseTransactionStatus(s string) TransactionStatus {
	switch TransactionStatus(s) {
	case StatusPending, StatusProcessed, StatusDelivered, StatusCompleted:
		return TransactionStatus(s)
	default:
		return StatusOther
	}
}

// IsActive reports whether the order is still in flight.
func (s TransactionStatus) IsActive() bool {
	return s == StatusPending || s == StatusProcessed || s == StatusDelivered
}

// IsCompleted reports whether the order reached its final state.
func (s TransactionStatus) IsCompleted() bool {
	return s == StatusCompleted
}

// Transaction is one entry of the order history.
type Transaction struct {
	ID        string
	Status    TransactionStatus
	UpdatedAt time.Time
	Items     []TransactionItem
	Total     string
}

// TransactionItem is one line item of a past order.
type TransactionItem struct {
	ProductName string
	ImageURL    string
	Quantity    int
	Price       string
}

// TransactionFilter selects a slice of the order history client-side.
type TransactionFilter int

const (
	FilterAll TransactionFilter = iota
	FilterActive
	FilterCompleted
)

// FilterTransactions returns the transactions matching the filter,
// preserving order. FilterAll returns the input unchanged.
func FilterTransactions(list []Transaction, filter TransactionFilter) []Transaction {
	if filter == FilterAll {
		return list
	}
	var out []Transaction
	for _, tx := range list {
		switch filter {
		case FilterActive:
			if tx.Status.IsActive() {
				out = append(out, tx)
			}
		case FilterCompleted:
			if tx.Status.IsCompleted() {
				out = append(out, tx)
			}
		}
	}
	return out
}
