package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jemaristudio/eshop-go/core"
)

// Decoding is strict: a required field missing from the payload is a
// decode error, never a silently-defaulted value. Nested arrays decode
// element-wise in server order.

// envelope is the common response wrapper {success, message, data}.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(body string) (*envelope, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("empty response body: %w", core.ErrDecode)
	}
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, fmt.Errorf("malformed response: %v: %w", err, core.ErrDecode)
	}
	return &env, nil
}

// serverMessage extracts the human-readable message field from an error
// body, falling back to the generic string when absent or unparseable.
func serverMessage(body, fallback string) string {
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}

func missingField(entity, field string) error {
	return fmt.Errorf("%s missing field %q: %w", entity, field, core.ErrDecode)
}

// pngImageURL applies the image format substitution the upstream CDN
// expects: the PNG rendition lives at ".../png?<params>".
func pngImageURL(u string) string {
	return strings.Replace(u, "?", "/png?", 1)
}

type wireUser struct {
	ID    *string `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (w wireUser) toUser() (User, error) {
	switch {
	case w.ID == nil:
		return User{}, missingField("user", "id")
	case w.Name == nil:
		return User{}, missingField("user", "name")
	case w.Email == nil:
		return User{}, missingField("user", "email")
	}
	return User{ID: *w.ID, Name: *w.Name, Email: *w.Email}, nil
}

type wireVariant struct {
	ID        *string `json:"id"`
	ProductID *string `json:"productId"`
	Name      *string `json:"name"`
	Price     *string `json:"price"`
	Stock     *int    `json:"stock"`
}

func (w wireVariant) toVariant() (Variant, error) {
	switch {
	case w.ID == nil:
		return Variant{}, missingField("variant", "id")
	case w.ProductID == nil:
		return Variant{}, missingField("variant", "productId")
	case w.Name == nil:
		return Variant{}, missingField("variant", "name")
	case w.Price == nil:
		return Variant{}, missingField("variant", "price")
	case w.Stock == nil:
		return Variant{}, missingField("variant", "stock")
	}
	return Variant{
		ID:        *w.ID,
		ProductID: *w.ProductID,
		Name:      *w.Name,
		PriceRaw:  *w.Price,
		Stock:     *w.Stock,
	}, nil
}

type wireCategory struct {
	ID          *string `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (w wireCategory) toCategory() (Category, error) {
	switch {
	case w.ID == nil:
		return Category{}, missingField("category", "id")
	case w.Name == nil:
		return Category{}, missingField("category", "name")
	case w.Description == nil:
		return Category{}, missingField("category", "description")
	}
	return Category{ID: *w.ID, Name: *w.Name, Description: *w.Description}, nil
}

type wireProduct struct {
	ID          *string         `json:"id"`
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	AvgRating   *float64        `json:"avgRating"`
	Variants    *[]wireVariant  `json:"variants"`
	Categories  *[]wireCategory `json:"categories"`
}

func (w wireProduct) toProduct() (Product, error) {
	switch {
	case w.ID == nil:
		return Product{}, missingField("product", "id")
	case w.Name == nil:
		return Product{}, missingField("product", "name")
	case w.Description == nil:
		return Product{}, missingField("product", "description")
	case w.ImageURL == nil:
		return Product{}, missingField("product", "imageUrl")
	case w.AvgRating == nil:
		return Product{}, missingField("product", "avgRating")
	// arrays are required too; an empty list is valid, an absent key is not
	case w.Variants == nil:
		return Product{}, missingField("product", "variants")
	case w.Categories == nil:
		return Product{}, missingField("product", "categories")
	}

	p := Product{
		ID:          *w.ID,
		Name:        *w.Name,
		Description: *w.Description,
		ImageURL:    pngImageURL(*w.ImageURL),
		AvgRating:   *w.AvgRating,
	}
	for i, wv := range *w.Variants {
		v, err := wv.toVariant()
		if err != nil {
			return Product{}, fmt.Errorf("product %s variant %d: %w", p.ID, i, err)
		}
		p.Variants = append(p.Variants, v)
	}
	for i, wc := range *w.Categories {
		c, err := wc.toCategory()
		if err != nil {
			return Product{}, fmt.Errorf("product %s category %d: %w", p.ID, i, err)
		}
		p.Categories = append(p.Categories, c)
	}
	return p, nil
}

func decodeProduct(data json.RawMessage) (Product, error) {
	var w wireProduct
	if err := json.Unmarshal(data, &w); err != nil {
		return Product{}, fmt.Errorf("malformed product payload: %v: %w", err, core.ErrDecode)
	}
	return w.toProduct()
}

func decodeProductList(data json.RawMessage) ([]Product, error) {
	var wires []wireProduct
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("malformed product list: %v: %w", err, core.ErrDecode)
	}
	products := make([]Product, 0, len(wires))
	for _, w := range wires {
		p, err := w.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func decodeCategoryList(data json.RawMessage) ([]Category, error) {
	var wires []wireCategory
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("malformed category list: %v: %w", err, core.ErrDecode)
	}
	categories := make([]Category, 0, len(wires))
	for i, w := range wires {
		c, err := w.toCategory()
		if err != nil {
			return nil, fmt.Errorf("category %d: %w", i, err)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

type wireCartItem struct {
	ID       *string      `json:"id"`
	Product  *wireProduct `json:"product"`
	Variant  *wireVariant `json:"variant"`
	Quantity *int         `json:"quantity"`
}

func (w wireCartItem) toCartItem() (CartItem, error) {
	switch {
	case w.ID == nil:
		return CartItem{}, missingField("cart item", "id")
	case w.Product == nil:
		return CartItem{}, missingField("cart item", "product")
	case w.Variant == nil:
		return CartItem{}, missingField("cart item", "variant")
	case w.Quantity == nil:
		return CartItem{}, missingField("cart item", "quantity")
	}
	product, err := w.Product.toProduct()
	if err != nil {
		return CartItem{}, err
	}
	variant, err := w.Variant.toVariant()
	if err != nil {
		return CartItem{}, err
	}
	return CartItem{
		ID:       *w.ID,
		Product:  product,
		Variant:  variant,
		Quantity: *w.Quantity,
	}, nil
}

func decodeCartItems(data json.RawMessage) ([]CartItem, error) {
	var wires []wireCartItem
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("malformed cart list: %v: %w", err, core.ErrDecode)
	}
	items := make([]CartItem, 0, len(wires))
	for i, w := range wires {
		item, err := w.toCartItem()
		if err != nil {
			return nil, fmt.Errorf("cart item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

type wireTransactionItem struct {
	ProductName *string `json:"productName"`
	ImageURL    *string `json:"imageUrl"`
	Quantity    *int    `json:"quantity"`
	Price       *string `json:"price"`
}

func (w wireTransactionItem) toTransactionItem() (TransactionItem, error) {
	switch {
	case w.ProductName == nil:
		return TransactionItem{}, missingField("transaction item", "productName")
	case w.ImageURL == nil:
		return TransactionItem{}, missingField("transaction item", "imageUrl")
	case w.Quantity == nil:
		return TransactionItem{}, missingField("transaction item", "quantity")
	case w.Price == nil:
		return TransactionItem{}, missingField("transaction item", "price")
	}
	return TransactionItem{
		ProductName: *w.ProductName,
		ImageURL:    pngImageURL(*w.ImageURL),
		Quantity:    *w.Quantity,
		Price:       *w.Price,
	}, nil
}

type wireTransaction struct {
	ID        *string                `json:"id"`
	Status    *string                `json:"status"`
	UpdatedAt *string                `json:"updatedAt"`
	Items     *[]wireTransactionItem `json:"items"`
	Total     *string                `json:"total"`
}

func (w wireTransaction) toTransaction() (Transaction, error) {
	switch {
	case w.ID == nil:
		return Transaction{}, missingField("transaction", "id")
	case w.Status == nil:
		return Transaction{}, missingField("transaction", "status")
	case w.UpdatedAt == nil:
		return Transaction{}, missingField("transaction", "updatedAt")
	case w.Total == nil:
		return Transaction{}, missingField("transaction", "total")
	case w.Items == nil:
		return Transaction{}, missingField("transaction", "items")
	}
	updatedAt, err := time.Parse(time.RFC3339, *w.UpdatedAt)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s updatedAt %q: %v: %w", *w.ID, *w.UpdatedAt, err, core.ErrDecode)
	}

	tx := Transaction{
		ID:        *w.ID,
		Status:    parseTransactionStatus(*w.Status),
		UpdatedAt: updatedAt,
		Total:     *w.Total,
	}
	for i, wi := range *w.Items {
		item, err := wi.toTransactionItem()
		if err != nil {
			return Transaction{}, fmt.Errorf("transaction %s item %d: %w", tx.ID, i, err)
		}
		tx.Items = append(tx.Items, item)
	}
	return tx, nil
}

func decodeTransactions(data json.RawMessage) ([]Transaction, error) {
	var wires []wireTransaction
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("malformed transaction list: %v: %w", err, core.ErrDecode)
	}
	transactions := make([]Transaction, 0, len(wires))
	for _, w := range wires {
		tx, err := w.toTransaction()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

type wireLogin struct {
	AccessToken *string   `json:"accessToken"`
	User        *wireUser `json:"user"`
}

func decodeLogin(data json.RawMessage) (string, User, error) {
	var w wireLogin
	if err := json.Unmarshal(data, &w); err != nil {
		return "", User{}, fmt.Errorf("malformed login payload: %v: %w", err, core.ErrDecode)
	}
	if w.AccessToken == nil {
		return "", User{}, missingField("login", "accessToken")
	}
	if w.User == nil {
		return "", User{}, missingField("login", "user")
	}
	user, err := w.User.toUser()
	if err != nil {
		return "", User{}, err
	}
	return *w.AccessToken, user, nil
}
