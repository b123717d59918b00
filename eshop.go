// Package eshop provides a lightweight meta-module that re-exports from submodules.
// This is the main entry point for the storefront client.
// Users should import specific modules based on their needs:
//   - github.com/jemaristudio/eshop-go/client - API facade
//   - github.com/jemaristudio/eshop-go/cart - local cart state holder
//   - github.com/jemaristudio/eshop-go/imagecache - bounded image cache
//   - github.com/jemaristudio/eshop-go/telemetry - OpenTelemetry wiring
package eshop

import (
	"github.com/jemaristudio/eshop-go/cart"
	"github.com/jemaristudio/eshop-go/client"
	"github.com/jemaristudio/eshop-go/core"
	"github.com/jemaristudio/eshop-go/imagecache"
	"github.com/jemaristudio/eshop-go/session"
)

// Re-export core types
type (
	// Configuration types
	Config           = core.Config
	Option           = core.Option
	SessionConfig    = core.SessionConfig
	ImageCacheConfig = core.ImageCacheConfig
	TelemetryConfig  = core.TelemetryConfig
	LoggingConfig    = core.LoggingConfig

	// Interfaces
	Logger    = core.Logger
	Telemetry = core.Telemetry
	Span      = core.Span

	// Facade types
	Client          = client.Client
	Dependencies    = client.Dependencies
	User            = session.User
	Product         = client.Product
	Variant         = client.Variant
	Category        = client.Category
	CartItem        = client.CartItem
	Transaction     = client.Transaction
	TransactionItem = client.TransactionItem
	ProductQuery    = client.ProductQuery

	// Cart state holder
	CartStore = cart.Store

	// Image cache
	ImageCache = imagecache.Cache
)

// Re-export transaction filters
const (
	FilterAll       = client.FilterAll
	FilterActive    = client.FilterActive
	FilterCompleted = client.FilterCompleted
)

// Re-export core functions
var (
	NewConfig     = core.NewConfig
	DefaultConfig = core.DefaultConfig

	// Configuration options
	WithBaseURL            = core.WithBaseURL
	WithTimeout            = core.WithTimeout
	WithUserAgent          = core.WithUserAgent
	WithPageLimit          = core.WithPageLimit
	WithRedisSessions      = core.WithRedisSessions
	WithSessionTTL         = core.WithSessionTTL
	WithImageCacheCapacity = core.WithImageCacheCapacity
	WithTelemetry          = core.WithTelemetry
	WithStdoutTelemetry    = core.WithStdoutTelemetry
	WithLogLevel           = core.WithLogLevel
	WithLogFormat          = core.WithLogFormat
	WithConfigFile         = core.WithConfigFile

	// Error classifiers
	IsAuthError        = core.IsAuthError
	IsValidationError  = core.IsValidationError
	IsNetworkError     = core.IsNetworkError
	IsServerError      = core.IsServerError
	IsNotFound         = core.IsNotFound
	ServerMessage      = core.ServerMessage
	FilterTransactions = client.FilterTransactions
	NewMemorySessions  = session.NewMemoryStore
)

// New assembles the common stack in one call: a facade over the given
// options, a cart store reconciling through it, and an image cache
// fetching through it.
func New(opts ...Option) (*Client, *CartStore, *ImageCache, error) {
	cfg, err := core.NewConfig(opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	api, err := client.New(cfg, client.Dependencies{})
	if err != nil {
		return nil, nil, nil, err
	}

	store := cart.New(api, cart.Options{})
	images, err := imagecache.New(api, cfg.ImageCache.Capacity, nil)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return api, store, images, nil
}
