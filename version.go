package eshop

import "github.com/jemaristudio/eshop-go/core"

// Version information for the storefront client
const (
	// Version is the current client version
	Version = core.Version

	// APIVersion is the upstream storefront API version
	APIVersion = "v1"
)
