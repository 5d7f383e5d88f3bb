// package services defines the catalog HTTP client
package services

import (
	"context"

	"github.com/desertthunder/catx/internal/models"
)

// Catalog defines the catalog backend operations used by the session manager and the search coordinator.
type Catalog interface {
	// Login exchanges an identifier and secret for a credential and identity.
	Login(ctx context.Context, identifier, secret string) (*LoginResult, error)

	// Me returns the identity that owns credential.
	Me(ctx context.Context, credential string) (*models.Identity, error)

	// SearchMulti searches tracks, artists and albums at once.
	SearchMulti(ctx context.Context, query string, limit int) (*models.SearchResults, error)
}

var _ Catalog = (*APIService)(nil)

// UnauthorizedFunc is notified with the credential a rejected request carried.
type UnauthorizedFunc func(credential string)
