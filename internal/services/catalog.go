package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/shared"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// LoginResult is a successful login response.
//
// Older backends answer with access_token and user; [LoginResult.normalize] folds those into
// Credential and Identity.
type LoginResult struct {
	Credential string          `json:"credential"`
	Identity   models.Identity `json:"identity"`

	AccessToken string           `json:"access_token,omitempty"`
	User        *models.Identity `json:"user,omitempty"`
}

func (r *LoginResult) normalize() {
	if r.Credential == "" {
		r.Credential = r.AccessToken
	}
	if r.Identity.Role == "" && r.User != nil {
		r.Identity = *r.User
	}
}

// Login exchanges an identifier and secret for a credential. The request never carries the current credential.
func (a *APIService) Login(ctx context.Context, identifier, secret string) (*LoginResult, error) {
	var result LoginResult
	body := LoginRequest{Identifier: identifier, Secret: secret}
	if err := a.doJSON(ctx, http.MethodPost, "/auth/login", body, &result, requestOpts{anonymous: true}); err != nil {
		return nil, err
	}

	result.normalize()
	if result.Credential == "" {
		return nil, fmt.Errorf("%w: login response missing credential", shared.ErrAPIRequest)
	}
	if models.ParseRole(result.Identity.Role) == models.RoleNone {
		return nil, fmt.Errorf("%w: login response missing role", shared.ErrAPIRequest)
	}
	return &result, nil
}

// Me probes the session that owns credential.
func (a *APIService) Me(ctx context.Context, credential string) (*models.Identity, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: credential is required", shared.ErrMissingArgument)
	}

	var identity models.Identity
	if err := a.doJSON(ctx, http.MethodGet, "/auth/me", nil, &identity, requestOpts{credential: credential}); err != nil {
		return nil, err
	}

	if models.ParseRole(identity.Role) == models.RoleNone {
		return nil, fmt.Errorf("%w: identity missing role", shared.ErrAPIRequest)
	}
	return &identity, nil
}

// SearchMulti searches tracks, artists and albums. A limit of zero or less is omitted from the query.
func (a *APIService) SearchMulti(ctx context.Context, query string, limit int) (*models.SearchResults, error) {
	params := url.Values{}
	params.Set("query", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var results models.SearchResults
	if err := a.doJSON(ctx, http.MethodGet, "/search/multi?"+params.Encode(), nil, &results, requestOpts{}); err != nil {
		return nil, err
	}

	results.Normalize()
	return &results, nil
}
