// HTTP client for the catalog backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catx/internal/shared"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "http://localhost:8000/api/v1"

// APIError is a non-2xx response from the catalog backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("catalog API error: status %d", e.StatusCode)
}

// Unwrap maps 401 and 403 to [shared.ErrAuthRejected] and everything else to [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	if rejected(e.StatusCode) {
		return shared.ErrAuthRejected
	}
	return shared.ErrAPIRequest
}

func rejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// APIService provides methods for making HTTP requests to the catalog backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu             sync.RWMutex
	credentials    oauth2.TokenSource
	onUnauthorized UnauthorizedFunc
}

// NewAPIService creates a new API service instance for the catalog backend.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     log.New(io.Discard),
	}
}

// SetLogger replaces the request logger.
func (a *APIService) SetLogger(l *log.Logger) {
	if l != nil {
		a.logger = l
	}
}

// SetCredentials sets the source of the credential attached to authenticated requests.
func (a *APIService) SetCredentials(ts oauth2.TokenSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.credentials = ts
}

// OnUnauthorized registers the handler notified when a credentialed request is rejected.
func (a *APIService) OnUnauthorized(fn UnauthorizedFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onUnauthorized = fn
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
	RequestID  string
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// requestOpts controls credential attachment for a single request.
type requestOpts struct {
	anonymous  bool   // send no credential
	credential string // send this credential instead of the current one
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil, requestOpts{})
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data, requestOpts{})
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte, opts requestOpts) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	credential := a.attachCredential(req, opts)

	logger := a.logger.With("request_id", requestID, "method", method, "path", path)
	logger.Debug("sending request", "authenticated", credential != "")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrNetworkFailure, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
		RequestID:  requestID,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	logger.Debug("received response", "status", resp.StatusCode)

	if rejected(resp.StatusCode) && credential != "" {
		logger.Warn("credential rejected", "status", resp.StatusCode)
		a.notifyUnauthorized(credential)
	}

	return apiResp, nil
}

// attachCredential sets the Authorization header and returns the credential it used.
func (a *APIService) attachCredential(req *http.Request, opts requestOpts) string {
	if opts.anonymous {
		return ""
	}

	token := &oauth2.Token{AccessToken: opts.credential, TokenType: "Bearer"}
	if opts.credential == "" {
		a.mu.RLock()
		ts := a.credentials
		a.mu.RUnlock()
		if ts == nil {
			return ""
		}

		current, err := ts.Token()
		if err != nil || current == nil || current.AccessToken == "" {
			return ""
		}
		token = current
	}

	token.SetAuthHeader(req)
	return token.AccessToken
}

func (a *APIService) notifyUnauthorized(credential string) {
	a.mu.RLock()
	fn := a.onUnauthorized
	a.mu.RUnlock()
	if fn != nil {
		fn(credential)
	}
}

// doJSON sends in as a JSON body (when non-nil), maps non-2xx statuses to [APIError] and decodes the body into out.
func (a *APIService) doJSON(ctx context.Context, method, path string, in, out any, opts requestOpts) error {
	var data []byte
	if in != nil {
		var err error
		if data, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := a.do(ctx, method, path, data, opts)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return newAPIError(resp)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// newAPIError reads the message (or FastAPI-style detail) field from an error body.
func newAPIError(resp *APIResponse) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return apiErr
	}

	switch {
	case body.Message != "":
		apiErr.Message = body.Message
	case body.Detail != nil:
		if s, ok := body.Detail.(string); ok {
			apiErr.Message = s
		} else if b, err := json.Marshal(body.Detail); err == nil {
			apiErr.Message = string(b)
		}
	}

	return apiErr
}

// IsAPIError reports whether err carries an [APIError] with the given status.
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
