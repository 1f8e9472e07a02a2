// Package port talks to the Port software catalog REST API.
package port

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
	"github.com/diillson/aws-cur-sync/internal/domain/repository"
)

// tokenLeeway renews the access token before it actually expires.
const tokenLeeway = time.Minute

// APIError is a non-2xx response from the catalog.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	// RetryAfter is the Retry-After header in seconds, when sent.
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("port %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// retryable reports whether the request may succeed if sent again.
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Options configures the Port client.
type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	MaxRetries   int
	HTTPClient   *http.Client
	// NewBackOff builds the delay policy of each request. Defaults to an
	// exponential backoff.
	NewBackOff func() backoff.BackOff
}

// PortRepositoryImpl implementa o CatalogRepository sobre a API do Port.
type PortRepositoryImpl struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	maxTries     uint
	newBackOff   func() backoff.BackOff
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewPortRepository cria o cliente do catálogo.
func NewPortRepository(opts Options) repository.CatalogRepository {
	return newPortRepository(opts)
}

func newPortRepository(opts Options) *PortRepositoryImpl {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	newBackOff := opts.NewBackOff
	if newBackOff == nil {
		newBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	maxTries := uint(1)
	if opts.MaxRetries > 0 {
		maxTries += uint(opts.MaxRetries)
	}
	return &PortRepositoryImpl{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		httpClient:   httpClient,
		maxTries:     maxTries,
		newBackOff:   newBackOff,
		now:          time.Now,
	}
}

func (r *PortRepositoryImpl) UpsertEntity(ctx context.Context, e entity.CatalogEntity) error {
	blueprint := e.Blueprint
	if blueprint == "" {
		return fmt.Errorf("entity %q has no blueprint", e.Identifier)
	}
	e.Blueprint = ""

	path := "/blueprints/" + url.PathEscape(blueprint) + "/entities"
	query := url.Values{"upsert": {"true"}, "merge": {"true"}}
	if err := r.do(ctx, http.MethodPost, path, query, e, nil); err != nil {
		return fmt.Errorf("failed to upsert entity %s/%s: %w", blueprint, e.Identifier, err)
	}
	return nil
}

func (r *PortRepositoryImpl) SearchEntities(ctx context.Context, query entity.CatalogQuery) ([]entity.CatalogEntity, error) {
	var resp struct {
		Entities []entity.CatalogEntity `json:"entities"`
	}
	if err := r.do(ctx, http.MethodPost, "/entities/search", nil, query, &resp); err != nil {
		return nil, fmt.Errorf("failed to search entities: %w", err)
	}
	return resp.Entities, nil
}

func (r *PortRepositoryImpl) DeleteEntity(ctx context.Context, e entity.CatalogEntity) error {
	path := "/blueprints/" + url.PathEscape(e.Blueprint) + "/entities/" + url.PathEscape(e.Identifier)
	err := r.do(ctx, http.MethodDelete, path, nil, nil, nil)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete entity %s/%s: %w", e.Blueprint, e.Identifier, err)
	}
	return nil
}

// do sends an authenticated request, retrying throttled and failed calls.
func (r *PortRepositoryImpl) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	// lastErr keeps the status of the last attempt; backoff answers with its
	// own RetryAfterError when it gives up on a throttled call.
	var lastErr error
	op := func() (struct{}, error) {
		token, err := r.accessToken(ctx)
		if err != nil {
			return struct{}{}, err
		}
		err = r.send(ctx, method, path, query, payload, token, out)
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return struct{}{}, err
		}
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			r.invalidateToken()
			return struct{}{}, err
		case !apiErr.retryable():
			return struct{}{}, backoff.Permanent(err)
		case apiErr.RetryAfter > 0:
			return struct{}{}, backoff.RetryAfter(apiErr.RetryAfter)
		default:
			return struct{}{}, err
		}
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(r.maxTries),
	)
	var retryAfter *backoff.RetryAfterError
	if errors.As(err, &retryAfter) && lastErr != nil {
		return lastErr
	}
	return err
}

func (r *PortRepositoryImpl) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string, out any) error {
	target := r.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = secs
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode response of %s %s: %w", method, path, err))
	}
	return nil
}

// accessToken returns the cached token, requesting a new one when it is
// missing or about to expire.
func (r *PortRepositoryImpl) accessToken(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" && r.now().Add(tokenLeeway).Before(r.tokenExpiry) {
		return r.token, nil
	}

	payload, err := json.Marshal(map[string]string{
		"clientId":     r.clientID,
		"clientSecret": r.clientSecret,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}
	if err := r.send(ctx, http.MethodPost, "/auth/access_token", nil, payload, "", &resp); err != nil {
		err = fmt.Errorf("failed to authenticate with port: %w", err)
		// backoff unwraps Permanent, so the context goes inside it.
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return "", backoff.Permanent(err)
		}
		return "", err
	}
	if resp.AccessToken == "" {
		return "", backoff.Permanent(errors.New("failed to authenticate with port: empty access token"))
	}

	r.token = resp.AccessToken
	r.tokenExpiry = r.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return r.token, nil
}

func (r *PortRepositoryImpl) invalidateToken() {
	r.mu.Lock()
	r.token = ""
	r.mu.Unlock()
}
