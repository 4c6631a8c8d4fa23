package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:3000"

// Collections served by the farm API.
const (
	Animais          = "animais"
	Alimentos        = "alimentos"
	Categorias       = "categorias"
	Dietas           = "dietas"
	Lotes            = "lotes"
	ProducaoLeite    = "producao-leite"
	EstagiosProducao = "estagios-producao"
)

// Collections lists every known collection name.
func Collections() []string {
	return []string{Animais, Alimentos, Categorias, Dietas, Lotes, ProducaoLeite, EstagiosProducao}
}

// Resource is the CRUD surface of one collection.
type Resource interface {
	Name() string
	List(ctx context.Context) ([]map[string]any, error)
	Get(ctx context.Context, id string) (map[string]any, error)
	Create(ctx context.Context, record map[string]any) (map[string]any, error)
	Update(ctx context.Context, id string, record map[string]any) (map[string]any, error)
	Delete(ctx context.Context, id string) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root. Trailing slashes are dropped.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds every request. Zero leaves requests bounded only by
// their context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks JSON to the farm API. It is safe for concurrent use. There
// is no retry policy: a failed call fails once.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient constructs a client.
func NewClient(options ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Resource returns the CRUD surface of a collection.
func (c *Client) Resource(name string) Resource {
	return &resource{client: c, name: strings.Trim(strings.TrimSpace(name), "/")}
}

// Items lists a collection without assuming its elements are objects.
// Lookup collections such as categorias and estagios-producao answer with
// plain strings.
func (c *Client) Items(ctx context.Context, name string) ([]any, error) {
	var out []any
	if err := c.do(ctx, http.MethodGet, "/"+strings.Trim(strings.TrimSpace(name), "/"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AnimalsWithProduction lists animals with their milk production summed over
// the last dias days.
func (c *Client) AnimalsWithProduction(ctx context.Context, dias int) ([]map[string]any, error) {
	var out []map[string]any
	path := "/" + Animais + "/producao?dias=" + strconv.Itoa(dias)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AverageProduction asks the API for the average production of the given
// animals over the last dias days. The payload is returned as decoded.
func (c *Client) AverageProduction(ctx context.Context, animalIDs []string, dias int) (any, error) {
	body := map[string]any{"animalIds": animalIDs, "dias": dias}
	var out any
	if err := c.do(ctx, http.MethodPost, "/"+ProducaoLeite+"/media", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read %s %s: %w", method, path, err)
	}
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(method, path, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

type resource struct {
	client *Client
	name   string
}

func (r *resource) Name() string { return r.name }

func (r *resource) List(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := r.client.do(ctx, http.MethodGet, r.path(""), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resource) Get(ctx context.Context, id string) (map[string]any, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errEmptyID(r.name)
	}
	var out map[string]any
	if err := r.client.do(ctx, http.MethodGet, r.path(id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resource) Create(ctx context.Context, record map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := r.client.do(ctx, http.MethodPost, r.path(""), record, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resource) Update(ctx context.Context, id string, record map[string]any) (map[string]any, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errEmptyID(r.name)
	}
	var out map[string]any
	if err := r.client.do(ctx, http.MethodPut, r.path(id), record, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resource) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errEmptyID(r.name)
	}
	return r.client.do(ctx, http.MethodDelete, r.path(id), nil, nil)
}

func (r *resource) path(id string) string {
	if id == "" {
		return "/" + r.name
	}
	return "/" + r.name + "/" + url.PathEscape(id)
}

func errEmptyID(resource string) error {
	return fmt.Errorf("%w for %s", ErrEmptyID, resource)
}
