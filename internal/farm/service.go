// Package farm adapts the farm API to the generic form and list engine. It
// fetches records and select options for a page, maps records into the shape
// the engine displays and edits, and maps submitted values back into API
// payloads.
package farm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-farmdesk/pkg/api"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

// Client is the part of the API client the service needs.
type Client interface {
	Resource(name string) api.Resource
	Items(ctx context.Context, name string) ([]any, error)
	AnimalsWithProduction(ctx context.Context, dias int) ([]map[string]any, error)
}

var _ Client = (*api.Client)(nil)

// Hooks customise how one page talks to the API. Every hook is optional.
type Hooks struct {
	// Fetch replaces Resource.List when loading the page's records.
	Fetch func(ctx context.Context, client Client) ([]map[string]any, error)
	// Lookups names collections fetched next to the records and handed to
	// ToRecord.
	Lookups []string
	// ToRecord maps an API record to the record shown in lists and used to
	// seed edit forms. It receives a copy it may modify.
	ToRecord func(record map[string]any, lookups map[string][]any) map[string]any
	// ToPayload maps exported form values to the request body.
	ToPayload func(values map[string]any) (map[string]any, error)
	// Prefill seeds a create form from query parameters.
	Prefill func(query url.Values) map[string]any
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers or replaces the hooks of a page.
func WithHooks(page string, hooks Hooks) Option {
	return func(s *Service) {
		s.hooks[page] = hooks
	}
}

// Service loads and saves page data through the API.
type Service struct {
	client Client
	logger *zap.Logger
	hooks  map[string]Hooks
}

// New builds a service with the farm's default hooks.
func New(client Client, options ...Option) *Service {
	s := &Service{
		client: client,
		logger: zap.NewNop(),
		hooks:  DefaultHooks(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Records fetches the page's records and its lookups concurrently and maps
// each record through the page hooks.
func (s *Service) Records(ctx context.Context, page pages.Page) ([]table.Record, error) {
	hooks := s.hooks[page.Name]

	var (
		raw     []map[string]any
		mu      sync.Mutex
		lookups = make(map[string][]any, len(hooks.Lookups))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if hooks.Fetch != nil {
			raw, err = hooks.Fetch(gctx, s.client)
		} else {
			raw, err = s.client.Resource(page.Resource).List(gctx)
		}
		if err != nil {
			return fmt.Errorf("farm: list %s: %w", page.Name, err)
		}
		return nil
	})
	for _, name := range hooks.Lookups {
		name := name
		g.Go(func() error {
			items, err := s.client.Items(gctx, name)
			if err != nil {
				return fmt.Errorf("farm: lookup %s: %w", name, err)
			}
			mu.Lock()
			lookups[name] = items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]table.Record, 0, len(raw))
	for _, record := range raw {
		if hooks.ToRecord != nil {
			record = hooks.ToRecord(copyRecord(record), lookups)
		}
		records = append(records, table.Record(record))
	}
	s.logger.Debug("records loaded", zap.String("page", page.Name), zap.Int("count", len(records)))
	return records, nil
}

// Options fetches every collection the page's selects draw from.
func (s *Service) Options(ctx context.Context, page pages.Page) (map[string][]any, error) {
	resources := page.OptionResources()
	out := make(map[string][]any, len(resources))
	if len(resources) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range resources {
		name := name
		g.Go(func() error {
			items, err := s.client.Items(gctx, name)
			if err != nil {
				return fmt.Errorf("farm: options %s: %w", name, err)
			}
			mu.Lock()
			out[name] = items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Fields returns the page's schema with sourced select options filled in.
func (s *Service) Fields(ctx context.Context, page pages.Page) ([]model.Field, error) {
	items, err := s.Options(ctx, page)
	if err != nil {
		return nil, err
	}
	return pages.ResolveOptions(page.Fields, items), nil
}

// Save creates the record when id is empty and updates it otherwise.
func (s *Service) Save(ctx context.Context, page pages.Page, id string, values model.Values) (map[string]any, error) {
	payload := values.Export(page.Fields)
	if hooks := s.hooks[page.Name]; hooks.ToPayload != nil {
		var err error
		if payload, err = hooks.ToPayload(payload); err != nil {
			return nil, fmt.Errorf("farm: %s payload: %w", page.Name, err)
		}
	}

	resource := s.client.Resource(page.Resource)
	if id == "" {
		s.logger.Debug("create record", zap.String("page", page.Name))
		return resource.Create(ctx, payload)
	}
	s.logger.Debug("update record", zap.String("page", page.Name), zap.String("id", id))
	return resource.Update(ctx, id, payload)
}

// Delete removes a record. A record the API no longer knows counts as
// deleted.
func (s *Service) Delete(ctx context.Context, page pages.Page, record table.Record) error {
	s.logger.Debug("delete record", zap.String("page", page.Name), zap.String("id", record.ID()))
	err := s.client.Resource(page.Resource).Delete(ctx, record.ID())
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		s.logger.Debug("record already gone", zap.String("page", page.Name), zap.String("id", record.ID()))
		return nil
	}
	return err
}

// Prefill returns the create-form seed for query parameters, or nil.
func (s *Service) Prefill(page pages.Page, query url.Values) map[string]any {
	if hooks := s.hooks[page.Name]; hooks.Prefill != nil {
		return hooks.Prefill(query)
	}
	return nil
}

func copyRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
