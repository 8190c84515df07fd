package service

import (
	"context"
	"errors"

	"github.com/thingbox/thingbox-go/internal/cache"
	"github.com/thingbox/thingbox-go/internal/model"
	"github.com/thingbox/thingbox-go/internal/repository"
)

var (
	ErrTemplateBodyRequired = errors.New("template body is required")
	ErrTemplateExists       = errors.New("template id already exists")
	ErrTemplateNotFound     = errors.New("template not found")
)

// TemplateService manages templates and keeps the render cache honest:
// every successful write invalidates the whole cache.
type TemplateService struct {
	store *repository.Store
	cache *cache.TemplateCache
}

func NewTemplateService(store *repository.Store, c *cache.TemplateCache) *TemplateService {
	return &TemplateService{store: store, cache: c}
}

// List returns every template, site templates grouped after item templates.
func (s *TemplateService) List(ctx context.Context) ([]model.TemplateResponse, error) {
	templates, err := s.store.GetTemplates(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = model.TemplateResponse{ID: t.ID, Kind: t.Kind, Body: t.Body}
	}
	return out, nil
}

// Get returns a single item-kind template.
func (s *TemplateService) Get(ctx context.Context, id string) (model.TemplateResponse, error) {
	body, err := s.store.GetTemplate(ctx, id, model.TemplateKindItem)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return model.TemplateResponse{}, ErrTemplateNotFound
		}
		return model.TemplateResponse{}, err
	}
	return model.TemplateResponse{ID: id, Kind: model.TemplateKindItem, Body: body}, nil
}

// Create adds a new template under the given kind.
func (s *TemplateService) Create(ctx context.Context, id, kind, body string) error {
	if body == "" {
		return ErrTemplateBodyRequired
	}

	if err := s.store.AddTemplate(ctx, id, kind, body); err != nil {
		if errors.Is(err, repository.ErrTemplateExists) {
			return ErrTemplateExists
		}
		return err
	}

	s.cache.Clear()
	return nil
}

// Update replaces the body of an existing template under the given kind.
func (s *TemplateService) Update(ctx context.Context, id, kind, body string) error {
	if body == "" {
		return ErrTemplateBodyRequired
	}

	if err := s.store.UpdateTemplate(ctx, id, kind, body); err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}

	s.cache.Clear()
	return nil
}

// ClearCache empties the render cache and reports how many entries it held.
func (s *TemplateService) ClearCache() int {
	return s.cache.Clear()
}

// SiteContent maps the requested ids to site-template bodies; unknown ids
// are absent from the result rather than an error.
func (s *TemplateService) SiteContent(ctx context.Context, ids []string) (map[string]string, error) {
	return s.store.GetSiteContent(ctx, ids)
}
