package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"bmapp/internal/models/request_models"
	"bmapp/internal/models/response_models"
	"bmapp/internal/render"
	"bmapp/internal/repositories"
	"bmapp/pkg/memcache"
	"bmapp/pkg/utils"
)

var paidTiers = []render.PriceTier{render.Tier1, render.Tier2, render.Tier3}

type TemplateService interface {
	List(ctx context.Context, currency string) ([]response_models.TemplateItem, error)
	Preview(ctx context.Context, req request_models.PreviewRequest) (*response_models.RenderedDocument, error)
}

type templateService struct {
	config   repositories.ConfigRepository
	cache    memcache.Store
	ttl      time.Duration
	renderer render.Renderer
	log      *zap.Logger
}

func NewTemplateService(config repositories.ConfigRepository, cache memcache.Store, ttl time.Duration, renderer render.Renderer, log *zap.Logger) TemplateService {
	return &templateService{config: config, cache: cache, ttl: ttl, renderer: renderer, log: log}
}

// List returns the storefront catalog priced in currency. Anything other than
// USD is priced in INR.
func (s *templateService) List(ctx context.Context, currency string) ([]response_models.TemplateItem, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency != "USD" {
		currency = "INR"
	}

	prices, err := s.prices(ctx, currency)
	if err != nil {
		return nil, err
	}

	catalog := render.Catalog()
	items := make([]response_models.TemplateItem, 0, len(catalog))
	for _, t := range catalog {
		items = append(items, response_models.TemplateItem{
			ID:        t.ID,
			ImageURL:  t.ImageURL,
			Price:     prices[t.Tier.ConfigKey(currency)],
			ImageOnly: t.ImageOnly,
		})
	}
	return items, nil
}

func (s *templateService) prices(ctx context.Context, currency string) (map[string]float64, error) {
	cacheKey := "template_prices:" + currency
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var prices map[string]float64
		if err := json.Unmarshal([]byte(cached), &prices); err == nil {
			return prices, nil
		}
	}

	keys := make([]string, 0, len(paidTiers))
	for _, t := range paidTiers {
		keys = append(keys, t.ConfigKey(currency))
	}
	values, err := s.config.GetValues(ctx, keys)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(keys))
	for _, k := range keys {
		v, err := strconv.ParseFloat(strings.TrimSpace(values[k]), 64)
		if err != nil {
			if _, present := values[k]; present {
				s.log.Warn("Ignoring unparseable price", zap.String("key", k), zap.String("value", values[k]))
			}
			v = 0
		}
		prices[k] = v
	}

	if b, err := json.Marshal(prices); err == nil {
		s.cache.Set(ctx, cacheKey, string(b), s.ttl)
	}
	return prices, nil
}

func (s *templateService) Preview(ctx context.Context, req request_models.PreviewRequest) (*response_models.RenderedDocument, error) {
	if !drawableFormData(req.FormData) {
		return nil, utils.ErrInvalidFormData
	}
	templateID := strings.TrimSpace(req.TemplateID)
	if _, ok := render.Lookup(templateID); !ok {
		return nil, utils.ErrInvalidTemplate
	}

	in := render.Input{TemplateID: templateID, FormData: req.FormData, Preview: true}
	if req.ImagePath != nil {
		in.ImagePath = *req.ImagePath
	}
	content, err := s.renderer.Render(ctx, in)
	if err != nil {
		return nil, renderError(err)
	}
	return &response_models.RenderedDocument{
		Filename: "preview-" + templateID + ".pdf",
		Content:  content,
	}, nil
}
