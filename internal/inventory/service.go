package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/cache"
	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/costing"
)

type storeProvider interface {
	List(ctx context.Context, p ListParams) ([]Space, int64, error)
	Get(ctx context.Context, id uuid.UUID) (Space, error)
	Create(ctx context.Context, sp Space) (Space, error)
	Update(ctx context.Context, sp Space) (Space, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SpaceRequest is the payload for creating or updating a space.
type SpaceRequest struct {
	Name        string              `json:"name" validate:"required"`
	Address     string              `json:"address"`
	City        string              `json:"city"`
	Latitude    float64             `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64             `json:"longitude" validate:"gte=-180,lte=180"`
	CategoryID  *uuid.UUID          `json:"categoryId,omitempty"`
	MediaTypeID *uuid.UUID          `json:"mediaTypeId,omitempty"`
	ZoneID      *uuid.UUID          `json:"zoneId,omitempty"`
	Facing      string              `json:"facing"`
	Dimensions  []costing.Dimension `json:"dimensions" validate:"required,min=1,dive"`
	Unit        int                 `json:"unit" validate:"gte=1"`

	DisplayCostPerMonth float64 `json:"displayCostPerMonth" validate:"gte=0"`
	PrintingCostPerSqft float64 `json:"printingCostPerSqft" validate:"gte=0"`
	MountingCostPerSqft float64 `json:"mountingCostPerSqft" validate:"gte=0"`

	IsActive bool `json:"isActive"`
}

// SpaceDetail decorates a space with its derived area.
type SpaceDetail struct {
	Space
	TotalArea float64 `json:"totalArea"`
}

// Service orchestrates space queries, validation and the detail cache.
type Service struct {
	store        storeProvider
	cache        *cache.JSON
	validate     *validator.Validate
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        storeProvider
	Cache        *cache.JSON
	Validate     *validator.Validate
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		validate:     cfg.Validate,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func detailKey(id uuid.UUID) string {
	return fmt.Sprintf("spaces:detail:%s", id)
}

// List returns a page of spaces.
func (s *Service) List(ctx context.Context, p ListParams) ([]SpaceDetail, int64, error) {
	if p.Limit < 1 {
		p.Limit = s.defaultLimit
	}
	if p.Limit > s.maxLimit {
		p.Limit = s.maxLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if (p.AvailableFrom == nil) != (p.AvailableTo == nil) {
		return nil, 0, common.Validation("availableFrom and availableTo must be supplied together", nil)
	}
	if p.AvailableFrom != nil && p.AvailableTo.Before(*p.AvailableFrom) {
		return nil, 0, common.Validation("availableTo precedes availableFrom", nil)
	}
	spaces, total, err := s.store.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SpaceDetail, 0, len(spaces))
	for _, sp := range spaces {
		out = append(out, SpaceDetail{Space: sp, TotalArea: sp.Area()})
	}
	return out, total, nil
}

// Get returns one space, cache first.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (SpaceDetail, error) {
	var cached SpaceDetail
	if hit, err := s.cache.Get(ctx, detailKey(id), &cached); err == nil && hit {
		return cached, nil
	}
	sp, err := s.store.Get(ctx, id)
	if err != nil {
		return SpaceDetail{}, err
	}
	detail := SpaceDetail{Space: sp, TotalArea: sp.Area()}
	_ = s.cache.Set(ctx, detailKey(id), detail)
	return detail, nil
}

// Create validates and persists a new space.
func (s *Service) Create(ctx context.Context, req SpaceRequest) (SpaceDetail, error) {
	if err := s.validateRequest(req); err != nil {
		return SpaceDetail{}, err
	}
	sp, err := s.store.Create(ctx, spaceFromRequest(req))
	if err != nil {
		return SpaceDetail{}, err
	}
	return SpaceDetail{Space: sp, TotalArea: sp.Area()}, nil
}

// Update validates and overwrites an existing space, dropping its cached detail.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req SpaceRequest) (SpaceDetail, error) {
	if err := s.validateRequest(req); err != nil {
		return SpaceDetail{}, err
	}
	sp := spaceFromRequest(req)
	sp.ID = id
	updated, err := s.store.Update(ctx, sp)
	if err != nil {
		return SpaceDetail{}, err
	}
	_ = s.cache.Invalidate(ctx, detailKey(id))
	return SpaceDetail{Space: updated, TotalArea: updated.Area()}, nil
}

// Delete removes a space and its cached detail.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Invalidate(ctx, detailKey(id))
	return nil
}

func (s *Service) validateRequest(req SpaceRequest) error {
	if s.validate != nil {
		if err := s.validate.Struct(req); err != nil {
			return common.Validation("invalid space payload", map[string]any{"reason": err.Error()})
		}
	}
	for _, d := range req.Dimensions {
		if d.Width <= 0 || d.Height <= 0 {
			return common.Validation("dimensions must have positive width and height", nil)
		}
	}
	return nil
}

func spaceFromRequest(req SpaceRequest) Space {
	return Space{
		Name:                strings.TrimSpace(req.Name),
		Address:             strings.TrimSpace(req.Address),
		City:                strings.TrimSpace(req.City),
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		CategoryID:          req.CategoryID,
		MediaTypeID:         req.MediaTypeID,
		ZoneID:              req.ZoneID,
		FacingName:          strings.TrimSpace(req.Facing),
		Dimensions:          req.Dimensions,
		Unit:                req.Unit,
		DisplayCostPerMonth: req.DisplayCostPerMonth,
		PrintingCostPerSqft: req.PrintingCostPerSqft,
		MountingCostPerSqft: req.MountingCostPerSqft,
		IsActive:            req.IsActive,
	}
}

// ParseListParams extracts list filters from query values.
func ParseListParams(values map[string][]string, defaultLimit, maxLimit int) (ListParams, error) {
	get := func(key string) string {
		if vs := values[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}
	p := ListParams{
		Query:      get("q"),
		OnlyActive: get("active") == "true",
		Page:       common.AtoiDefault(get("page"), 1),
		Limit:      common.AtoiDefault(get("limit"), defaultLimit),
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	for key, dst := range map[string]**uuid.UUID{"category": &p.CategoryID, "mediaType": &p.MediaTypeID, "zone": &p.ZoneID} {
		if raw := get(key); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return ListParams{}, common.Validation("invalid "+key+" filter", nil)
			}
			*dst = &id
		}
	}
	for key, dst := range map[string]**time.Time{"availableFrom": &p.AvailableFrom, "availableTo": &p.AvailableTo} {
		if raw := get(key); raw != "" {
			ts, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return ListParams{}, common.Validation("invalid "+key+" date, expected YYYY-MM-DD", nil)
			}
			*dst = &ts
		}
	}
	return p, nil
}
