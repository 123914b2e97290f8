package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-units-api/internal/models"
	appErrors "github.com/noah-isme/school-units-api/pkg/errors"
)

const lookupCachePrefix = "lookups:"

type lookupRepository interface {
	ListNTEs(ctx context.Context) ([]models.NTE, error)
	ListMunicipalities(ctx context.Context, nteID int64) ([]models.Municipality, error)
	ListTypologies(ctx context.Context) ([]models.Typology, error)
}

// LookupService serves the reference lists used by form selects.
type LookupService struct {
	repo   lookupRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewLookupService constructs a LookupService. cache may be nil.
func NewLookupService(repo lookupRepository, cache *CacheService, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{repo: repo, cache: cache, logger: logger}
}

// ListNTEs returns every NTE.
func (s *LookupService) ListNTEs(ctx context.Context) ([]models.LookupOption, error) {
	return remember(ctx, s.cache, lookupCachePrefix+"ntes", func(ctx context.Context) ([]models.LookupOption, error) {
		ntes, err := s.repo.ListNTEs(ctx)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to list ntes")
		}
		options := make([]models.LookupOption, 0, len(ntes))
		for _, nte := range ntes {
			options = append(options, option(nte.ID, nte.Name))
		}
		return options, nil
	})
}

// ListMunicipalities returns the municipalities of an NTE. An empty id yields an empty list.
func (s *LookupService) ListMunicipalities(ctx context.Context, rawNTEID string) ([]models.LookupOption, error) {
	if strings.TrimSpace(rawNTEID) == "" {
		return []models.LookupOption{}, nil
	}
	nteID, ok := ParseID(rawNTEID)
	if !ok {
		return nil, appErrors.Validation("nteId must be a positive integer")
	}

	key := lookupCachePrefix + "municipalities:" + strconv.FormatInt(nteID, 10)
	return remember(ctx, s.cache, key, func(ctx context.Context) ([]models.LookupOption, error) {
		municipalities, err := s.repo.ListMunicipalities(ctx, nteID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to list municipalities")
		}
		options := make([]models.LookupOption, 0, len(municipalities))
		for _, m := range municipalities {
			options = append(options, option(m.ID, m.Name))
		}
		return options, nil
	})
}

// ListTypologies returns every typology.
func (s *LookupService) ListTypologies(ctx context.Context) ([]models.LookupOption, error) {
	return remember(ctx, s.cache, lookupCachePrefix+"typologies", func(ctx context.Context) ([]models.LookupOption, error) {
		typologies, err := s.repo.ListTypologies(ctx)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to list typologies")
		}
		options := make([]models.LookupOption, 0, len(typologies))
		for _, t := range typologies {
			options = append(options, option(t.ID, t.Name))
		}
		return options, nil
	})
}

// InvalidateCache drops every cached lookup list.
func (s *LookupService) InvalidateCache(ctx context.Context) {
	s.cache.Invalidate(ctx, lookupCachePrefix+"*")
}

func option(id int64, name string) models.LookupOption {
	return models.LookupOption{ID: strconv.FormatInt(id, 10), Name: name}
}
