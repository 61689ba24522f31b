package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/paxcalc-backend/internal/dataset"
	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/pax"
	"github.com/stemsi/paxcalc-backend/internal/repository"
)

// PaxService is the catalog of PAX indices. Indices are resolved from the
// redis cache, then postgres, then the bundled datasets.
//
// repo and cache may be nil, in which case only the bundled datasets are
// served. The offline CLI relies on this.
type PaxService struct {
	repo        repository.PaxIndexRepository
	cache       repository.PaxIndexCache
	bundled     []*model.PaxIndex
	defaultYear int
	log         zerolog.Logger
}

// NewPaxService creates a new PaxService.
func NewPaxService(
	repo repository.PaxIndexRepository,
	cache repository.PaxIndexCache,
	bundled []*model.PaxIndex,
	defaultYear int,
	log zerolog.Logger,
) *PaxService {
	return &PaxService{
		repo:        repo,
		cache:       cache,
		bundled:     bundled,
		defaultYear: defaultYear,
		log:         log.With().Str("component", "pax_service").Logger(),
	}
}

// ListIndices returns stored and bundled index summaries, newest first.
// A stored index hides the bundled one for the same year and format.
func (s *PaxService) ListIndices(ctx context.Context) ([]model.PaxIndexSummary, error) {
	var stored []model.PaxIndexSummary
	if s.repo != nil {
		var err error
		stored, err = s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list stored indices: %w", err)
		}
	}

	type key struct {
		year      int
		indexType model.IndexType
	}
	seen := make(map[key]bool, len(stored))
	summaries := make([]model.PaxIndexSummary, 0, len(stored)+len(s.bundled))
	for _, sum := range stored {
		seen[key{sum.Year, sum.IndexType}] = true
		summaries = append(summaries, sum)
	}
	for _, idx := range s.bundled {
		if seen[key{idx.Year, idx.IndexType}] {
			continue
		}
		summaries = append(summaries, idx.Summary(model.IndexSourceBundled))
	}

	sortSummaries(summaries)
	return summaries, nil
}

// GetIndex resolves the index for year and indexType. A zero year selects
// the configured default, or the newest index of that format.
func (s *PaxService) GetIndex(ctx context.Context, year int, indexType model.IndexType) (*model.PaxIndex, error) {
	if !indexType.Valid() {
		return nil, fmt.Errorf("%w: unknown index type %q", ErrIndexNotFound, indexType)
	}

	year, err := s.resolveYear(ctx, year, indexType)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		idx, err := s.cache.Get(ctx, year, indexType)
		if err == nil {
			return idx, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Err(err).Int("year", year).Str("index_type", string(indexType)).Msg("index cache read failed")
		}
	}

	idx, err := s.load(ctx, year, indexType)
	if err != nil {
		return nil, err
	}

	if err := s.checkIndex(idx); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, idx); err != nil {
			s.log.Warn().Err(err).Int("year", year).Str("index_type", string(indexType)).Msg("index cache write failed")
		}
	}
	return idx, nil
}

// ActiveClasses returns the selectable classes of an index.
func (s *PaxService) ActiveClasses(ctx context.Context, year int, indexType model.IndexType) ([]model.Class, error) {
	idx, err := s.GetIndex(ctx, year, indexType)
	if err != nil {
		return nil, err
	}
	return pax.ActiveClasses(idx), nil
}

// ValidateIndex checks an index without storing it.
func (s *PaxService) ValidateIndex(idx *model.PaxIndex) model.ValidationResult {
	return pax.Validate(idx)
}

// ImportIndex validates idx and, when valid, replaces the stored index for
// its year and format. An invalid index is returned with ErrIndexInvalid and
// nothing is written.
func (s *PaxService) ImportIndex(ctx context.Context, idx *model.PaxIndex) (model.ValidationResult, error) {
	result := pax.Validate(idx)
	if !result.IsValid {
		return result, ErrIndexInvalid
	}
	if s.repo == nil {
		return result, errors.New("no index store configured")
	}

	if err := s.repo.Replace(ctx, idx); err != nil {
		return result, fmt.Errorf("store index: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, idx.Year, idx.IndexType); err != nil {
			s.log.Warn().Err(err).Int("year", idx.Year).Str("index_type", string(idx.IndexType)).Msg("index cache eviction failed")
		}
	}

	s.log.Info().
		Int("year", idx.Year).
		Str("index_type", string(idx.IndexType)).
		Str("version", idx.Version).
		Int("classes", result.ClassCount).
		Int("warnings", len(result.Warnings)).
		Msg("pax index imported")
	return result, nil
}

// DeleteIndex removes a stored index. A bundled index for the same year and
// format is served again afterwards.
func (s *PaxService) DeleteIndex(ctx context.Context, year int, indexType model.IndexType) error {
	if s.repo == nil {
		return fmt.Errorf("%w: no index store configured", ErrIndexNotFound)
	}

	err := s.repo.Delete(ctx, year, indexType)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: no stored %d %s index", ErrIndexNotFound, year, indexType)
	}
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, year, indexType); err != nil {
			s.log.Warn().Err(err).Int("year", year).Str("index_type", string(indexType)).Msg("index cache eviction failed")
		}
	}

	s.log.Info().Int("year", year).Str("index_type", string(indexType)).Msg("pax index deleted")
	return nil
}

func (s *PaxService) resolveYear(ctx context.Context, year int, indexType model.IndexType) (int, error) {
	if year != 0 {
		return year, nil
	}
	if s.defaultYear != 0 {
		return s.defaultYear, nil
	}

	summaries, err := s.ListIndices(ctx)
	if err != nil {
		return 0, err
	}
	for _, sum := range summaries {
		if sum.IndexType == indexType {
			return sum.Year, nil
		}
	}
	return 0, fmt.Errorf("%w: no %s index available", ErrIndexNotFound, indexType)
}

func (s *PaxService) load(ctx context.Context, year int, indexType model.IndexType) (*model.PaxIndex, error) {
	if s.repo != nil {
		idx, err := s.repo.Get(ctx, year, indexType)
		if err == nil {
			return idx, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("load stored index: %w", err)
		}
	}

	idx, err := dataset.Find(s.bundled, year, indexType)
	if errors.Is(err, dataset.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d %s", ErrIndexNotFound, year, indexType)
	}
	return idx, err
}

func (s *PaxService) checkIndex(idx *model.PaxIndex) error {
	result := pax.Validate(idx)
	for _, w := range result.Warnings {
		s.log.Warn().Int("year", idx.Year).Str("index_type", string(idx.IndexType)).Msg(w)
	}
	if !result.IsValid {
		s.log.Error().
			Int("year", idx.Year).
			Str("index_type", string(idx.IndexType)).
			Strs("errors", result.Errors).
			Msg("refusing invalid pax index")
		return fmt.Errorf("%w: %s", ErrIndexInvalid, strings.Join(result.Errors, "; "))
	}
	return nil
}

func sortSummaries(summaries []model.PaxIndexSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Year != summaries[j].Year {
			return summaries[i].Year > summaries[j].Year
		}
		return summaries[i].IndexType < summaries[j].IndexType
	})
}
