package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/pax"
	"github.com/stemsi/paxcalc-backend/internal/repository"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// CalculatorService runs one conversion end to end: parse, resolve classes,
// convert and format. Persisting the result is a separate step that only
// happens when the caller asks for it.
type CalculatorService struct {
	paxSvc   *PaxService
	queue    repository.HistoryQueue
	lastUsed repository.LastUsedRepository
	history  repository.CalculationRepository
	log      zerolog.Logger
}

// NewCalculatorService creates a new CalculatorService. The repository
// arguments may be nil for a calculator that never records anything.
func NewCalculatorService(
	paxSvc *PaxService,
	queue repository.HistoryQueue,
	lastUsed repository.LastUsedRepository,
	history repository.CalculationRepository,
	log zerolog.Logger,
) *CalculatorService {
	return &CalculatorService{
		paxSvc:   paxSvc,
		queue:    queue,
		lastUsed: lastUsed,
		history:  history,
		log:      log.With().Str("component", "calculator_service").Logger(),
	}
}

// Calculate converts in.Time from in.FromClass to in.ToClass.
func (s *CalculatorService) Calculate(ctx context.Context, in model.CalculateInput) (*model.Calculation, error) {
	seconds, err := pax.ParseTime(in.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTime, err)
	}

	idx, err := s.paxSvc.GetIndex(ctx, in.Year, in.IndexType)
	if err != nil {
		return nil, err
	}

	from, ok := pax.FindClass(in.FromClass, idx)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, in.FromClass)
	}
	to, ok := pax.FindClass(in.ToClass, idx)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, in.ToClass)
	}

	result, err := pax.Convert(seconds, from, to)
	if err != nil {
		if errors.Is(err, pax.ErrNonPositiveTime) || errors.Is(err, pax.ErrNonFiniteTime) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTime, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConversion, err)
	}

	calc, err := describe(idx, result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConversion, err)
	}

	if in.Record {
		s.record(ctx, in, calc)
	}
	return calc, nil
}

// LastUsed returns the inputs and result a client last calculated.
func (s *CalculatorService) LastUsed(ctx context.Context, clientID string) (*model.LastUsed, error) {
	if s.lastUsed == nil {
		return nil, ErrNoLastUsed
	}
	lu, err := s.lastUsed.Get(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoLastUsed
	}
	return lu, err
}

// RecentCalculations lists the newest persisted calculations.
func (s *CalculatorService) RecentCalculations(ctx context.Context, limit int) ([]model.CalculationRecord, error) {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if s.history == nil {
		return []model.CalculationRecord{}, nil
	}
	return s.history.ListRecent(ctx, limit)
}

// record hands the calculation to the history queue and the last-used
// store. Failures are logged; the calculation itself already succeeded.
func (s *CalculatorService) record(ctx context.Context, in model.CalculateInput, calc *model.Calculation) {
	if s.queue != nil {
		if err := s.queue.Push(ctx, model.NewCalculationRecord(in.ClientID, calc)); err != nil {
			s.log.Warn().Err(err).Str("client_id", in.ClientID).Msg("failed to queue calculation")
		}
	}

	if s.lastUsed != nil && in.ClientID != "" {
		lu := &model.LastUsed{
			Year:      calc.Year,
			IndexType: calc.IndexType,
			Time:      in.Time,
			FromClass: in.FromClass,
			ToClass:   in.ToClass,
			Result:    calc,
			SavedAt:   time.Now().UTC(),
		}
		if err := s.lastUsed.Save(ctx, in.ClientID, lu); err != nil {
			s.log.Warn().Err(err).Str("client_id", in.ClientID).Msg("failed to save last used state")
		}
	}
}

func describe(idx *model.PaxIndex, result model.CalculationResult) (*model.Calculation, error) {
	input, err := pax.FormatTime(result.InputTime)
	if err != nil {
		return nil, err
	}
	output, err := pax.FormatTime(result.OutputTime)
	if err != nil {
		return nil, err
	}
	return &model.Calculation{
		CalculationResult:   result,
		Year:                idx.Year,
		IndexType:           idx.IndexType,
		FormattedInput:      input,
		FormattedOutput:     output,
		FormattedDifference: pax.FormatDifference(result.TimeDifference),
	}, nil
}
