package pax

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/paxcalc-backend/internal/model"
)

// now is swapped in tests.
var now = time.Now

// Convert expresses inputTime, set in class in, as the equivalent time in
// class out. OutputTime and TimeDifference are rounded to the millisecond and
// IsFaster reports a negative difference.
func Convert(inputTime float64, in, out model.Class) (model.CalculationResult, error) {
	if !(inputTime > 0) {
		return model.CalculationResult{}, &DomainError{Err: ErrNonPositiveTime}
	}
	if !(in.PaxIndex > 0) || !(out.PaxIndex > 0) {
		return model.CalculationResult{}, &DomainError{Err: ErrNonPositivePax}
	}

	if math.IsInf(inputTime, 0) {
		return model.CalculationResult{}, &DomainError{Err: ErrNonFiniteTime}
	}

	result := model.CalculationResult{
		InputTime:    inputTime,
		InputClass:   in,
		OutputClass:  out,
		CalculatedAt: now().UTC(),
	}

	if in.PaxIndex == out.PaxIndex {
		result.OutputTime = inputTime
		return result, nil
	}

	raw := inputTime * (in.PaxIndex / out.PaxIndex)
	if math.IsInf(raw, 0) || math.IsNaN(raw) {
		return model.CalculationResult{}, &DomainError{Err: ErrNonFiniteTime}
	}

	output := round3(raw)
	diff := output.Sub(decimal.NewFromFloat(inputTime)).Round(3)

	result.OutputTime = output.InexactFloat64()
	result.TimeDifference = diff.InexactFloat64()
	result.IsFaster = diff.IsNegative()
	return result, nil
}
