package model

import (
	"time"

	"github.com/google/uuid"
)

// CalculationResult is the output of converting one time between two classes.
type CalculationResult struct {
	InputTime      float64   `json:"input_time"`
	InputClass     Class     `json:"input_class"`
	OutputTime     float64   `json:"output_time"`
	OutputClass    Class     `json:"output_class"`
	TimeDifference float64   `json:"time_difference"`
	IsFaster       bool      `json:"is_faster"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// Calculation is a CalculationResult together with its display strings and
// the index it was computed against.
type Calculation struct {
	CalculationResult
	Year                int       `json:"year"`
	IndexType           IndexType `json:"index_type"`
	FormattedInput      string    `json:"formatted_input"`
	FormattedOutput     string    `json:"formatted_output"`
	FormattedDifference string    `json:"formatted_difference"`
}

// CalculateInput is what a caller supplies to request a conversion.
type CalculateInput struct {
	ClientID  string
	Year      int
	IndexType IndexType
	Time      string
	FromClass string
	ToClass   string
	// Record persists the calculation to history and the client's last-used state.
	Record bool
}

// CalculateRequest is the payload for POST /calculate.
type CalculateRequest struct {
	Year      int    `json:"year" binding:"omitempty,min=2000,max=2100"`
	IndexType string `json:"index_type" binding:"required,oneof=Solo ProSolo"`
	Time      string `json:"time" binding:"required,max=32,laptime"`
	FromClass string `json:"from_class" binding:"required,max=16"`
	ToClass   string `json:"to_class" binding:"required,max=16"`
}

// CalculationRecord is one persisted calculation in the history table.
type CalculationRecord struct {
	ID             uuid.UUID `json:"id"`
	ClientID       string    `json:"client_id"`
	Year           int       `json:"year"`
	IndexType      IndexType `json:"index_type"`
	InputClass     string    `json:"input_class"`
	OutputClass    string    `json:"output_class"`
	InputTime      float64   `json:"input_time"`
	OutputTime     float64   `json:"output_time"`
	TimeDifference float64   `json:"time_difference"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// QueuedCalculation is a history row waiting in the persistence queue.
// Attempts counts failed inserts so far.
type QueuedCalculation struct {
	Record   CalculationRecord `json:"record"`
	Attempts int               `json:"attempts,omitempty"`
}

// NewCalculationRecord flattens a calculation into a history row.
func NewCalculationRecord(clientID string, calc *Calculation) CalculationRecord {
	return CalculationRecord{
		ID:             uuid.New(),
		ClientID:       clientID,
		Year:           calc.Year,
		IndexType:      calc.IndexType,
		InputClass:     calc.InputClass.Code,
		OutputClass:    calc.OutputClass.Code,
		InputTime:      calc.InputTime,
		OutputTime:     calc.OutputTime,
		TimeDifference: calc.TimeDifference,
		CalculatedAt:   calc.CalculatedAt,
	}
}

// LastUsed is the per-client state restored when the calculator is reopened.
type LastUsed struct {
	Year      int          `json:"year"`
	IndexType IndexType    `json:"index_type"`
	Time      string       `json:"time"`
	FromClass string       `json:"from_class"`
	ToClass   string       `json:"to_class"`
	Result    *Calculation `json:"result,omitempty"`
	SavedAt   time.Time    `json:"saved_at"`
}
