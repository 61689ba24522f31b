package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/paxcalc-backend/internal/model"
)

type CalculationRepository interface {
	InsertBatch(ctx context.Context, records []model.CalculationRecord) error
	Insert(ctx context.Context, rec model.CalculationRecord) error
	ListRecent(ctx context.Context, limit int) ([]model.CalculationRecord, error)
}

type calculationRepository struct {
	pool *pgxpool.Pool
}

func NewCalculationRepository(pool *pgxpool.Pool) CalculationRepository {
	return &calculationRepository{pool: pool}
}

var calculationColumns = []string{
	"id", "client_id", "year", "index_type", "input_class", "output_class",
	"input_time", "output_time", "time_difference", "calculated_at",
}

func (r *calculationRepository) InsertBatch(ctx context.Context, records []model.CalculationRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"calculations"},
		calculationColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return calculationValues(records[i]), nil
		}),
	)
	return err
}

// Insert writes one record, ignoring ids that were already persisted.
func (r *calculationRepository) Insert(ctx context.Context, rec model.CalculationRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO calculations (id, client_id, year, index_type, input_class, output_class,
		                          input_time, output_time, time_difference, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		calculationValues(rec)...)
	return err
}

func (r *calculationRepository) ListRecent(ctx context.Context, limit int) ([]model.CalculationRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, year, index_type, input_class, output_class,
		       input_time, output_time, time_difference, calculated_at
		FROM calculations
		ORDER BY calculated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.CalculationRecord{}
	for rows.Next() {
		var c model.CalculationRecord
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Year, &c.IndexType, &c.InputClass, &c.OutputClass,
			&c.InputTime, &c.OutputTime, &c.TimeDifference, &c.CalculatedAt); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

func calculationValues(c model.CalculationRecord) []any {
	return []any{
		c.ID, c.ClientID, c.Year, string(c.IndexType), c.InputClass, c.OutputClass,
		c.InputTime, c.OutputTime, c.TimeDifference, c.CalculatedAt,
	}
}
