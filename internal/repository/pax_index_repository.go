package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/paxcalc-backend/internal/model"
)

// PaxIndexRepository stores whole pax indices. An index is only ever
// replaced as a unit, never edited in place.
type PaxIndexRepository interface {
	List(ctx context.Context) ([]model.PaxIndexSummary, error)
	Get(ctx context.Context, year int, indexType model.IndexType) (*model.PaxIndex, error)
	Replace(ctx context.Context, idx *model.PaxIndex) error
	Delete(ctx context.Context, year int, indexType model.IndexType) error
}

type paxIndexRepository struct {
	pool *pgxpool.Pool
}

func NewPaxIndexRepository(pool *pgxpool.Pool) PaxIndexRepository {
	return &paxIndexRepository{pool: pool}
}

func (r *paxIndexRepository) List(ctx context.Context) ([]model.PaxIndexSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.year, i.index_type, i.version, i.release_date, i.last_updated,
		       COUNT(DISTINCT g.id), COUNT(c.id)
		FROM pax_indices i
		LEFT JOIN class_groups g ON g.pax_index_id = i.id
		LEFT JOIN classes c ON c.class_group_id = g.id
		GROUP BY i.id
		ORDER BY i.year DESC, i.index_type ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.PaxIndexSummary
	for rows.Next() {
		s := model.PaxIndexSummary{Source: model.IndexSourceStored}
		if err := rows.Scan(&s.Year, &s.IndexType, &s.Version, &s.ReleaseDate, &s.LastUpdated, &s.GroupCount, &s.ClassCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *paxIndexRepository) Get(ctx context.Context, year int, indexType model.IndexType) (*model.PaxIndex, error) {
	var (
		id      int
		version string
		header  model.PaxIndex
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, version, release_date, last_updated
		 FROM pax_indices WHERE year = $1 AND index_type = $2`,
		year, string(indexType),
	).Scan(&id, &version, &header.ReleaseDate, &header.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pax index: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT g.group_key, g.name, g.description, c.code, c.name, c.pax_index, c.is_active
		FROM class_groups g
		LEFT JOIN classes c ON c.class_group_id = g.id
		WHERE g.pax_index_id = $1
		ORDER BY g.position ASC, c.position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("get class groups: %w", err)
	}
	defer rows.Close()

	var groups []model.ClassGroup
	for rows.Next() {
		var (
			g        model.ClassGroup
			code     *string
			name     *string
			paxIndex *float64
			isActive *bool
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &code, &name, &paxIndex, &isActive); err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].ID != g.ID {
			g.Classes = []model.Class{}
			groups = append(groups, g)
		}
		// Groups without classes come back with NULL class columns.
		if code == nil {
			continue
		}
		last := &groups[len(groups)-1]
		last.Classes = append(last.Classes, model.Class{
			Code:     *code,
			Name:     *name,
			PaxIndex: *paxIndex,
			IsActive: *isActive,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return model.NewPaxIndex(year, indexType, version, header.ReleaseDate, header.LastUpdated, groups), nil
}

// Replace swaps the stored (year, index_type) index for idx in one transaction.
func (r *paxIndexRepository) Replace(ctx context.Context, idx *model.PaxIndex) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM pax_indices WHERE year = $1 AND index_type = $2`,
		idx.Year, string(idx.IndexType)); err != nil {
		return fmt.Errorf("delete previous index: %w", err)
	}

	var indexID int
	if err := tx.QueryRow(ctx,
		`INSERT INTO pax_indices (year, index_type, version, release_date, last_updated)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		idx.Year, string(idx.IndexType), idx.Version, idx.ReleaseDate, idx.LastUpdated,
	).Scan(&indexID); err != nil {
		return fmt.Errorf("insert index: %w", err)
	}

	for pos, g := range idx.ClassGroups {
		var groupID int
		if err := tx.QueryRow(ctx,
			`INSERT INTO class_groups (pax_index_id, group_key, name, description, position)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			indexID, g.ID, g.Name, g.Description, pos,
		).Scan(&groupID); err != nil {
			return fmt.Errorf("insert group %s: %w", g.ID, err)
		}

		if len(g.Classes) == 0 {
			continue
		}
		classes := g.Classes
		if _, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"classes"},
			[]string{"class_group_id", "code", "name", "pax_index", "is_active", "position"},
			pgx.CopyFromSlice(len(classes), func(i int) ([]any, error) {
				c := classes[i]
				return []any{groupID, c.Code, c.Name, c.PaxIndex, c.IsActive, i}, nil
			}),
		); err != nil {
			return fmt.Errorf("insert classes for %s: %w", g.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *paxIndexRepository) Delete(ctx context.Context, year int, indexType model.IndexType) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM pax_indices WHERE year = $1 AND index_type = $2`,
		year, string(indexType))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
