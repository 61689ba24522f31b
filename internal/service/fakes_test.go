package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/repository"
)

type indexKey struct {
	year      int
	indexType model.IndexType
}

type fakeIndexRepo struct {
	indices  map[indexKey]*model.PaxIndex
	getErr   error
	replaced []*model.PaxIndex
}

func newFakeIndexRepo(indices ...*model.PaxIndex) *fakeIndexRepo {
	r := &fakeIndexRepo{indices: map[indexKey]*model.PaxIndex{}}
	for _, idx := range indices {
		r.indices[indexKey{idx.Year, idx.IndexType}] = idx
	}
	return r
}

func (r *fakeIndexRepo) List(ctx context.Context) ([]model.PaxIndexSummary, error) {
	var out []model.PaxIndexSummary
	for _, idx := range r.indices {
		out = append(out, idx.Summary(model.IndexSourceStored))
	}
	return out, nil
}

func (r *fakeIndexRepo) Get(ctx context.Context, year int, indexType model.IndexType) (*model.PaxIndex, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	idx, ok := r.indices[indexKey{year, indexType}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return idx, nil
}

func (r *fakeIndexRepo) Replace(ctx context.Context, idx *model.PaxIndex) error {
	r.indices[indexKey{idx.Year, idx.IndexType}] = idx
	r.replaced = append(r.replaced, idx)
	return nil
}

func (r *fakeIndexRepo) Delete(ctx context.Context, year int, indexType model.IndexType) error {
	key := indexKey{year, indexType}
	if _, ok := r.indices[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.indices, key)
	return nil
}

type fakeIndexCache struct {
	entries map[indexKey]*model.PaxIndex
	sets    int
	deletes int
}

func newFakeIndexCache() *fakeIndexCache {
	return &fakeIndexCache{entries: map[indexKey]*model.PaxIndex{}}
}

func (c *fakeIndexCache) Get(ctx context.Context, year int, indexType model.IndexType) (*model.PaxIndex, error) {
	idx, ok := c.entries[indexKey{year, indexType}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return idx, nil
}

func (c *fakeIndexCache) Set(ctx context.Context, idx *model.PaxIndex) error {
	c.entries[indexKey{idx.Year, idx.IndexType}] = idx
	c.sets++
	return nil
}

func (c *fakeIndexCache) Delete(ctx context.Context, year int, indexType model.IndexType) error {
	delete(c.entries, indexKey{year, indexType})
	c.deletes++
	return nil
}

type fakeQueue struct {
	records []model.CalculationRecord
	err     error
}

func (q *fakeQueue) Push(ctx context.Context, records ...model.CalculationRecord) error {
	if q.err != nil {
		return q.err
	}
	q.records = append(q.records, records...)
	return nil
}

func (q *fakeQueue) Requeue(ctx context.Context, items ...model.QueuedCalculation) error {
	for _, item := range items {
		q.records = append(q.records, item.Record)
	}
	return nil
}

func (q *fakeQueue) Pop(ctx context.Context, timeout time.Duration) (*model.QueuedCalculation, error) {
	if len(q.records) == 0 {
		return nil, nil
	}
	rec := q.records[0]
	q.records = q.records[1:]
	return &model.QueuedCalculation{Record: rec}, nil
}

func (q *fakeQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.records)), nil
}

type fakeLastUsed struct {
	saved map[string]*model.LastUsed
}

func newFakeLastUsed() *fakeLastUsed {
	return &fakeLastUsed{saved: map[string]*model.LastUsed{}}
}

func (r *fakeLastUsed) Save(ctx context.Context, clientID string, lu *model.LastUsed) error {
	r.saved[clientID] = lu
	return nil
}

func (r *fakeLastUsed) Get(ctx context.Context, clientID string) (*model.LastUsed, error) {
	lu, ok := r.saved[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return lu, nil
}

type fakeHistory struct {
	lastLimit int
}

func (h *fakeHistory) InsertBatch(ctx context.Context, records []model.CalculationRecord) error {
	return nil
}

func (h *fakeHistory) Insert(ctx context.Context, rec model.CalculationRecord) error {
	return nil
}

func (h *fakeHistory) ListRecent(ctx context.Context, limit int) ([]model.CalculationRecord, error) {
	h.lastLimit = limit
	return []model.CalculationRecord{}, nil
}

type fakeAdminRepo struct {
	admins []*model.Admin
}

func (r *fakeAdminRepo) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	for _, a := range r.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAdminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	for _, a := range r.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAdminRepo) Create(ctx context.Context, a *model.Admin) error {
	for _, existing := range r.admins {
		if existing.Email == a.Email {
			return errors.New("duplicate email")
		}
	}
	a.ID = len(r.admins) + 1
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.admins = append(r.admins, a)
	return nil
}

func testIndex(year int, indexType model.IndexType, version string) *model.PaxIndex {
	groups := []model.ClassGroup{
		{
			ID:   "street",
			Name: "Street",
			Classes: []model.Class{
				{Code: "SS", Name: "Super Street", PaxIndex: 0.844, IsActive: true},
				{Code: "GS", Name: "G Street", PaxIndex: 0.83, IsActive: true},
			},
		},
		{
			ID:   "xtra",
			Name: "Xtra",
			Classes: []model.Class{
				{Code: "XA", Name: "Xtra A", PaxIndex: 0.9, IsActive: false},
			},
		},
	}
	released := time.Date(year, 1, 15, 0, 0, 0, 0, time.UTC)
	return model.NewPaxIndex(year, indexType, version, released, released, groups)
}

func brokenIndex(year int, indexType model.IndexType) *model.PaxIndex {
	idx := testIndex(year, indexType, fmt.Sprintf("%d-broken", year))
	idx.ClassGroups[1].Classes = append(idx.ClassGroups[1].Classes,
		model.Class{Code: "SS", Name: "Duplicate", PaxIndex: 0.8, IsActive: true})
	return idx
}
