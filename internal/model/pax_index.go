package model

import (
	"encoding/json"
	"time"
)

// IndexType is the event format a PAX index applies to.
type IndexType string

const (
	IndexTypeSolo    IndexType = "Solo"
	IndexTypeProSolo IndexType = "ProSolo"
)

// IndexTypes lists every recognized event format.
var IndexTypes = []IndexType{IndexTypeSolo, IndexTypeProSolo}

// Valid reports whether t is a recognized event format.
func (t IndexType) Valid() bool {
	for _, known := range IndexTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PaxIndex is one versioned snapshot of handicap data for a single year and
// event format.
//
// ClassesByCode is a cached index over ClassGroups. It is rebuilt by
// NewPaxIndex and on JSON decoding; it is never read from a payload.
type PaxIndex struct {
	Year          int              `json:"year"`
	IndexType     IndexType        `json:"index_type"`
	Version       string           `json:"version"`
	ReleaseDate   time.Time        `json:"release_date"`
	LastUpdated   time.Time        `json:"last_updated"`
	ClassGroups   []ClassGroup     `json:"class_groups"`
	ClassesByCode map[string]Class `json:"-"`
}

// NewPaxIndex builds a PaxIndex and derives its code lookup from groups.
func NewPaxIndex(year int, indexType IndexType, version string, releaseDate, lastUpdated time.Time, groups []ClassGroup) *PaxIndex {
	idx := &PaxIndex{
		Year:        year,
		IndexType:   indexType,
		Version:     version,
		ReleaseDate: releaseDate,
		LastUpdated: lastUpdated,
		ClassGroups: groups,
	}
	idx.ClassesByCode = buildClassesByCode(groups)
	return idx
}

// UnmarshalJSON decodes an index and re-derives ClassesByCode.
func (p *PaxIndex) UnmarshalJSON(data []byte) error {
	type plain PaxIndex
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = PaxIndex(decoded)
	p.ClassesByCode = buildClassesByCode(p.ClassGroups)
	return nil
}

// Summary returns the listing form of the index.
func (p *PaxIndex) Summary(source string) PaxIndexSummary {
	classCount := 0
	for _, g := range p.ClassGroups {
		classCount += len(g.Classes)
	}
	return PaxIndexSummary{
		Year:        p.Year,
		IndexType:   p.IndexType,
		Version:     p.Version,
		ReleaseDate: p.ReleaseDate,
		LastUpdated: p.LastUpdated,
		GroupCount:  len(p.ClassGroups),
		ClassCount:  classCount,
		Source:      source,
	}
}

// Later entries overwrite earlier ones, so duplicate codes shrink the map.
func buildClassesByCode(groups []ClassGroup) map[string]Class {
	m := make(map[string]Class)
	for _, g := range groups {
		for _, c := range g.Classes {
			m[c.Code] = c
		}
	}
	return m
}

// PaxIndexSummary is the lightweight listing entry for an index.
type PaxIndexSummary struct {
	Year        int       `json:"year"`
	IndexType   IndexType `json:"index_type"`
	Version     string    `json:"version"`
	ReleaseDate time.Time `json:"release_date"`
	LastUpdated time.Time `json:"last_updated"`
	GroupCount  int       `json:"group_count"`
	ClassCount  int       `json:"class_count"`
	Source      string    `json:"source"`
}

// Sources an index can be served from.
const (
	IndexSourceStored  = "stored"
	IndexSourceBundled = "bundled"
)
