package pax

import "github.com/stemsi/paxcalc-backend/internal/model"

// FindClass returns the class with exactly this code. The second result is
// false when the index has no such class.
func FindClass(code string, idx *model.PaxIndex) (model.Class, bool) {
	if idx == nil {
		return model.Class{}, false
	}
	c, ok := idx.ClassesByCode[code]
	return c, ok
}

// ActiveClasses returns every active class, groups in index order and
// classes in group order.
func ActiveClasses(idx *model.PaxIndex) []model.Class {
	active := []model.Class{}
	if idx == nil {
		return active
	}
	for _, g := range idx.ClassGroups {
		for _, c := range g.Classes {
			if c.IsActive {
				active = append(active, c)
			}
		}
	}
	return active
}
