package analysis

// ClassificationRef is the display data of a classification node.
type ClassificationRef struct {
	ID    int64
	Name  string
	Level int
}

// ClassificationLookup finds the display data of a classification by id.
type ClassificationLookup interface {
	Lookup(id int64) (ClassificationRef, bool)
}

// Refs is a ClassificationLookup over a fixed set of nodes.
type Refs map[int64]ClassificationRef

// Lookup returns the node stored under id.
func (r Refs) Lookup(id int64) (ClassificationRef, bool) {
	ref, ok := r[id]
	return ref, ok
}

// Effective is the outcome of resolving a ledger entry against its override.
type Effective struct {
	EffectiveIsIncluded       bool    `json:"effective_is_included"`
	EffectiveClassificationID *int64  `json:"effective_classification_id"`
	ClassificationName        *string `json:"classification_name"`
	ClassificationLevel       *int    `json:"classification_level"`
	HasOverride               bool    `json:"has_override"`
}

// Resolve computes the effective values of entry. Override fields win when
// present; nil override fields fall through to the entry defaults. The
// display name and level come from the effective classification, which may
// sit in a different branch than the default.
func Resolve(entry LedgerEntry, ov *Override, lookup ClassificationLookup) Effective {
	eff := Effective{
		EffectiveIsIncluded:       entry.DefaultIsIncluded,
		EffectiveClassificationID: entry.DefaultClassificationID,
		HasOverride:               ov != nil,
	}

	if ov != nil {
		if ov.IsIncluded != nil {
			eff.EffectiveIsIncluded = *ov.IsIncluded
		}
		if ov.ClassificationID != nil {
			eff.EffectiveClassificationID = ov.ClassificationID
		}
	}

	if eff.EffectiveClassificationID != nil && lookup != nil {
		if ref, ok := lookup.Lookup(*eff.EffectiveClassificationID); ok {
			eff.ClassificationName = &ref.Name
			eff.ClassificationLevel = &ref.Level
		}
	}

	return eff
}
