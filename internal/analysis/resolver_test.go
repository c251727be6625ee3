package analysis_test

import (
	"testing"

	"github.com/JaimeStill/optigate/internal/analysis"
)

func ptr[T any](v T) *T { return &v }

func TestResolve(t *testing.T) {
	refs := analysis.Refs{
		100: {ID: 100, Name: "Ventilators", Level: 3},
		200: {ID: 200, Name: "Infusion pumps", Level: 2},
	}

	tests := []struct {
		name         string
		entry        analysis.LedgerEntry
		ov           *analysis.Override
		wantIncluded bool
		wantClass    *int64
		wantName     string
		wantLevel    int
		wantOverride bool
	}{
		{
			name:         "no override",
			entry:        analysis.LedgerEntry{DefaultIsIncluded: false, DefaultClassificationID: ptr(int64(100))},
			wantIncluded: false,
			wantClass:    ptr(int64(100)),
			wantName:     "Ventilators",
			wantLevel:    3,
		},
		{
			name:         "override with nil fields",
			entry:        analysis.LedgerEntry{DefaultIsIncluded: true, DefaultClassificationID: ptr(int64(100))},
			ov:           &analysis.Override{},
			wantIncluded: true,
			wantClass:    ptr(int64(100)),
			wantName:     "Ventilators",
			wantLevel:    3,
			wantOverride: true,
		},
		{
			name:         "inclusion only",
			entry:        analysis.LedgerEntry{DefaultIsIncluded: false, DefaultClassificationID: ptr(int64(100))},
			ov:           &analysis.Override{IsIncluded: ptr(true)},
			wantIncluded: true,
			wantClass:    ptr(int64(100)),
			wantName:     "Ventilators",
			wantLevel:    3,
			wantOverride: true,
		},
		{
			name:         "classification only",
			entry:        analysis.LedgerEntry{DefaultIsIncluded: true, DefaultClassificationID: ptr(int64(100))},
			ov:           &analysis.Override{ClassificationID: ptr(int64(200))},
			wantIncluded: true,
			wantClass:    ptr(int64(200)),
			wantName:     "Infusion pumps",
			wantLevel:    2,
			wantOverride: true,
		},
		{
			name:         "both fields",
			entry:        analysis.LedgerEntry{DefaultIsIncluded: true, DefaultClassificationID: ptr(int64(100))},
			ov:           &analysis.Override{IsIncluded: ptr(false), ClassificationID: ptr(int64(200))},
			wantIncluded: false,
			wantClass:    ptr(int64(200)),
			wantName:     "Infusion pumps",
			wantLevel:    2,
			wantOverride: true,
		},
		{
			name:         "override onto unclassified entry",
			entry:        analysis.LedgerEntry{DefaultIsIncluded: true},
			ov:           &analysis.Override{ClassificationID: ptr(int64(200))},
			wantIncluded: true,
			wantClass:    ptr(int64(200)),
			wantName:     "Infusion pumps",
			wantLevel:    2,
			wantOverride: true,
		},
		{
			name:         "unclassified without override",
			entry:        analysis.LedgerEntry{DefaultIsIncluded: true},
			wantIncluded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.Resolve(tt.entry, tt.ov, refs)

			if got.EffectiveIsIncluded != tt.wantIncluded {
				t.Errorf("EffectiveIsIncluded = %v, want %v", got.EffectiveIsIncluded, tt.wantIncluded)
			}
			if got.HasOverride != tt.wantOverride {
				t.Errorf("HasOverride = %v, want %v", got.HasOverride, tt.wantOverride)
			}

			if tt.wantClass == nil {
				if got.EffectiveClassificationID != nil {
					t.Errorf("EffectiveClassificationID = %d, want nil", *got.EffectiveClassificationID)
				}
				if got.ClassificationName != nil {
					t.Errorf("ClassificationName = %q, want nil", *got.ClassificationName)
				}
				return
			}

			if got.EffectiveClassificationID == nil || *got.EffectiveClassificationID != *tt.wantClass {
				t.Fatalf("EffectiveClassificationID = %v, want %d", got.EffectiveClassificationID, *tt.wantClass)
			}
			if got.ClassificationName == nil || *got.ClassificationName != tt.wantName {
				t.Errorf("ClassificationName = %v, want %q", got.ClassificationName, tt.wantName)
			}
			if got.ClassificationLevel == nil || *got.ClassificationLevel != tt.wantLevel {
				t.Errorf("ClassificationLevel = %v, want %d", got.ClassificationLevel, tt.wantLevel)
			}
		})
	}
}

func TestResolveWithoutLookup(t *testing.T) {
	entry := analysis.LedgerEntry{DefaultClassificationID: ptr(int64(100))}
	got := analysis.Resolve(entry, &analysis.Override{ClassificationID: ptr(int64(300))}, nil)

	if got.EffectiveClassificationID == nil || *got.EffectiveClassificationID != 300 {
		t.Errorf("EffectiveClassificationID = %v, want 300", got.EffectiveClassificationID)
	}
	if got.ClassificationName != nil {
		t.Errorf("ClassificationName = %q, want nil", *got.ClassificationName)
	}
}
