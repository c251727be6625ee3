package analysis

import (
	"database/sql"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/optigate/pkg/faults"
	"github.com/JaimeStill/optigate/pkg/query"
	"github.com/JaimeStill/optigate/pkg/repository"
)

var ledgerProjection = query.
	NewProjectionMap("public", "equipment_ledger", "l").
	Project("ledger_id", "ID").
	Project("facility_id", "FacilityID").
	Project("model_number", "ModelNumber").
	Project("product_name", "ProductName").
	Project("maker_name", "MakerName").
	Project("default_classification_id", "DefaultClassificationID").
	Project("stock_quantity", "StockQuantity").
	Project("default_is_included", "DefaultIsIncluded")

var overrideProjection = query.
	NewProjectionMap("public", "analysis_overrides", "o").
	Project("ledger_id", "LedgerID").
	Project("override_is_included", "IsIncluded").
	Project("override_classification_id", "ClassificationID").
	Project("note", "History").
	Project("version", "Version").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt").
	Project("last_modified_by", "LastModifiedBy").
	Project("last_modified_at", "LastModifiedAt")

// settingProjection joins every ledger row with its optional override and the
// display data of both the default and the override classification.
var settingProjection = query.
	NewProjectionMap("public", "equipment_ledger", "l").
	Project("ledger_id", "ID").
	Project("facility_id", "FacilityID").
	Project("model_number", "ModelNumber").
	Project("product_name", "ProductName").
	Project("maker_name", "MakerName").
	Project("default_classification_id", "DefaultClassificationID").
	Project("stock_quantity", "StockQuantity").
	Project("default_is_included", "DefaultIsIncluded").
	Join("public", "analysis_overrides", "o", "LEFT JOIN", "o.ledger_id = l.ledger_id").
	Project("ledger_id", "OverrideLedgerID").
	Project("override_is_included", "OverrideIsIncluded").
	Project("override_classification_id", "OverrideClassificationID").
	Project("note", "History").
	Project("version", "Version").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt").
	Project("last_modified_by", "LastModifiedBy").
	Project("last_modified_at", "LastModifiedAt").
	Join("public", "classifications", "dc", "LEFT JOIN", "dc.classification_id = l.default_classification_id").
	Project("name", "DefaultClassificationName").
	Project("level", "DefaultClassificationLevel").
	Join("public", "classifications", "oc", "LEFT JOIN", "oc.classification_id = o.override_classification_id").
	Project("name", "OverrideClassificationName").
	Project("level", "OverrideClassificationLevel")

var defaultSort = query.Asc("ID")

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEqualsAny(f.ClassificationID, "DefaultClassificationID", "OverrideClassificationID")
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if v := values.Get("classification_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, faults.Validation("classification_id must be a positive integer: %q", v).With(v)
		}
		f.ClassificationID = &id
	}

	return f, nil
}

// storedOverride is an override row with its history still serialized.
type storedOverride struct {
	Override
	note []byte
}

// history decodes the stored note. Malformed content degrades to an empty
// history and is logged.
func (s storedOverride) history(logger *slog.Logger) History {
	h, err := DecodeHistory(s.note)
	if err != nil {
		logger.Warn("malformed override history ignored", "ledger_id", s.LedgerID, "error", err)
		return History{}
	}
	return h
}

func scanLedger(s repository.Scanner) (LedgerEntry, error) {
	var (
		e           LedgerEntry
		productName sql.NullString
		makerName   sql.NullString
		defaultID   sql.NullInt64
	)

	err := s.Scan(
		&e.ID,
		&e.FacilityID,
		&e.ModelNumber,
		&productName,
		&makerName,
		&defaultID,
		&e.StockQuantity,
		&e.DefaultIsIncluded,
	)
	if err != nil {
		return e, err
	}

	e.ProductName = nullString(productName)
	e.MakerName = nullString(makerName)
	e.DefaultClassificationID = nullInt64(defaultID)
	return e, nil
}

func scanOverride(s repository.Scanner) (storedOverride, error) {
	var (
		o              storedOverride
		isIncluded     sql.NullBool
		classification sql.NullInt64
		createdBy      sql.NullString
		modifiedBy     sql.NullString
		modifiedAt     sql.NullTime
	)

	err := s.Scan(
		&o.LedgerID,
		&isIncluded,
		&classification,
		&o.note,
		&o.Version,
		&createdBy,
		&o.CreatedAt,
		&modifiedBy,
		&modifiedAt,
	)
	if err != nil {
		return o, err
	}

	o.IsIncluded = nullBool(isIncluded)
	o.ClassificationID = nullInt64(classification)
	o.CreatedBy = createdBy.String
	o.LastModifiedBy = nullString(modifiedBy)
	o.LastModifiedAt = nullTime(modifiedAt)
	return o, nil
}

// scanSetting returns a ScanFunc that resolves each joined row into a Setting.
func scanSetting(logger *slog.Logger) repository.ScanFunc[Setting] {
	return func(s repository.Scanner) (Setting, error) {
		var (
			e              LedgerEntry
			productName    sql.NullString
			makerName      sql.NullString
			defaultID      sql.NullInt64
			overrideLedger sql.NullInt64
			isIncluded     sql.NullBool
			classification sql.NullInt64
			note           []byte
			version        sql.NullInt32
			createdBy      sql.NullString
			createdAt      sql.NullTime
			modifiedBy     sql.NullString
			modifiedAt     sql.NullTime
			defaultName    sql.NullString
			defaultLevel   sql.NullInt32
			overrideName   sql.NullString
			overrideLevel  sql.NullInt32
		)

		err := s.Scan(
			&e.ID,
			&e.FacilityID,
			&e.ModelNumber,
			&productName,
			&makerName,
			&defaultID,
			&e.StockQuantity,
			&e.DefaultIsIncluded,
			&overrideLedger,
			&isIncluded,
			&classification,
			&note,
			&version,
			&createdBy,
			&createdAt,
			&modifiedBy,
			&modifiedAt,
			&defaultName,
			&defaultLevel,
			&overrideName,
			&overrideLevel,
		)
		if err != nil {
			return Setting{}, err
		}

		e.ProductName = nullString(productName)
		e.MakerName = nullString(makerName)
		e.DefaultClassificationID = nullInt64(defaultID)

		refs := Refs{}
		if defaultID.Valid && defaultName.Valid {
			refs[defaultID.Int64] = ClassificationRef{ID: defaultID.Int64, Name: defaultName.String, Level: int(defaultLevel.Int32)}
		}
		if classification.Valid && overrideName.Valid {
			refs[classification.Int64] = ClassificationRef{ID: classification.Int64, Name: overrideName.String, Level: int(overrideLevel.Int32)}
		}

		var ov *storedOverride
		if overrideLedger.Valid {
			ov = &storedOverride{
				Override: Override{
					LedgerID:         overrideLedger.Int64,
					IsIncluded:       nullBool(isIncluded),
					ClassificationID: nullInt64(classification),
					Version:          int(version.Int32),
					CreatedBy:        createdBy.String,
					CreatedAt:        createdAt.Time,
					LastModifiedBy:   nullString(modifiedBy),
					LastModifiedAt:   nullTime(modifiedAt),
				},
				note: note,
			}
			ov.History = ov.history(logger)
		}

		return newSetting(e, ov, refs), nil
	}
}

func newSetting(e LedgerEntry, ov *storedOverride, lookup ClassificationLookup) Setting {
	s := Setting{
		LedgerEntry: e,
		History:     History{},
	}

	if ref, ok := lookupDefault(e, lookup); ok {
		s.DefaultClassificationName = &ref.Name
		s.DefaultClassificationLevel = &ref.Level
	}

	if ov == nil {
		s.Effective = Resolve(e, nil, lookup)
		return s
	}

	s.Effective = Resolve(e, &ov.Override, lookup)
	s.OverrideIsIncluded = ov.IsIncluded
	s.OverrideClassificationID = ov.ClassificationID
	s.History = ov.History
	s.Version = ov.Version
	s.LastModifiedBy = ov.LastModifiedBy
	s.LastModifiedAt = ov.LastModifiedAt
	return s
}

func lookupDefault(e LedgerEntry, lookup ClassificationLookup) (ClassificationRef, bool) {
	if e.DefaultClassificationID == nil || lookup == nil {
		return ClassificationRef{}, false
	}
	return lookup.Lookup(*e.DefaultClassificationID)
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
