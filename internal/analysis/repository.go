package analysis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/JaimeStill/optigate/internal/tenants"
	"github.com/JaimeStill/optigate/pkg/metrics"
	"github.com/JaimeStill/optigate/pkg/pagination"
	"github.com/JaimeStill/optigate/pkg/query"
	"github.com/JaimeStill/optigate/pkg/repository"
	"github.com/JaimeStill/optigate/pkg/validation"
)

type repo struct {
	db         *sql.DB
	tenants    tenants.System
	validator  *validation.Validator
	recorder   metrics.Recorder
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates an analysis settings repository implementing the System interface.
func New(
	db *sql.DB,
	tenants tenants.System,
	validator *validation.Validator,
	recorder metrics.Recorder,
	logger *slog.Logger,
	pagination pagination.Config,
	now func() time.Time,
) System {
	return &repo{
		db:         db,
		tenants:    tenants,
		validator:  validator,
		recorder:   recorder,
		logger:     logger.With("system", "analysis"),
		pagination: pagination,
		now:        now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, facilityID int64, filters Filters, w pagination.Window) (*pagination.WindowResult[Setting], error) {
	if err := w.Validate(r.pagination); err != nil {
		return nil, err
	}

	ok, err := r.tenants.Exists(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, tenants.FacilityNotFound(facilityID)
	}

	b := query.NewBuilder(settingProjection, defaultSort).WhereEquals("FacilityID", facilityID)
	filters.Apply(b)

	countSQL, countArgs := b.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count analysis settings: %w", err)
	}

	windowSQL, windowArgs := b.BuildWindow(w.Skip, w.Limit)
	items, err := repository.QueryMany(ctx, r.db, windowSQL, windowArgs, scanSetting(r.logger))
	if err != nil {
		return nil, fmt.Errorf("query analysis settings: %w", err)
	}

	result := pagination.NewWindowResult(items, total, w)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, ledgerID int64) (*Setting, error) {
	sqlStr, args := query.NewBuilder(settingProjection).BuildSingle("ID", ledgerID)

	s, err := repository.QueryOne(ctx, r.db, sqlStr, args, scanSetting(r.logger))
	if err != nil {
		return nil, repository.MapError(err, LedgerNotFound(ledgerID), err)
	}
	return &s, nil
}

func (r *repo) FacilityOf(ctx context.Context, ledgerID int64) (int64, error) {
	var facilityID int64
	err := r.db.QueryRowContext(
		ctx,
		"SELECT facility_id FROM equipment_ledger WHERE ledger_id = $1",
		ledgerID,
	).Scan(&facilityID)
	if err != nil {
		return 0, repository.MapError(err, LedgerNotFound(ledgerID), err)
	}
	return facilityID, nil
}

func (r *repo) SetIncluded(ctx context.Context, ledgerID int64, cmd SetIncludedCommand, actor string) (*SetIncludedResult, error) {
	result, err := r.setIncluded(ctx, ledgerID, cmd, actor)
	r.recorder.Observe("analysis", "set_included", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"analysis target overridden",
		"ledger_id", ledgerID,
		"is_included", result.OverrideIsIncluded,
		"history_length", result.HistoryLength,
		"actor", actor,
	)
	return result, nil
}

func (r *repo) setIncluded(ctx context.Context, ledgerID int64, cmd SetIncludedCommand, actor string) (*SetIncludedResult, error) {
	if err := r.validator.Struct(cmd); err != nil {
		return nil, err
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*SetIncludedResult, error) {
		entry, current, err := r.lockForWrite(ctx, tx, ledgerID)
		if err != nil {
			return nil, err
		}

		next, err := PlanIncluded(entry, current, cmd, actor, r.now())
		if err != nil {
			return nil, err
		}

		if err := r.save(ctx, tx, next); err != nil {
			return nil, err
		}

		eff := Resolve(entry, &next, nil)
		return &SetIncludedResult{
			LedgerID:            ledgerID,
			OverrideIsIncluded:  *next.IsIncluded,
			EffectiveIsIncluded: eff.EffectiveIsIncluded,
			UpdatedAt:           *next.LastModifiedAt,
			HistoryLength:       len(next.History),
		}, nil
	})
}

func (r *repo) SetClassification(ctx context.Context, ledgerID int64, cmd SetClassificationCommand, actor string) (*SetClassificationResult, error) {
	result, err := r.setClassification(ctx, ledgerID, cmd, actor)
	r.recorder.Observe("analysis", "set_classification", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"classification overridden",
		"ledger_id", ledgerID,
		"classification_id", result.OverrideClassificationID,
		"history_length", result.HistoryLength,
		"actor", actor,
	)
	return result, nil
}

func (r *repo) setClassification(ctx context.Context, ledgerID int64, cmd SetClassificationCommand, actor string) (*SetClassificationResult, error) {
	if err := r.validator.Struct(cmd); err != nil {
		return nil, err
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*SetClassificationResult, error) {
		entry, current, err := r.lockForWrite(ctx, tx, ledgerID)
		if err != nil {
			return nil, err
		}

		next, err := PlanClassification(entry, current, cmd, actor, r.now())
		if err != nil {
			return nil, err
		}

		ref, err := r.classification(ctx, tx, *next.ClassificationID)
		if err != nil {
			return nil, err
		}

		if err := r.save(ctx, tx, next); err != nil {
			return nil, err
		}

		eff := Resolve(entry, &next, Refs{ref.ID: ref})
		return &SetClassificationResult{
			LedgerID:                  ledgerID,
			OverrideClassificationID:  *next.ClassificationID,
			EffectiveClassificationID: *eff.EffectiveClassificationID,
			ClassificationName:        ref.Name,
			UpdatedAt:                 *next.LastModifiedAt,
			HistoryLength:             len(next.History),
		}, nil
	})
}

func (r *repo) Restore(ctx context.Context, ledgerID int64) (*RestoreResult, error) {
	result, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*RestoreResult, error) {
		if _, err := r.lockLedger(ctx, tx, ledgerID); err != nil {
			return nil, err
		}

		err := repository.ExecExpectOne(ctx, tx, "DELETE FROM analysis_overrides WHERE ledger_id = $1", ledgerID)
		if err != nil {
			return nil, repository.MapError(err, OverrideNotFound(ledgerID), err)
		}

		return &RestoreResult{AffectedCount: 1, LedgerIDs: []int64{ledgerID}}, nil
	})
	r.recorder.Observe("analysis", "restore", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("override restored to default", "ledger_id", ledgerID)
	return result, nil
}

func (r *repo) RestoreFacility(ctx context.Context, facilityID int64) (*RestoreResult, error) {
	ids, err := repository.QueryMany(
		ctx, r.db, `
		DELETE FROM analysis_overrides o
		USING equipment_ledger l
		WHERE o.ledger_id = l.ledger_id AND l.facility_id = $1
		RETURNING o.ledger_id`,
		[]any{facilityID},
		func(s repository.Scanner) (int64, error) {
			var id int64
			err := s.Scan(&id)
			return id, err
		},
	)
	r.recorder.Observe("analysis", "restore_facility", err)
	if err != nil {
		return nil, repository.MapError(err, err, err)
	}

	slices.Sort(ids)
	r.logger.Info("facility overrides restored to default", "facility_id", facilityID, "affected", len(ids))
	return &RestoreResult{AffectedCount: len(ids), LedgerIDs: ids}, nil
}

// lockForWrite locks the ledger row and loads its override, serializing
// concurrent writers of the same entry.
func (r *repo) lockForWrite(ctx context.Context, tx *sql.Tx, ledgerID int64) (LedgerEntry, *Override, error) {
	entry, err := r.lockLedger(ctx, tx, ledgerID)
	if err != nil {
		return LedgerEntry{}, nil, err
	}

	sqlStr, args := query.NewBuilder(overrideProjection).BuildSingle("LedgerID", ledgerID)
	stored, err := repository.QueryOne(ctx, tx, sqlStr, args, scanOverride)
	if errors.Is(err, sql.ErrNoRows) {
		return entry, nil, nil
	}
	if err != nil {
		return LedgerEntry{}, nil, fmt.Errorf("load override %d: %w", ledgerID, err)
	}

	ov := stored.Override
	ov.History = stored.history(r.logger)
	return entry, &ov, nil
}

func (r *repo) lockLedger(ctx context.Context, tx *sql.Tx, ledgerID int64) (LedgerEntry, error) {
	sqlStr, args := query.NewBuilder(ledgerProjection).BuildSingle("ID", ledgerID)

	entry, err := repository.QueryOne(ctx, tx, sqlStr+" FOR UPDATE", args, scanLedger)
	if err != nil {
		return LedgerEntry{}, repository.MapError(err, LedgerNotFound(ledgerID), err)
	}
	return entry, nil
}

func (r *repo) classification(ctx context.Context, q repository.Querier, id int64) (ClassificationRef, error) {
	ref := ClassificationRef{ID: id}
	err := q.QueryRowContext(
		ctx,
		"SELECT name, level FROM classifications WHERE classification_id = $1",
		id,
	).Scan(&ref.Name, &ref.Level)
	if err != nil {
		return ref, repository.MapError(err, UnknownClassification(id), err)
	}
	return ref, nil
}

func (r *repo) save(ctx context.Context, tx *sql.Tx, ov Override) error {
	note, err := EncodeHistory(ov.History)
	if err != nil {
		return fmt.Errorf("encode history of %d: %w", ov.LedgerID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_overrides(
			ledger_id, override_is_included, override_classification_id, note, version,
			created_by, created_at, last_modified_by, last_modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (ledger_id) DO UPDATE
		SET override_is_included = EXCLUDED.override_is_included,
		    override_classification_id = EXCLUDED.override_classification_id,
		    note = EXCLUDED.note,
		    version = EXCLUDED.version,
		    last_modified_by = EXCLUDED.last_modified_by,
		    last_modified_at = EXCLUDED.last_modified_at`,
		ov.LedgerID, ov.IsIncluded, ov.ClassificationID, string(note), ov.Version,
		ov.CreatedBy, ov.CreatedAt, ov.LastModifiedBy, ov.LastModifiedAt,
	)
	if err != nil {
		return repository.MapError(err, err, err)
	}
	return nil
}
