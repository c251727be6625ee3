package selections

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/optigate/internal/classifications"
	"github.com/JaimeStill/optigate/internal/tenants"
	"github.com/JaimeStill/optigate/pkg/metrics"
	"github.com/JaimeStill/optigate/pkg/query"
	"github.com/JaimeStill/optigate/pkg/repository"
)

const lockNamespace = "report_selection"

type repo struct {
	db              *sql.DB
	tenants         tenants.System
	classifications classifications.System
	recorder        metrics.Recorder
	logger          *slog.Logger
	now             func() time.Time
}

// New creates a report-selection repository implementing the System interface.
func New(
	db *sql.DB,
	tenants tenants.System,
	classifications classifications.System,
	recorder metrics.Recorder,
	logger *slog.Logger,
	now func() time.Time,
) System {
	return &repo{
		db:              db,
		tenants:         tenants,
		classifications: classifications,
		recorder:        recorder,
		logger:          logger.With("system", "selections"),
		now:             now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Get(ctx context.Context, facilityID int64) (*Result, error) {
	settings, err := r.tenants.Settings(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	current, err := r.list(ctx, r.db, facilityID)
	if err != nil {
		return nil, err
	}

	if len(current) > settings.MaxReportoutClassificationCount {
		r.logger.Warn(
			"stored selection exceeds facility maximum, capped",
			"facility_id", facilityID,
			"stored", len(current),
			"max_count", settings.MaxReportoutClassificationCount,
		)
	}

	return &Result{
		FacilityID: facilityID,
		MaxCount:   settings.MaxReportoutClassificationCount,
		Selections: Cap(current, settings.MaxReportoutClassificationCount),
	}, nil
}

func (r *repo) Set(ctx context.Context, facilityID int64, cmd SetCommand, actor string) (*SetResult, error) {
	result, err := r.set(ctx, facilityID, cmd, actor)
	r.recorder.Observe("selections", "set", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"report selection replaced",
		"facility_id", facilityID,
		"created", result.CreatedCount,
		"deleted", result.DeletedCount,
		"actor", actor,
	)
	return result, nil
}

func (r *repo) set(ctx context.Context, facilityID int64, cmd SetCommand, actor string) (*SetResult, error) {
	settings, err := r.tenants.Settings(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	if err := Check(cmd.ClassificationIDs, settings.MaxReportoutClassificationCount); err != nil {
		return nil, err
	}

	missing, err := r.classifications.MissingFromFacility(ctx, facilityID, cmd.ClassificationIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, NotInFacility(facilityID, missing)
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*SetResult, error) {
		if err := repository.AdvisoryLock(ctx, tx, lockNamespace, facilityID); err != nil {
			return nil, repository.MapError(err, err, err)
		}

		deleted, err := r.deleteAll(ctx, tx, facilityID)
		if err != nil {
			return nil, err
		}

		now := r.now()
		for _, s := range Rank(cmd.ClassificationIDs) {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO report_selections(facility_id, rank, classification_id, created_by, created_at)
				VALUES ($1, $2, $3, $4, $5)`,
				facilityID, s.Rank, s.ClassificationID, actor, now,
			)
			if err != nil {
				return nil, repository.MapError(err, err, err)
			}
		}

		stored, err := r.list(ctx, tx, facilityID)
		if err != nil {
			return nil, err
		}

		return &SetResult{
			FacilityID:   facilityID,
			CreatedCount: len(cmd.ClassificationIDs),
			DeletedCount: deleted,
			Selections:   stored,
		}, nil
	})
}

func (r *repo) Clear(ctx context.Context, facilityID int64) (*ClearResult, error) {
	result, err := r.clear(ctx, facilityID)
	r.recorder.Observe("selections", "clear", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("report selection cleared", "facility_id", facilityID, "deleted", result.DeletedCount)
	return result, nil
}

func (r *repo) clear(ctx context.Context, facilityID int64) (*ClearResult, error) {
	ok, err := r.tenants.Exists(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, tenants.FacilityNotFound(facilityID)
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*ClearResult, error) {
		if err := repository.AdvisoryLock(ctx, tx, lockNamespace, facilityID); err != nil {
			return nil, repository.MapError(err, err, err)
		}

		deleted, err := r.deleteAll(ctx, tx, facilityID)
		if err != nil {
			return nil, err
		}
		return &ClearResult{FacilityID: facilityID, DeletedCount: deleted}, nil
	})
}

func (r *repo) list(ctx context.Context, q repository.Querier, facilityID int64) ([]Selection, error) {
	sqlStr, args := query.NewBuilder(projection, query.Asc("Rank")).
		WhereEquals("FacilityID", facilityID).
		Build()

	items, err := repository.QueryMany(ctx, q, sqlStr, args, scanSelection)
	if err != nil {
		return nil, fmt.Errorf("query report selection of facility %d: %w", facilityID, err)
	}
	return items, nil
}

func (r *repo) deleteAll(ctx context.Context, tx *sql.Tx, facilityID int64) (int, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM report_selections WHERE facility_id = $1", facilityID)
	if err != nil {
		return 0, repository.MapError(err, err, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
