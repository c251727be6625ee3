package tenants

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/optigate/pkg/query"
	"github.com/JaimeStill/optigate/pkg/repository"
	"github.com/JaimeStill/optigate/pkg/validation"
)

type repo struct {
	db        *sql.DB
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a tenant settings repository implementing the System interface.
func New(db *sql.DB, validator *validation.Validator, logger *slog.Logger, now func() time.Time) System {
	return &repo{
		db:        db,
		validator: validator,
		logger:    logger.With("system", "tenants"),
		now:       now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Exists(ctx context.Context, facilityID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		"SELECT EXISTS (SELECT 1 FROM facilities WHERE facility_id = $1)",
		facilityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check facility %d: %w", facilityID, err)
	}
	return exists, nil
}

func (r *repo) Settings(ctx context.Context, facilityID int64) (*Settings, error) {
	return r.settings(ctx, r.db, facilityID)
}

func (r *repo) UpdateSettings(ctx context.Context, facilityID int64, cmd UpdateSettingsCommand) (*Settings, error) {
	if err := r.validator.Struct(cmd); err != nil {
		return nil, err
	}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Settings, error) {
		current, err := r.settings(ctx, tx, facilityID)
		if err != nil {
			return nil, err
		}

		next := cmd.Apply(*current)
		now := r.now()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO facility_settings(facility_id, max_reportout_classification_count, analysis_classification_level, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (facility_id) DO UPDATE
			SET max_reportout_classification_count = EXCLUDED.max_reportout_classification_count,
			    analysis_classification_level = EXCLUDED.analysis_classification_level,
			    updated_at = EXCLUDED.updated_at`,
			facilityID, next.MaxReportoutClassificationCount, next.AnalysisClassificationLevel, now,
		)
		if err != nil {
			return nil, err
		}

		next.UpdatedAt = &now
		return &next, nil
	})
	if err != nil {
		return nil, repository.MapError(err, FacilityNotFound(facilityID), err)
	}

	r.logger.Info(
		"facility settings updated",
		"facility_id", facilityID,
		"max_count", s.MaxReportoutClassificationCount,
		"analysis_level", s.AnalysisClassificationLevel,
	)
	return s, nil
}

func (r *repo) settings(ctx context.Context, q repository.Querier, facilityID int64) (*Settings, error) {
	sqlStr, args := query.NewBuilder(projection).BuildSingle("FacilityID", facilityID)

	s, err := repository.QueryOne(ctx, q, sqlStr, args, scanSettings)
	if err != nil {
		return nil, repository.MapError(err, FacilityNotFound(facilityID), err)
	}
	return &s, nil
}
