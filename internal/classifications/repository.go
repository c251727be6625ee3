package classifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/optigate/internal/tenants"
	"github.com/JaimeStill/optigate/pkg/faults"
	"github.com/JaimeStill/optigate/pkg/metrics"
	"github.com/JaimeStill/optigate/pkg/pagination"
	"github.com/JaimeStill/optigate/pkg/query"
	"github.com/JaimeStill/optigate/pkg/repository"
	"github.com/JaimeStill/optigate/pkg/validation"
)

const importLockNamespace = "classification_import"

type repo struct {
	db         *sql.DB
	tenants    tenants.System
	validator  *validation.Validator
	recorder   metrics.Recorder
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates a classification repository implementing the System interface.
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
		logger:     logger.With("system", "classifications"),
		pagination: pagination,
		now:        now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, facilityID int64, filters Filters, w pagination.Window) (*pagination.WindowResult[Classification], error) {
	if err := w.Validate(r.pagination); err != nil {
		return nil, err
	}
	if err := r.requireFacility(ctx, facilityID); err != nil {
		return nil, err
	}

	b := query.NewBuilder(projection, defaultSort...).WhereEquals("FacilityID", facilityID)
	filters.Apply(b)

	countSQL, countArgs := b.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	windowSQL, windowArgs := b.BuildWindow(w.Skip, w.Limit)
	items, err := repository.QueryMany(ctx, r.db, windowSQL, windowArgs, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}

	result := pagination.NewWindowResult(items, total, w)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Classification, error) {
	return r.find(ctx, r.db, id)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand, actor string) (*Classification, error) {
	c, err := r.create(ctx, cmd, actor)
	r.recorder.Observe("classifications", "create", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"classification created",
		"id", c.ID,
		"level", c.Level,
		"name", c.Name,
		"actor", actor,
	)
	return c, nil
}

func (r *repo) create(ctx context.Context, cmd CreateCommand, actor string) (*Classification, error) {
	if err := r.validator.Struct(cmd); err != nil {
		return nil, err
	}
	if cmd.FacilityID != nil {
		if err := r.requireFacility(ctx, *cmd.FacilityID); err != nil {
			return nil, err
		}
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Classification, error) {
		var parent *Classification
		if cmd.ParentID != nil {
			p, err := r.find(ctx, tx, *cmd.ParentID)
			if errors.Is(err, faults.ErrNotFound) {
				return nil, faults.Validation("parent classification %d does not exist", *cmd.ParentID).With(*cmd.ParentID)
			}
			if err != nil {
				return nil, err
			}
			parent = p
		}

		if err := CheckHierarchy(cmd.Level, cmd.FacilityID, parent); err != nil {
			return nil, err
		}

		if cmd.PublicationID != nil {
			ok, err := r.exists(ctx, tx, *cmd.PublicationID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, faults.Validation("publication classification %d does not exist", *cmd.PublicationID).With(*cmd.PublicationID)
			}
		}

		q := fmt.Sprintf(`
			INSERT INTO classifications AS c (facility_id, level, name, parent_classification_id, publication_classification_id, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING %s`, projection.Columns())

		name := normalizeName(cmd.Name, nil)
		c, err := repository.QueryOne(
			ctx, tx, q,
			[]any{cmd.FacilityID, cmd.Level, name, cmd.ParentID, cmd.PublicationID, actor, r.now()},
			scanClassification,
		)
		if err != nil {
			return nil, repository.MapError(err, err, Duplicate(cmd.Level, name))
		}
		return &c, nil
	})
}

func (r *repo) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, r.db, id)
}

func (r *repo) MissingFromFacility(ctx context.Context, facilityID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := repository.QueryMany(
		ctx, r.db,
		"SELECT classification_id FROM classifications WHERE facility_id = $1 AND classification_id = ANY($2)",
		[]any{facilityID, ids},
		func(s repository.Scanner) (int64, error) {
			var id int64
			err := s.Scan(&id)
			return id, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("check classifications of facility %d: %w", facilityID, err)
	}

	return missing(ids, found), nil
}

func (r *repo) Import(ctx context.Context, facilityID int64, tree Tree, actor string) (*ImportResult, error) {
	result, err := r.importTree(ctx, facilityID, tree, actor)
	r.recorder.Observe("classifications", "import", err)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"classification tree imported",
		"facility_id", facilityID,
		"created", result.Created,
		"existing", result.Existing,
		"skipped", result.Skipped,
		"actor", actor,
	)
	return result, nil
}

func (r *repo) importTree(ctx context.Context, facilityID int64, tree Tree, actor string) (*ImportResult, error) {
	if err := r.requireFacility(ctx, facilityID); err != nil {
		return nil, err
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*ImportResult, error) {
		if err := repository.AdvisoryLock(ctx, tx, importLockNamespace, facilityID); err != nil {
			return nil, repository.MapError(err, err, err)
		}

		ids, err := r.nodeIDs(ctx, tx, facilityID)
		if err != nil {
			return nil, err
		}

		result := &ImportResult{FacilityID: facilityID, Skipped: tree.Skipped}
		now := r.now()

		for _, n := range tree.Nodes {
			key := nodeKey{n.Level, n.Name}
			if _, ok := ids[key]; ok {
				result.Existing++
				continue
			}

			var parentID *int64
			if n.Level > LevelMajor {
				id, ok := ids[nodeKey{n.Level - 1, n.Parent}]
				if !ok {
					r.logger.Warn("parent classification missing, node skipped", "level", n.Level, "name", n.Name, "parent", n.Parent)
					result.Skipped++
					continue
				}
				parentID = &id
			}

			var id int64
			err := tx.QueryRowContext(ctx, `
				INSERT INTO classifications(facility_id, level, name, parent_classification_id, created_by, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING classification_id`,
				facilityID, n.Level, n.Name, parentID, actor, now,
			).Scan(&id)
			if err != nil {
				return nil, repository.MapError(err, err, Duplicate(n.Level, n.Name))
			}

			ids[key] = id
			result.Created++
		}

		return result, nil
	})
}

func (r *repo) nodeIDs(ctx context.Context, q repository.Querier, facilityID int64) (map[nodeKey]int64, error) {
	rows, err := q.QueryContext(
		ctx,
		"SELECT classification_id, level, name FROM classifications WHERE facility_id = $1",
		facilityID,
	)
	if err != nil {
		return nil, fmt.Errorf("load classifications of facility %d: %w", facilityID, err)
	}
	defer rows.Close()

	ids := make(map[nodeKey]int64)
	for rows.Next() {
		var (
			id    int64
			level Level
			name  string
		)
		if err := rows.Scan(&id, &level, &name); err != nil {
			return nil, err
		}
		ids[nodeKey{level, name}] = id
	}
	return ids, rows.Err()
}

func (r *repo) find(ctx context.Context, q repository.Querier, id int64) (*Classification, error) {
	sqlStr, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, q, sqlStr, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, NotFound(id), err)
	}
	return &c, nil
}

func (r *repo) exists(ctx context.Context, q repository.Querier, id int64) (bool, error) {
	var ok bool
	err := q.QueryRowContext(
		ctx,
		"SELECT EXISTS (SELECT 1 FROM classifications WHERE classification_id = $1)",
		id,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check classification %d: %w", id, err)
	}
	return ok, nil
}

func (r *repo) requireFacility(ctx context.Context, facilityID int64) error {
	ok, err := r.tenants.Exists(ctx, facilityID)
	if err != nil {
		return err
	}
	if !ok {
		return tenants.FacilityNotFound(facilityID)
	}
	return nil
}
