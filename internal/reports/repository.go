package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/optigate/internal/analysis"
	"github.com/JaimeStill/optigate/internal/config"
	"github.com/JaimeStill/optigate/internal/selections"
	"github.com/JaimeStill/optigate/internal/tenants"
	"github.com/JaimeStill/optigate/pkg/formatting"
	"github.com/JaimeStill/optigate/pkg/metrics"
	"github.com/JaimeStill/optigate/pkg/pagination"
	"github.com/JaimeStill/optigate/pkg/storage"
)

type publisher struct {
	analysis   analysis.System
	selections selections.System
	tenants    tenants.System
	store      storage.System
	log        Log
	cfg        config.ReportsConfig
	window     int
	recorder   metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a report publisher implementing the System interface.
// Settings are read in windows of pageSize rows.
func New(
	analysis analysis.System,
	selections selections.System,
	tenants tenants.System,
	store storage.System,
	log Log,
	cfg config.ReportsConfig,
	pageSize int,
	recorder metrics.Recorder,
	logger *slog.Logger,
	now func() time.Time,
) System {
	return &publisher{
		analysis:   analysis,
		selections: selections,
		tenants:    tenants,
		store:      store,
		log:        log,
		cfg:        cfg,
		window:     pageSize,
		recorder:   recorder,
		logger:     logger.With("system", "reports"),
		now:        now,
	}
}

func (p *publisher) Handler() *Handler {
	return NewHandler(p, p.logger)
}

func (p *publisher) Publish(ctx context.Context, facilityID int64, actor string) (*Publication, error) {
	pub, err := p.publish(ctx, facilityID, actor)
	p.recorder.Observe("reports", "publish", err)
	if err != nil {
		return nil, err
	}

	p.logger.Info(
		"report published",
		"facility_id", facilityID,
		"key", pub.Key,
		"rows", len(pub.Rows),
		"size", formatting.FormatBytes(pub.Size, 1),
		"actor", actor,
	)
	return pub, nil
}

func (p *publisher) publish(ctx context.Context, facilityID int64, actor string) (*Publication, error) {
	current, err := p.selections.Get(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if len(current.Selections) == 0 {
		return nil, NoSelection(facilityID)
	}

	rows := make([]Row, len(current.Selections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i, sel := range current.Selections {
		g.Go(func() error {
			settings, err := p.settingsOf(gctx, facilityID, sel.ClassificationID)
			if err != nil {
				return fmt.Errorf("classification %d: %w", sel.ClassificationID, err)
			}
			rows[i] = Aggregate(sel, settings)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := p.now().UTC()
	id := uuid.New()
	f, err := BuildWorkbook(p.cfg.SheetName, Meta{
		FacilityID:  facilityID,
		GeneratedBy: actor,
		GeneratedAt: now.Format(analysis.TimestampLayout),
	}, rows)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	key := p.key(facilityID, id)
	size := int64(buf.Len())
	if err := p.store.Upload(ctx, key, &buf, ContentType); err != nil {
		return nil, err
	}

	pub := &Publication{
		ID:         id,
		FacilityID: facilityID,
		Key:        key,
		Size:       size,
		Rows:       rows,
		CreatedBy:  actor,
		CreatedAt:  now,
	}

	if err := p.log.Record(ctx, pub); err != nil {
		if derr := p.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			p.logger.Warn("unrecorded report left in storage", "key", key, "error", derr)
		}
		return nil, err
	}

	return pub, nil
}

// settingsOf reads every setting of the facility matching classificationID,
// one window at a time.
func (p *publisher) settingsOf(ctx context.Context, facilityID, classificationID int64) ([]analysis.Setting, error) {
	var (
		all    []analysis.Setting
		filter = analysis.Filters{ClassificationID: &classificationID}
		w      = pagination.Window{Skip: 0, Limit: p.window}
	)

	for {
		page, err := p.analysis.List(ctx, facilityID, filter, w)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.HasNext {
			return all, nil
		}
		w.Skip += w.Limit
	}
}

func (p *publisher) List(ctx context.Context, facilityID int64) ([]Report, error) {
	ok, err := p.tenants.Exists(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, tenants.FacilityNotFound(facilityID)
	}

	objects, err := p.store.List(ctx, p.prefix(facilityID))
	if err != nil {
		return nil, err
	}

	entries, err := p.log.Entries(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(objects))
	for _, o := range objects {
		id, err := uuid.Parse(strings.TrimSuffix(path.Base(o.Key), ".xlsx"))
		if err != nil {
			p.logger.Warn("unrecognized report blob skipped", "key", o.Key)
			continue
		}
		r := Report{
			ID:         id,
			FacilityID: facilityID,
			Key:        o.Key,
			Size:       o.Size,
			CreatedAt:  o.LastModified,
		}
		if e, ok := entries[id]; ok {
			r.CreatedAt = e.PublishedAt
			r.CreatedBy = &e.PublishedBy
			r.DownloadedBy = e.DownloadedBy
			r.DownloadedAt = e.DownloadedAt
			r.DownloadCount = e.DownloadCount
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (p *publisher) Download(ctx context.Context, facilityID int64, id uuid.UUID, actor string) (io.ReadCloser, error) {
	body, err := p.store.Download(ctx, p.key(facilityID, id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, NotFound(facilityID, id.String())
	}
	if err != nil {
		return nil, err
	}

	err = p.log.Downloaded(ctx, facilityID, id, actor, p.now().UTC())
	switch {
	case errors.Is(err, ErrUnlogged):
		p.logger.Warn("download of unlogged report", "facility_id", facilityID, "report_id", id)
	case err != nil:
		body.Close()
		return nil, err
	}

	return body, nil
}

func (p *publisher) prefix(facilityID int64) string {
	return p.cfg.Prefix + "/" + strconv.FormatInt(facilityID, 10) + "/"
}

func (p *publisher) key(facilityID int64, id uuid.UUID) string {
	return p.prefix(facilityID) + id.String() + ".xlsx"
}
