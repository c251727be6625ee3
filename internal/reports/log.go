package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/optigate/pkg/repository"
)

// ErrUnlogged reports a stored workbook with no publication log entry.
var ErrUnlogged = errors.New("report has no publication log entry")

// Entry is the publication log record of one workbook.
type Entry struct {
	ID            uuid.UUID
	PublishedBy   string
	PublishedAt   time.Time
	DownloadedBy  *string
	DownloadedAt  *time.Time
	DownloadCount int
}

// Log records who published each workbook and who downloaded it last.
type Log interface {
	Record(ctx context.Context, pub *Publication) error
	// Downloaded stamps the last download of a workbook. Returns ErrUnlogged
	// when the workbook was never recorded.
	Downloaded(ctx context.Context, facilityID int64, id uuid.UUID, actor string, at time.Time) error
	Entries(ctx context.Context, facilityID int64) (map[uuid.UUID]Entry, error)
}

type publicationLog struct {
	db *sql.DB
}

// NewLog creates a Log stored in the report_publications table.
func NewLog(db *sql.DB) Log {
	return &publicationLog{db: db}
}

func (l *publicationLog) Record(ctx context.Context, pub *Publication) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO report_publications(report_id, facility_id, blob_key, size_bytes, row_count, published_by, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pub.ID, pub.FacilityID, pub.Key, pub.Size, len(pub.Rows), pub.CreatedBy, pub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record publication %s: %w", pub.ID, err)
	}
	return nil
}

func (l *publicationLog) Downloaded(ctx context.Context, facilityID int64, id uuid.UUID, actor string, at time.Time) error {
	err := repository.ExecExpectOne(ctx, l.db, `
		UPDATE report_publications
		SET download_user_id = $3, download_datetime = $4, download_count = download_count + 1
		WHERE facility_id = $1 AND report_id = $2`,
		facilityID, id, actor, at,
	)
	return repository.MapError(err, ErrUnlogged, err)
}

func (l *publicationLog) Entries(ctx context.Context, facilityID int64) (map[uuid.UUID]Entry, error) {
	entries, err := repository.QueryMany(ctx, l.db, `
		SELECT report_id, published_by, published_at, download_user_id, download_datetime, download_count
		FROM report_publications
		WHERE facility_id = $1`,
		[]any{facilityID},
		scanEntry,
	)
	if err != nil {
		return nil, fmt.Errorf("read publication log: %w", err)
	}

	byID := make(map[uuid.UUID]Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return byID, nil
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e          Entry
		downloader sql.NullString
		downloaded sql.NullTime
	)

	if err := s.Scan(&e.ID, &e.PublishedBy, &e.PublishedAt, &downloader, &downloaded, &e.DownloadCount); err != nil {
		return e, err
	}

	if downloader.Valid {
		e.DownloadedBy = &downloader.String
	}
	if downloaded.Valid {
		e.DownloadedAt = &downloaded.Time
	}
	return e, nil
}
