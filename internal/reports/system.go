package reports

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// System defines report publication.
type System interface {
	Handler() *Handler

	// Publish builds and stores a workbook for the facility's current selection.
	Publish(ctx context.Context, facilityID int64, actor string) (*Publication, error)
	// List returns the facility's stored workbooks, newest first.
	List(ctx context.Context, facilityID int64) ([]Report, error)
	// Download streams a stored workbook and stamps actor as its last
	// downloader. The caller must close the reader.
	Download(ctx context.Context, facilityID int64, id uuid.UUID, actor string) (io.ReadCloser, error)
}
