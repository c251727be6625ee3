package classifications

import (
	"database/sql"
	"net/url"
	"strconv"

	"github.com/JaimeStill/optigate/pkg/faults"
	"github.com/JaimeStill/optigate/pkg/query"
	"github.com/JaimeStill/optigate/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classifications", "c").
	Project("classification_id", "ID").
	Project("facility_id", "FacilityID").
	Project("level", "Level").
	Project("name", "Name").
	Project("parent_classification_id", "ParentID").
	Project("publication_classification_id", "PublicationID").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt")

var defaultSort = []query.SortField{
	query.Asc("Level"),
	query.Asc("ParentID"),
	query.Asc("Name"),
}

// Filters narrows a facility classification listing. Nil fields are ignored.
type Filters struct {
	Level    *Level `json:"level,omitempty"`
	ParentID *int64 `json:"parent_classification_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Level", f.Level).
		WhereEquals("ParentID", f.ParentID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if v := values.Get("level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !Level(n).Valid() {
			return f, faults.Validation("level must be 1, 2 or 3: %q", v).With(v)
		}
		l := Level(n)
		f.Level = &l
	}

	if v := values.Get("parent_classification_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, faults.Validation("parent_classification_id must be a positive integer: %q", v).With(v)
		}
		f.ParentID = &id
	}

	return f, nil
}

func scanClassification(s repository.Scanner) (Classification, error) {
	var (
		c             Classification
		facilityID    sql.NullInt64
		parentID      sql.NullInt64
		publicationID sql.NullInt64
		createdBy     sql.NullString
	)

	err := s.Scan(
		&c.ID,
		&facilityID,
		&c.Level,
		&c.Name,
		&parentID,
		&publicationID,
		&createdBy,
		&c.CreatedAt,
	)
	if err != nil {
		return c, err
	}

	c.FacilityID = nullableID(facilityID)
	c.ParentID = nullableID(parentID)
	c.PublicationID = nullableID(publicationID)
	c.CreatedBy = createdBy.String
	return c, nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

// missing returns the ids absent from found, once each, in input order.
func missing(ids, found []int64) []int64 {
	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}

	var out []int64
	for _, id := range ids {
		if !present[id] {
			out = append(out, id)
			present[id] = true
		}
	}
	return out
}
