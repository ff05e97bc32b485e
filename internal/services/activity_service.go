// Package services – ActivityService
//
// This file implements the read side of the unified activity log: the
// union of resolved queries and resolution errors, merged at read time
// and served most recent first. The merge order is total (timestamp,
// then kind, then insertion sequence), so pages over a fixed snapshot
// partition the set without gaps or duplicates.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/akaris/go-dns-admin-backend/internal/domain"
	"github.com/akaris/go-dns-admin-backend/internal/repo"
)

// ActivityService serves paginated slices of the unified activity view.
type ActivityService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// ListPage returns one page of activity records plus the total count at
// the time of the query. top and skip are validated against the shared
// pagination bounds.
func (s *ActivityService) ListPage(ctx context.Context, top, skip int) ([]domain.ActivityRecord, int64, error) {
	if err := ValidatePage(top, skip); err != nil {
		return nil, 0, err
	}

	tr := otel.Tracer("services.activity")
	ctx, span := tr.Start(ctx, "activity.list")
	span.SetAttributes(attribute.Int("page.top", top), attribute.Int("page.skip", skip))
	defer span.End()

	total, err := repo.CountActivity(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ActivityRecord{}, 0, nil
	}

	rows, err := repo.ListActivity(ctx, s.DB, skip, top)
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.ActivityRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, recordFromRow(r))
	}
	return out, total, nil
}

// recordFromRow renders one view row as its tagged wire shape. Payload
// columns that are NULL for the row's kind stay absent from the output.
func recordFromRow(r domain.ActivityRow) domain.ActivityRecord {
	rec := domain.ActivityRecord{
		Timestamp: r.TS,
		Transport: r.Transport,
		Client:    r.Client,
		Duration:  r.DurMS,
		QName:     r.QName,
		QType:     r.QType,
		Kind:      r.Kind,
	}

	switch r.Kind {
	case domain.ActivityKindQuery:
		q := domain.ActivityQuery{SourceID: r.SourceID}
		if r.RCode != nil {
			q.RCode = *r.RCode
		}
		if r.Blocked != nil {
			q.Blocked = *r.Blocked
		}
		if r.CacheHit != nil {
			q.CacheHit = *r.CacheHit
		}
		rec.D = &q
	case domain.ActivityKindError:
		e := domain.ActivityError{SourceID: r.SourceID}
		if r.ErrorType != nil {
			e.ErrorType = *r.ErrorType
		}
		if r.ErrorMessage != nil {
			e.Message = *r.ErrorMessage
		}
		rec.D = &e
	}
	return rec
}
