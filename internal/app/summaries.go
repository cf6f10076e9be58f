package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"restroom_radar/internal/domain"
)

// NaturalSummary renders the template description used when no precomputed
// summary exists.
func NaturalSummary(r domain.RestroomRecord) string {
	building := strings.TrimSpace(r.BuildingName)
	if building == "" {
		building = "Building"
	}

	var b strings.Builder
	b.WriteString(typeTitle(r.Type))
	b.WriteString(" restroom in ")
	b.WriteString(building)
	if f := strings.TrimSpace(deref(r.FloorOrArea)); f != "" {
		b.WriteString(" on ")
		b.WriteString(f)
	}

	var features []string
	if r.MultiUserStalls != nil && *r.MultiUserStalls > 0 {
		features = append(features, fmt.Sprintf("%d stalls", *r.MultiUserStalls))
	}
	if r.HasShower {
		features = append(features, "shower available")
	}
	if r.StaffOnlyAny {
		features = append(features, "staff access only")
	}
	if len(features) > 0 {
		b.WriteString(" with ")
		b.WriteString(strings.Join(features, ", "))
	}
	b.WriteString(".")

	if n := strings.TrimSpace(deref(r.Notes)); n != "" {
		b.WriteString(" ")
		b.WriteString(n)
	}
	return b.String()
}

// typeTitle turns "multi-user" into "Multi User".
func typeTitle(t domain.RestroomType) string {
	if t == domain.RestroomUnspecified {
		return "Restroom"
	}
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(string(t)))
	for i, w := range words {
		r, n := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + strings.ToLower(w[n:])
	}
	if len(words) == 0 {
		return "Restroom"
	}
	return strings.Join(words, " ")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

type BackfillReport struct {
	Scanned int
	Updated int
	Failed  int
}

// SummaryService fills empty natural_summary columns with the template text.
type SummaryService struct {
	repo    domain.RestroomRepository
	catalog *Catalog
	workers int
}

func NewSummaryService(r domain.RestroomRepository, c *Catalog, workers int) *SummaryService {
	if workers <= 0 {
		workers = 4
	}
	return &SummaryService{repo: r, catalog: c, workers: workers}
}

// Backfill walks every record missing a summary, batch rows per page, and
// writes the template text. Pages are keyed on id so rows that fail are not
// fetched again in the same run.
func (s *SummaryService) Backfill(ctx context.Context, batch int) (BackfillReport, error) {
	if batch <= 0 {
		batch = 1000
	}
	var rep BackfillReport
	var updated, failed atomic.Int64
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup

	var after int64
	for {
		recs, err := s.repo.ListMissingSummaries(ctx, after, batch)
		if err != nil {
			wg.Wait()
			s.invalidate(ctx, &updated)
			return s.report(rep, &updated, &failed), fmt.Errorf("list missing summaries after %d: %w", after, err)
		}
		rep.Scanned += len(recs)

		for _, rec := range recs {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				s.invalidate(ctx, &updated)
				return s.report(rep, &updated, &failed), err
			}
			wg.Add(1)
			go func(r domain.RestroomRecord) {
				defer wg.Done()
				defer sem.Release(1)

				if err := s.repo.UpdateSummary(ctx, r.ID, NaturalSummary(r)); err != nil {
					failed.Add(1)
					log.Warn().Int64("id", r.ID).Err(err).Msg("summary update failed")
					return
				}
				updated.Add(1)
			}(rec)
		}

		if len(recs) < batch {
			break
		}
		after = recs[len(recs)-1].ID
		log.Debug().Int64("after", after).Int("scanned", rep.Scanned).Msg("summary page done")
	}
	wg.Wait()
	s.invalidate(ctx, &updated)
	return s.report(rep, &updated, &failed), nil
}

func (s *SummaryService) invalidate(ctx context.Context, updated *atomic.Int64) {
	if updated.Load() == 0 || s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("snapshot cache invalidation failed")
	}
}

func (s *SummaryService) report(rep BackfillReport, updated, failed *atomic.Int64) BackfillReport {
	rep.Updated = int(updated.Load())
	rep.Failed = int(failed.Load())
	return rep
}
