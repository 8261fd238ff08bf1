package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"jamb/metrics"
	"jamb/models"
	"jamb/services/materials"
	"jamb/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 4
	// SourceBigBox tags imported materials; manual ones are never pruned.
	SourceBigBox = "bigbox"
)

// History stores the summary of each run.
type History interface {
	RecordImport(report models.ImportReport) error
}

// Importer loads finishing materials described by an import plan.
type Importer struct {
	Client      Fetcher
	Materials   materials.MaterialsService
	History     History
	Concurrency int
	Now         func() time.Time
}

type tally struct {
	mu     sync.Mutex
	report models.ImportReport
	// failedCodes are work codes with at least one failed entry; their stale options are kept.
	failedCodes map[string]bool
}

func (t *tally) add(fn func(r *models.ImportReport)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.report)
}

func (t *tally) fail(workCode string, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.Failed += n
	t.failedCodes[workCode] = true
}

// Run processes every entry of the plan. Entry failures are counted, not returned; an
// error means the run itself could not proceed.
func (im *Importer) Run(ctx context.Context, plan *models.ImportPlan) (models.ImportReport, error) {
	logger := utils.GetLogger()
	if err := ValidatePlan(plan); err != nil {
		return models.ImportReport{}, err
	}

	now := time.Now
	if im.Now != nil {
		now = im.Now
	}
	started := now().UTC()
	t := &tally{report: models.ImportReport{StartedAt: started}, failedCodes: map[string]bool{}}

	limit := im.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, entry := range plan.Entries {
		g.Go(func() error {
			im.runEntry(gctx, entry, started, t)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return t.report, err
	}

	for _, code := range workCodes(plan) {
		if t.failedCodes[code] {
			logger.Warn("Keeping stale materials of a partially failed work code", zap.String("workCode", code))
			continue
		}
		removed, err := im.Materials.DeleteStale(ctx, code, started)
		if err != nil {
			logger.Error("Failed to prune stale materials", zap.String("workCode", code), zap.Error(err))
			continue
		}
		if removed > 0 {
			logger.Info("Pruned stale materials", zap.String("workCode", code), zap.Int("removed", removed))
		}
	}

	t.report.FinishedAt = now().UTC()
	metrics.RecordImportItems("upserted", t.report.Upserted)
	metrics.RecordImportItems("skipped", t.report.Skipped)
	metrics.RecordImportItems("failed", t.report.Failed)

	if im.History != nil {
		if err := im.History.RecordImport(t.report); err != nil {
			logger.Error("Failed to record import run", zap.Error(err))
		}
	}
	logger.Info("Materials import finished",
		zap.Int("fetched", t.report.Fetched),
		zap.Int("upserted", t.report.Upserted),
		zap.Int("skipped", t.report.Skipped),
		zap.Int("failed", t.report.Failed),
		zap.Duration("took", t.report.FinishedAt.Sub(started)))
	return t.report, nil
}

func (im *Importer) runEntry(ctx context.Context, entry models.ImportEntry, started time.Time, t *tally) {
	logger := utils.GetLogger().With(zap.String("workCode", entry.WorkCode), zap.String("section", entry.Section))

	products, err := im.Client.Fetch(ctx, entry)
	if err != nil {
		logger.Error("Failed to fetch materials", zap.Error(err))
		expected := len(entry.ItemIDs)
		if expected == 0 {
			expected = 1
		}
		t.fail(entry.WorkCode, expected)
		return
	}

	batch, skipped := convert(entry, products, started)
	t.add(func(r *models.ImportReport) {
		r.Fetched += len(products)
		r.Skipped += skipped
	})
	if len(batch) == 0 {
		return
	}

	n, err := im.Materials.UpsertMaterials(ctx, batch)
	if err != nil {
		logger.Error("Failed to store materials", zap.Error(err))
		t.fail(entry.WorkCode, len(batch))
		return
	}
	t.add(func(r *models.ImportReport) { r.Upserted += n })
}

// convert turns products into materials, skipping unpriced, untitled and repeated items.
func convert(entry models.ImportEntry, products []Product, at time.Time) ([]models.FinishingMaterial, int) {
	factor := entry.CostFactor
	if factor <= 0 {
		factor = 1
	}
	seen := map[string]bool{}
	var batch []models.FinishingMaterial
	skipped := 0
	for _, p := range products {
		id := strings.TrimSpace(p.ItemID)
		title := strings.TrimSpace(p.Title)
		if id == "" || title == "" || p.Price <= 0 || seen[id] {
			skipped++
			continue
		}
		seen[id] = true
		batch = append(batch, models.FinishingMaterial{
			ExternalID:        id,
			WorkCode:          entry.WorkCode,
			Section:           entry.Section,
			Name:              title,
			ImageURL:          p.ImageURL,
			Cost:              utils.RoundCents(p.Price * factor),
			UnitOfMeasurement: p.Unit,
			Source:            SourceBigBox,
			UpdatedAt:         at,
		})
	}
	return batch, skipped
}

func workCodes(plan *models.ImportPlan) []string {
	seen := map[string]bool{}
	var codes []string
	for _, e := range plan.Entries {
		if !seen[e.WorkCode] {
			seen[e.WorkCode] = true
			codes = append(codes, e.WorkCode)
		}
	}
	return codes
}

// Summary renders a report for command-line output.
func Summary(r models.ImportReport) string {
	return fmt.Sprintf("fetched=%d upserted=%d skipped=%d failed=%d took=%s",
		r.Fetched, r.Upserted, r.Skipped, r.Failed, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
