package scheduler

import (
	"time"

	"github.com/mkweon/barunpos-backend/config"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ReconcileScheduler sweeps for orphaned sales. A crash between writing the
// sale row and its line items leaves a header with no items; the sweep flags
// those for manual review instead of letting them skew reports silently.
type ReconcileScheduler struct {
	cron     *cron.Cron
	saleRepo repository.SaleRepository
	cfg      *config.ReconcileConfig
}

func NewReconcileScheduler(saleRepo repository.SaleRepository, cfg *config.ReconcileConfig) *ReconcileScheduler {
	return &ReconcileScheduler{
		cron:     cron.New(),
		saleRepo: saleRepo,
		cfg:      cfg,
	}
}

// Start registers the sweep with the cron runner.
func (s *ReconcileScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSpec, func() {
		s.Sweep()
	})

	if err != nil {
		logger.Error("Failed to add cron job for sale reconciliation", err)
		return err
	}

	s.cron.Start()
	logger.Info("Sale reconciliation scheduler started", map[string]interface{}{
		"cron_spec":  s.cfg.CronSpec,
		"orphan_age": s.cfg.OrphanAge.String(),
	})

	return nil
}

// Sweep flags sales older than the configured age that have no line items.
// Exposed so operators can trigger a run out of band.
func (s *ReconcileScheduler) Sweep() {
	cutoff := time.Now().Add(-s.cfg.OrphanAge)

	orphans, err := s.saleRepo.FindOrphaned(cutoff)
	if err != nil {
		logger.Error("Failed to scan for orphaned sales", err)
		return
	}

	if len(orphans) == 0 {
		logger.Debug("No orphaned sales found", nil)
		return
	}

	ids := make([]uint, 0, len(orphans))
	for _, sale := range orphans {
		ids = append(ids, sale.ID)
		logger.Warn("Orphaned sale flagged for review", map[string]interface{}{
			"sale_id":        sale.ID,
			"receipt_number": sale.ReceiptNumber,
			"business_id":    sale.BusinessID,
			"created_at":     sale.CreatedAt,
		})
	}

	if err := s.saleRepo.MarkNeedsReview(ids); err != nil {
		logger.Error("Failed to mark orphaned sales for review", err, map[string]interface{}{
			"sale_ids": ids,
		})
		return
	}

	logger.Info("Orphaned sales marked for review", map[string]interface{}{
		"count": len(ids),
	})
}

// Stop halts the scheduler.
func (s *ReconcileScheduler) Stop() {
	logger.Info("Stopping sale reconciliation scheduler...", nil)
	s.cron.Stop()
	logger.Info("Sale reconciliation scheduler stopped", nil)
}
