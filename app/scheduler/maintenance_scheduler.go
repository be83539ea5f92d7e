// Package scheduler runs periodic background maintenance jobs
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var maintenanceRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "maintenance_runs_total",
		Help: "Total maintenance scheduler runs partitioned by job and outcome",
	},
	[]string{"job", "outcome"},
)

// MaintenanceScheduler periodically deactivates stale sessions and
// purges old audit entries so the tables don't grow without bound.
type MaintenanceScheduler struct {
	sessionRepo    repository.ArtistSessionRepository
	auditRepo      repository.AuditLogRepository
	logger         *log.Logger
	interval       time.Duration
	auditRetention time.Duration
}

func NewMaintenanceScheduler(
	sessionRepo repository.ArtistSessionRepository,
	auditRepo repository.AuditLogRepository,
	logger *log.Logger,
	interval time.Duration,
	auditRetention time.Duration,
) *MaintenanceScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if auditRetention <= 0 {
		auditRetention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}

	return &MaintenanceScheduler{
		sessionRepo:    sessionRepo,
		auditRepo:      auditRepo,
		logger:         logger,
		interval:       interval,
		auditRetention: auditRetention,
	}
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *MaintenanceScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *MaintenanceScheduler) runOnce(ctx context.Context) {
	s.expireSessions(ctx)
	s.purgeAuditLogs(ctx)
}

func (s *MaintenanceScheduler) expireSessions(ctx context.Context) {
	n, err := s.sessionRepo.DeactivateStaleSessions(ctx, utils.UTCNow())
	if err != nil {
		maintenanceRunsTotal.WithLabelValues("expire_sessions", "error").Inc()
		s.logger.Printf("scheduler: deactivate stale sessions failed: %v", err)
		return
	}
	maintenanceRunsTotal.WithLabelValues("expire_sessions", "ok").Inc()
	if n > 0 {
		s.logger.Printf("scheduler: deactivated %d stale sessions", n)
	}
}

func (s *MaintenanceScheduler) purgeAuditLogs(ctx context.Context) {
	cutoff := utils.UTCNow().Add(-s.auditRetention)
	n, err := s.auditRepo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		maintenanceRunsTotal.WithLabelValues("purge_audit_logs", "error").Inc()
		s.logger.Printf("scheduler: purge audit logs failed: %v", err)
		return
	}
	maintenanceRunsTotal.WithLabelValues("purge_audit_logs", "ok").Inc()
	if n > 0 {
		s.logger.Printf("scheduler: purged %d audit entries older than %s", n, cutoff.Format(time.RFC3339))
	}
}
