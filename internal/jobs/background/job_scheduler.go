package background

import (
	"context"
	"log"
	"sync"
	"time"

	"traindesk/internal/caching"
	"traindesk/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const statsCacheTTL = 20 * time.Minute

// JobScheduler manages the recurring background jobs: tenant dashboard stats
// refresh and stale catalog sweeps. Everything here is advisory; a failed run
// leaves the cache slightly staler until the next tick.
type JobScheduler struct {
	scheduler      gocron.Scheduler
	cacheSvc       caching.CacheService
	tenantRepo     repositories.TenantRepository
	courseRepo     repositories.CourseRepository
	assignmentRepo repositories.AssignmentRepository
	jobs           map[string]gocron.Job
	mu             sync.RWMutex
}

func NewJobScheduler(cacheSvc caching.CacheService, tenantRepo repositories.TenantRepository,
	courseRepo repositories.CourseRepository, assignmentRepo repositories.AssignmentRepository) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		cacheSvc:       cacheSvc,
		tenantRepo:     tenantRepo,
		courseRepo:     courseRepo,
		assignmentRepo: assignmentRepo,
		jobs:           make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Tenant stats refresh - every 15 minutes, singleton so a slow run is
	// never stacked on top of itself.
	statsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.refreshTenantStats, context.Background()),
		gocron.WithName("tenant-stats-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create tenant stats job: %v", err)
	} else {
		js.jobs["tenant-stats"] = statsJob
	}

	// Catalog sweep - hourly. Redis expires catalog entries on its own; the
	// sweep exists to drop catalogs of tenants deactivated since caching.
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepStaleCatalogs, context.Background()),
		gocron.WithName("catalog-sweep"),
	)
	if err != nil {
		log.Printf("Failed to create catalog sweep job: %v", err)
	} else {
		js.jobs["catalog-sweep"] = sweepJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// refreshTenantStats recomputes course and assignment counts per active
// tenant and caches them for the admin dashboard.
func (js *JobScheduler) refreshTenantStats(ctx context.Context) error {
	log.Printf("Starting tenant stats refresh")

	tenants, err := js.tenantRepo.ListActive(ctx)
	if err != nil {
		log.Printf("Failed to list tenants for stats refresh: %v", err)
		return err
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup

	for _, tenant := range tenants {
		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			courseCount, err := js.courseRepo.CountByTenant(ctx, tenantID)
			if err != nil {
				log.Printf("Failed to count courses for tenant %s: %v", tenantID, err)
				return
			}
			assignmentCount, err := js.assignmentRepo.CountByTenant(ctx, tenantID)
			if err != nil {
				log.Printf("Failed to count assignments for tenant %s: %v", tenantID, err)
				return
			}

			stats := map[string]interface{}{
				"courses":      courseCount,
				"assignments":  assignmentCount,
				"refreshed_at": time.Now().UTC().Format(time.RFC3339),
			}
			if err := js.cacheSvc.SetTenantStats(ctx, tenantID, stats, statsCacheTTL); err != nil {
				log.Printf("Failed to cache stats for tenant %s: %v", tenantID, err)
			}
		}(tenant.ID)
	}

	wg.Wait()
	log.Printf("Completed tenant stats refresh for %d tenants", len(tenants))
	return nil
}

// sweepStaleCatalogs drops cached catalogs for tenants that are no longer
// active so a reactivated tenant starts from fresh reads.
func (js *JobScheduler) sweepStaleCatalogs(ctx context.Context) error {
	log.Printf("Starting stale catalog sweep")

	inactive, err := js.tenantRepo.ListInactive(ctx)
	if err != nil {
		log.Printf("Failed to list tenants for catalog sweep: %v", err)
		return err
	}

	swept := 0
	for _, t := range inactive {
		if err := js.cacheSvc.InvalidateTenantCatalog(ctx, t.ID); err != nil {
			log.Printf("Failed to sweep catalog for tenant %s: %v", t.ID, err)
			continue
		}
		swept++
	}

	log.Printf("Completed catalog sweep, invalidated %d tenants", swept)
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
