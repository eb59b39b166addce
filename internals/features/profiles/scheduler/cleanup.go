package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger deletes anonymous profiles untouched since before.
type Purger interface {
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
}

// RunCleanup menjalankan satu putaran pembersihan sesi anonim.
func RunCleanup(ctx context.Context, p Purger, ttl time.Duration, now time.Time) (int64, error) {
	deleteBefore := now.Add(-ttl)
	log.Printf("[CLEANUP] Menghapus sesi anonim yang tidak aktif sejak %s", deleteBefore.Format(time.RFC3339))

	n, err := p.PurgeStale(ctx, deleteBefore)
	if err != nil {
		log.Printf("[CLEANUP ERROR] Gagal hapus sesi: %v", err)
		return 0, err
	}
	if n > 0 {
		log.Printf("[CLEANUP] %d sesi anonim dihapus", n)
	} else {
		log.Println("[CLEANUP] Tidak ada sesi yang memenuhi syarat dihapus")
	}
	return n, nil
}

// StartSessionCleanupScheduler registers the purge on spec (standard
// 5-field cron) and starts the scheduler. Stop the returned cron on shutdown.
func StartSessionCleanupScheduler(p Purger, spec string, ttl time.Duration) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, _ = RunCleanup(ctx, p, ttl, time.Now().UTC())
	}); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[CLEANUP] started schedule=%q ttl=%s", spec, ttl)
	return c, nil
}
