// services/sweeper.go
package services

import (
	"log"
	"os"

	"github.com/robfig/cron/v3"
)

// defaultSweepSchedule runs the expiration sweep every 10 minutes.
const defaultSweepSchedule = "*/10 * * * *"

// StartSweepScheduler runs SweepExpired on a cron schedule (SWEEP_CRON env
// var, every 10 minutes by default). The sweep is idempotent, so an extra run
// after a restart is harmless.
func StartSweepScheduler(waitlist *WaitlistService) *cron.Cron {
	schedule := os.Getenv("SWEEP_CRON")
	if schedule == "" {
		schedule = defaultSweepSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, err := waitlist.SweepExpired(); err != nil {
			log.Printf("Waitlist sweep failed: %v", err)
		}
	}); err != nil {
		log.Printf("Invalid sweep schedule %q: %v", schedule, err)
		return c
	}

	c.Start()
	log.Println("Waitlist sweep scheduler started")
	return c
}
