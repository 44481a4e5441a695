package common

import (
	"context"
	"log"
	"time"

	"taskhub/src/lib"
	"taskhub/src/membership"
	"taskhub/src/types"

	"github.com/go-co-op/gocron/v2"
)

const ownershipAuditJob = "ownership-audit"

// RunOwnershipAudit reports every non-empty scope without exactly one owner. It never repairs.
func RunOwnershipAudit(ctx context.Context, auditor membership.Auditor, jobs membership.JobEnqueuer) (int, error) {
	anomalies, err := auditor.OwnershipAnomalies(ctx)
	if err != nil {
		log.Printf("[audit] Error scanning ownership: %s\n", err.Error())
		return 0, err
	}
	for _, a := range anomalies {
		log.Printf("[audit] %s has %d owners across %d members\n", a.Scope.String(), a.Owners, a.Members)
		if jobs == nil {
			continue
		}
		err := jobs.Enqueue(ctx, membership.Job{
			Name:  membership.JOB_OWNERSHIP_VIOLATION,
			Scope: a.Scope,
			Payload: types.JSONB{
				"owners":  a.Owners,
				"members": a.Members,
			},
		})
		if err != nil {
			log.Printf("[audit] Error enqueuing violation for %s: %s\n", a.Scope.String(), err.Error())
		}
	}
	return len(anomalies), nil
}

func ScheduleOwnershipAudit(sched gocron.Scheduler, interval time.Duration, auditor membership.Auditor, jobs membership.JobEnqueuer) (gocron.Job, error) {
	return lib.CreateCronJob(sched, ownershipAuditJob, interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		RunOwnershipAudit(ctx, auditor, jobs)
	})
}
