package lib

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var scheduler gocron.Scheduler

func NewScheduler(s gocron.Scheduler) {
	scheduler = s
}

func GetScheduler() (gocron.Scheduler, error) {
	if scheduler != nil {
		return scheduler, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	scheduler = sched
	return sched, nil
}

// CreateCronJob registers a named task that runs every interval, never overlapping itself.
func CreateCronJob(sched gocron.Scheduler, name string, interval time.Duration, task any, args ...any) (gocron.Job, error) {
	j, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task, args...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Error creating job %s: %s\n", name, err.Error())
		return nil, err
	}
	log.Printf("Job: %s %s\n", j.ID().String(), j.Name())
	return j, nil
}
