package boot

import (
	"context"
	"log"
	"time"

	"taskhub/src/common"
	"taskhub/src/config"
	"taskhub/src/db"
	"taskhub/src/lib"
	"taskhub/src/lib/jobs"
	"taskhub/src/membership"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	conn := db.GetDb()
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	return conn
}

// InitMemoryDb serves from a throwaway sqlite database for local runs without postgres.
func InitMemoryDb() *gorm.DB {
	conn, err := db.NewMemoryDB()
	if err != nil {
		log.Fatalf("error opening in-memory database: %s", err.Error())
	}
	db.NewDB(conn)
	return conn
}

// InitScheduler starts the periodic ownership audit.
func InitScheduler(auditor membership.Auditor, queue membership.JobEnqueuer, interval time.Duration) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := common.ScheduleOwnershipAudit(sched, interval, auditor, queue); err != nil {
		log.Printf("Error scheduling ownership audit: %s\n", err.Error())
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
	}
}

// InitBroker attaches the notification consumer to the configured queue.
func InitBroker(ctx context.Context, cfg config.Config, conn *gorm.DB) {
	if cfg.QueueDriver == jobs.DRIVER_LOG {
		return
	}
	if cfg.QueueDriver == jobs.DRIVER_KAFKA {
		if _, err := lib.KafkaCreateTopics(ctx, cfg.KafkaBroker, cfg.NotificationQueue); err != nil {
			log.Printf("Error creating topic %s: %s\n", cfg.NotificationQueue, err.Error())
		}
	}
	notifier := common.NewNotifier(db.NewNotificationStore(conn), lib.SendMail)
	if err := common.StartConsumers(ctx, cfg, notifier.Handle); err != nil {
		log.Printf("Error starting consumers: %s\n", err.Error())
	}
}
