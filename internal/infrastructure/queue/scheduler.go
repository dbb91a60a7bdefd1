package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"eurd-payments/internal/config"
	"eurd-payments/internal/shared"
	"eurd-payments/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.WorkerConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, cfg config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		cfg:       cfg,
	}
}

func (s *Scheduler) RegisterReconciliationJobs() error {
	return s.registerReconcileAwaitingJob()
}

// ================================================
// JOB: Reconcile orders awaiting the gateway
// ================================================
// Catches payments whose webhook never arrived and whose customer closed the pay page.
func (s *Scheduler) registerReconcileAwaitingJob() error {
	payload, err := json.Marshal(shared.ReconcileAwaitingPayload{
		Limit: s.cfg.SweepLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeReconcileAwaiting, payload)

	_, err = s.scheduler.Register(
		s.cfg.SweepCron,
		task,
		asynq.Queue(shared.QueuePayment),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ReconcileAwaiting job", err)
		return err
	}

	logger.Info("✓ Registered ReconcileAwaiting", map[string]interface{}{
		"cron":  s.cfg.SweepCron,
		"limit": s.cfg.SweepLimit,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
