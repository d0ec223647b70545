package service

import (
	"context"
	"time"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/repository"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// SchedulerService runs the retention cleanup on a cron schedule: analysis
// records older than the retention window are removed together with their
// on-disk artifacts.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	RunCleanup(ctx context.Context) error
}

type schedulerService struct {
	cfg           *config.Config
	log           *logger.Logger
	recordRepo    repository.AnalysisRecordRepository
	artifactStore repository.ArtifactStore
	cron          *cron.Cron
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) SchedulerService {
	return &schedulerService{
		cfg:           cfg,
		log:           log,
		recordRepo:    repo.AnalysisRecordRepo,
		artifactStore: repo.ArtifactStore,
		cron:          cron.New(),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Retention.CronSpec, func() {
		if err := s.RunCleanup(ctx); err != nil {
			s.log.ErrorContextWithAlert(ctx, "Retention cleanup failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Retention cleanup scheduled", logger.StringField("cron", s.cfg.Retention.CronSpec))
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *schedulerService) RunCleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.Retention.Days)

	records, err := s.recordRepo.FindOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, record := range records {
		record := record
		g.Go(func() error {
			if err := s.artifactStore.Delete(gctx, record.ArtifactPath); err != nil {
				s.log.WarnContext(gctx, "Failed to delete expired artifact",
					logger.ErrorField(err),
					logger.IntField("record_id", int(record.ID)),
				)
			}
			if err := s.artifactStore.Delete(gctx, record.ImagePath); err != nil {
				s.log.WarnContext(gctx, "Failed to delete expired chart image",
					logger.ErrorField(err),
					logger.IntField("record_id", int(record.ID)),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	deleted, err := s.recordRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	s.log.Info("Retention cleanup finished",
		logger.IntField("deleted_records", int(deleted)),
		logger.IntField("retention_days", s.cfg.Retention.Days),
	)
	return nil
}
