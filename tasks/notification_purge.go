package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
)

// NotificationPurgeTask 定时删除超过保留期的通知。
type NotificationPurgeTask struct {
	repo      gormrepo.NotificationRepository
	retention time.Duration
	cron      *cron.Cron
	logger    *core.ZapLogger
}

// NewNotificationPurgeTask 初始化并启动清理任务。schedule 为空时使用默认表达式。
func NewNotificationPurgeTask(
	repo gormrepo.NotificationRepository,
	retentionDays int,
	schedule string,
	logger *core.ZapLogger,
) (*NotificationPurgeTask, error) {
	if retentionDays <= 0 {
		return nil, fmt.Errorf("通知保留天数必须为正数: %d", retentionDays)
	}
	if schedule == "" {
		schedule = constant.DefaultNotificationPurgeCron
	}

	task := &NotificationPurgeTask{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		logger:    logger,
	}
	entryID, err := task.cron.AddFunc(schedule, task.run)
	if err != nil {
		return nil, fmt.Errorf("添加通知清理 cron 作业失败 (schedule=%q): %w", schedule, err)
	}

	task.cron.Start()
	logger.Info("通知清理定时任务已启动",
		zap.String("schedule", schedule),
		zap.Duration("retention", task.retention),
		zap.Uint("cronEntryID", uint(entryID)))
	return task, nil
}

func (t *NotificationPurgeTask) run() {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	before := startTime.UTC().Add(-t.retention)
	deleted, err := t.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		t.logger.Error("清理过期通知失败", zap.Error(err), zap.Time("before", before))
		return
	}
	t.logger.Info("过期通知清理完毕",
		zap.Int64("deleted", deleted),
		zap.Time("before", before),
		zap.Duration("duration", time.Since(startTime)))
}

// Stop 停止调度。返回的 context 在正在执行的任务结束后关闭。
func (t *NotificationPurgeTask) Stop() context.Context {
	t.logger.Info("正在停止通知清理定时任务...")
	return t.cron.Stop()
}
