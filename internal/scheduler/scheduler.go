package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/pkg/constants"
)

// Dispatcher 批量操作入口
type Dispatcher interface {
	Dispatch(ctx context.Context, op string, arg any) error
}

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	dispatcher    Dispatcher
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器
func NewScheduler(dispatcher Dispatcher, logger *zap.Logger) *Scheduler {
	// cron 表达式格式: 秒 分 时 日 月 周
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:          c,
		logger:        logger,
		dispatcher:    dispatcher,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器; 未配置 key_resync_cron 时不注册任务
func (s *Scheduler) Start(cfg config.SchedulerConfig) error {
	log := s.logger.Sugar()

	if cfg.KeyResyncCron == "" {
		log.Info("未配置scheduler.key_resync_cron，跳过定时公钥同步")
		return nil
	}

	entryID, err := s.cron.AddFunc(cfg.KeyResyncCron, func() {
		log.Info("执行定时任务: 强制同步全部 SSH 公钥")
		if err := s.TriggerKeyResync(context.Background()); err != nil {
			log.Errorf("强制同步 SSH 公钥失败: %v", err)
		}
	})
	if err != nil {
		log.Errorf("注册公钥同步任务: %v 失败: %v", cfg.KeyResyncCron, err)
		return err
	}

	s.cronSchedules[constants.OpUpdateAllSSHKeysForced] = entryID
	log.Infof("公钥同步任务已注册: %s entry_id=%d", cfg.KeyResyncCron, entryID)

	s.cron.Start()
	log.Info("定时任务调度器启动成功")
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 等待正在执行的任务完成
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Minute):
		s.logger.Warn("等待定时任务结束超时")
	}

	s.logger.Info("定时任务调度器已停止")
}

// Entries 已注册的任务
func (s *Scheduler) Entries() map[string]cron.EntryID {
	return s.cronSchedules
}

// TriggerKeyResync 手动触发一次强制公钥同步
func (s *Scheduler) TriggerKeyResync(ctx context.Context) error {
	return s.dispatcher.Dispatch(ctx, constants.OpUpdateAllSSHKeysForced, nil)
}
