// Package cleanup は期限切れセッションの定期削除ワーカーを提供する。
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredSessionDeleter は期限切れセッション削除のインターフェース。
type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) (int, error)
}

// MetricsRecorder はクリーンアップメトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordSessionsCleaned(count int)
}

// Worker は期限切れセッションを定期的に削除するワーカー。
type Worker struct {
	deleter  ExpiredSessionDeleter
	metrics  MetricsRecorder // nilの場合は記録しない
	logger   *slog.Logger
	interval time.Duration
}

// NewWorker はWorkerの新しいインスタンスを生成する。
func NewWorker(deleter ExpiredSessionDeleter, metrics MetricsRecorder, logger *slog.Logger, interval time.Duration) *Worker {
	return &Worker{
		deleter:  deleter,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
	}
}

// Run は起動時に1回クリーンアップを実行し、以後intervalごとに繰り返す。
// contextのキャンセルで停止する。
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("セッションクリーンアップワーカーを開始します",
		slog.Duration("interval", w.interval),
	)

	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("セッションクリーンアップワーカーを停止します")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce はクリーンアップを1回実行する。
// 失敗してもワーカーは止めず、次の周期で再試行する。
func (w *Worker) RunOnce(ctx context.Context) {
	deleted, err := w.deleter.DeleteExpired(ctx)
	if err != nil {
		w.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return
	}

	if w.metrics != nil {
		w.metrics.RecordSessionsCleaned(deleted)
	}

	w.logger.Info("期限切れセッションを削除しました",
		slog.Int("deleted", deleted),
	)
}
