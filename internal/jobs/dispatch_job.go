package job

import (
	"context"
	"log"
	"log/slog"
	"sync/atomic"
	"time"

	"brandpanel/internal/repository"
	"brandpanel/internal/service"
)

// DispatchJob sweeps for scheduled posts whose publish time has arrived and
// drives each one through delivery. It runs on a fixed cron interval for the
// process lifetime; overdue posts simply get picked up on the first tick
// after a restart.
type DispatchJob struct {
	pr repository.PostRepository
	wh service.WebhookService

	running atomic.Bool
}

func NewDispatchJob(pr repository.PostRepository, wh service.WebhookService) *DispatchJob {
	return &DispatchJob{
		pr: pr,
		wh: wh,
	}
}

// DispatchDuePosts is one sweep. A tick that fires while the previous sweep
// is still working through slow webhook calls is skipped, not queued.
func (j *DispatchJob) DispatchDuePosts() {
	if !j.running.CompareAndSwap(false, true) {
		slog.Info("previous dispatch sweep still running, skipping tick")
		return
	}
	defer j.running.Store(false)

	ctx := context.Background()

	posts, err := j.pr.ListDue(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range posts {
		if err := j.wh.SendToWebhook(ctx, post.ID); err != nil {
			log.Printf("Error publishing scheduled post %d: %v", post.ID, err)
		}
	}
}
