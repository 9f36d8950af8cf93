package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	// Delivery already records its failure on the post row; nothing to
	// escalate here beyond the log line.
	if err := j.wh.SendToWebhook(ctx, payload.PostID); err != nil {
		log.Printf("Error publishing approved post %d: %v", payload.PostID, err)
	}

	return nil
}
