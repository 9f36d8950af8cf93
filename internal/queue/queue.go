package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// EnqueuePublish hands a post off for background delivery. MaxRetry is zero:
// an approval-triggered send is one-shot, a failure only lands on the post
// row.
func EnqueuePublish(asynqClient *asynq.Client, payload PublishPostPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.MaxRetry(0))
	if err != nil {
		return err
	}

	log.Printf("Publish task enqueued: %+v", payload)
	return nil
}
