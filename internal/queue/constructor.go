package queue

import (
	"brandpanel/internal/service"
)

// Queue runs the background publish tasks handed off by the approval
// endpoint. Delivery itself lives in the webhook service; the queue only
// decodes the task and reports the outcome in logs; the terminal state is
// written onto the post row by the delivery path.
type Queue struct {
	wh service.WebhookService
}

func NewQueue(wh service.WebhookService) *Queue {
	return &Queue{
		wh: wh,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
