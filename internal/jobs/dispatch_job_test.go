package job

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"brandpanel/internal/models"
	"github.com/stretchr/testify/assert"
)

type stubPostRepo struct {
	due     []*models.Post
	listErr error

	listCalls atomic.Int32
}

func (r *stubPostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return nil, nil
}

func (r *stubPostRepo) ListByBrandID(ctx context.Context, brandID int64) ([]*models.Post, error) {
	return nil, nil
}

func (r *stubPostRepo) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	r.listCalls.Add(1)
	return r.due, r.listErr
}

func (r *stubPostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	return nil
}

func (r *stubPostRepo) UpdateStatus(ctx context.Context, status string, postID int64) error {
	return nil
}

func (r *stubPostRepo) Schedule(ctx context.Context, postID int64, scheduleAt time.Time) error {
	return nil
}

func (r *stubPostRepo) MarkFailed(ctx context.Context, postID int64, lastError string) error {
	return nil
}

func (r *stubPostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}

func (r *stubPostRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

type stubWebhookService struct {
	mu      sync.Mutex
	sent    []int64
	failIDs map[int64]bool
	block   chan struct{}
}

func (s *stubWebhookService) SendToWebhook(ctx context.Context, postID int64) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.sent = append(s.sent, postID)
	s.mu.Unlock()
	if s.failIDs[postID] {
		return errors.New("delivery failed")
	}
	return nil
}

func (s *stubWebhookService) GeneratePost(ctx context.Context, postID int64, media *multipart.FileHeader) (*models.Post, error) {
	return nil, errors.New("not implemented")
}

func (s *stubWebhookService) NotifyDocumentAdded(ctx context.Context, brand *models.Brand, doc *models.Document, file []byte) error {
	return nil
}

func (s *stubWebhookService) NotifyDocumentRemoved(ctx context.Context, doc *models.Document) error {
	return nil
}

func (s *stubWebhookService) sentIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.sent...)
}

func duePost(id int64) *models.Post {
	at := time.Now().Add(-time.Minute)
	return &models.Post{ID: id, BrandID: 1, Status: models.PostStatusScheduled, ScheduleAt: &at}
}

func TestDispatchDuePosts_DeliversAllDue(t *testing.T) {
	pr := &stubPostRepo{due: []*models.Post{duePost(1), duePost(2), duePost(3)}}
	wh := &stubWebhookService{}

	NewDispatchJob(pr, wh).DispatchDuePosts()

	assert.Equal(t, []int64{1, 2, 3}, wh.sentIDs())
}

func TestDispatchDuePosts_FailureDoesNotStopSweep(t *testing.T) {
	pr := &stubPostRepo{due: []*models.Post{duePost(1), duePost(2), duePost(3)}}
	wh := &stubWebhookService{failIDs: map[int64]bool{2: true}}

	NewDispatchJob(pr, wh).DispatchDuePosts()

	assert.Equal(t, []int64{1, 2, 3}, wh.sentIDs())
}

func TestDispatchDuePosts_ListErrorSkipsSweep(t *testing.T) {
	pr := &stubPostRepo{listErr: errors.New("db down")}
	wh := &stubWebhookService{}

	NewDispatchJob(pr, wh).DispatchDuePosts()

	assert.Empty(t, wh.sentIDs())
}

func TestDispatchDuePosts_SkipsOverlappingTick(t *testing.T) {
	block := make(chan struct{})
	pr := &stubPostRepo{due: []*models.Post{duePost(1)}}
	wh := &stubWebhookService{block: block}
	j := NewDispatchJob(pr, wh)

	done := make(chan struct{})
	go func() {
		j.DispatchDuePosts()
		close(done)
	}()

	// Wait until the first sweep has committed to its delivery call.
	assert.Eventually(t, func() bool {
		return pr.listCalls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// A tick fired during an active sweep must return without listing again.
	j.DispatchDuePosts()
	assert.Equal(t, int32(1), pr.listCalls.Load())

	close(block)
	<-done

	assert.Equal(t, []int64{1}, wh.sentIDs())

	// Next tick after the sweep finished runs normally.
	j.DispatchDuePosts()
	assert.Equal(t, int32(2), pr.listCalls.Load())
}
