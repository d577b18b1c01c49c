package tasks

import (
	"context"
	"sync"

	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
)

// Oracle answers whether a deferred match should be downloaded anyway.
type Oracle interface {
	Confirm(ctx context.Context, item models.ReviewItem) (bool, error)
}

// OracleFunc adapts a function to [Oracle].
type OracleFunc func(ctx context.Context, item models.ReviewItem) (bool, error)

func (f OracleFunc) Confirm(ctx context.Context, item models.ReviewItem) (bool, error) {
	return f(ctx, item)
}

// StaticOracle gives the same answer to every item.
func StaticOracle(answer bool) Oracle {
	return OracleFunc(func(context.Context, models.ReviewItem) (bool, error) {
		return answer, nil
	})
}

// ReviewQueue collects deferred matches across a run. Enqueue is safe for
// concurrent use; Drain empties the queue.
type ReviewQueue struct {
	mu    sync.Mutex
	items []models.ReviewItem
}

func NewReviewQueue() *ReviewQueue {
	return &ReviewQueue{}
}

// Enqueue appends an item.
func (q *ReviewQueue) Enqueue(item models.ReviewItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// Len returns the number of pending items.
func (q *ReviewQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the pending items in enqueue order.
func (q *ReviewQueue) Items() []models.ReviewItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.ReviewItem(nil), q.items...)
}

// ReviewHandler is called once per drained item, sequentially.
// status is [models.StatusExisting] when the destination appeared before the
// oracle was asked, otherwise [models.StatusApproved] or [models.StatusDeclined].
type ReviewHandler func(ctx context.Context, step int, item models.ReviewItem, status models.OutcomeStatus)

// Drain takes every pending item and resolves them in enqueue order, one at a
// time. Items whose destination already exists are reported as existing
// without consulting the oracle. A nil oracle declines everything.
//
// An oracle error or a cancelled context stops the drain. The error is
// returned and the remaining items are dropped.
func (q *ReviewQueue) Drain(ctx context.Context, oracle Oracle, handle ReviewHandler) error {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	if oracle == nil {
		oracle = StaticOracle(false)
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		if shared.FileExists(item.Job.Destination) {
			handle(ctx, i+1, item, models.StatusExisting)
			continue
		}

		ok, err := oracle.Confirm(ctx, item)
		if err != nil {
			return err
		}

		status := models.StatusDeclined
		if ok {
			status = models.StatusApproved
		}
		handle(ctx, i+1, item, status)
	}
	return nil
}
