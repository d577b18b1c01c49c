package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/daunroda/internal/models"
	tu "github.com/desertthunder/daunroda/internal/testing"
)

func reviewItem(root, id string) models.ReviewItem {
	return models.ReviewItem{
		Job: models.DownloadJob{
			Candidate:   models.Candidate{ExternalID: id},
			Destination: filepath.Join(root, id+".mp3"),
		},
		Reason: models.ForbiddenWording(),
	}
}

func TestReviewQueue(t *testing.T) {
	t.Run("concurrent enqueue", func(t *testing.T) {
		q := NewReviewQueue()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				q.Enqueue(reviewItem("", string(rune('a'+i%26))))
			}()
		}
		wg.Wait()

		if q.Len() != 50 {
			t.Errorf("expected 50 items, got %d", q.Len())
		}
	})

	t.Run("drain asks in order and empties the queue", func(t *testing.T) {
		root := t.TempDir()
		q := NewReviewQueue()
		for _, id := range []string{"a", "b", "c"} {
			q.Enqueue(reviewItem(root, id))
		}
		oracle := &tu.FakeOracle{Answers: map[string]bool{"a": true, "c": true}}

		var got []models.OutcomeStatus
		var steps []int
		err := q.Drain(context.Background(), oracle, func(ctx context.Context, step int, item models.ReviewItem, status models.OutcomeStatus) {
			steps = append(steps, step)
			got = append(got, status)
		})
		if err != nil {
			t.Fatalf("Drain failed: %v", err)
		}

		want := []models.OutcomeStatus{models.StatusApproved, models.StatusDeclined, models.StatusApproved}
		if !slices.Equal(got, want) {
			t.Errorf("statuses = %v, want %v", got, want)
		}
		if !slices.Equal(steps, []int{1, 2, 3}) {
			t.Errorf("steps = %v", steps)
		}
		if q.Len() != 0 {
			t.Errorf("expected empty queue after drain, got %d", q.Len())
		}
	})

	t.Run("existing destination is not asked", func(t *testing.T) {
		root := t.TempDir()
		q := NewReviewQueue()
		q.Enqueue(reviewItem(root, "a"))
		q.Enqueue(reviewItem(root, "b"))
		tu.MustWriteFile(t, filepath.Join(root, "a.mp3"), "audio")

		oracle := &tu.FakeOracle{Answer: true}
		var got []models.OutcomeStatus
		err := q.Drain(context.Background(), oracle, func(ctx context.Context, step int, item models.ReviewItem, status models.OutcomeStatus) {
			got = append(got, status)
		})
		if err != nil {
			t.Fatalf("Drain failed: %v", err)
		}

		if !slices.Equal(got, []models.OutcomeStatus{models.StatusExisting, models.StatusApproved}) {
			t.Errorf("unexpected statuses %v", got)
		}
		if asked := oracle.Asked(); len(asked) != 1 || asked[0].Job.Candidate.ExternalID != "b" {
			t.Errorf("expected only b to be asked, got %v", asked)
		}
	})

	t.Run("handler sees files written by earlier approvals", func(t *testing.T) {
		root := t.TempDir()
		q := NewReviewQueue()
		first := reviewItem(root, "a")
		q.Enqueue(first)
		q.Enqueue(first)

		oracle := &tu.FakeOracle{Answer: true}
		var got []models.OutcomeStatus
		err := q.Drain(context.Background(), oracle, func(ctx context.Context, step int, item models.ReviewItem, status models.OutcomeStatus) {
			got = append(got, status)
			if status == models.StatusApproved {
				tu.MustWriteFile(t, item.Job.Destination, "audio")
			}
		})
		if err != nil {
			t.Fatalf("Drain failed: %v", err)
		}
		if !slices.Equal(got, []models.OutcomeStatus{models.StatusApproved, models.StatusExisting}) {
			t.Errorf("unexpected statuses %v", got)
		}
	})

	t.Run("oracle error stops the drain", func(t *testing.T) {
		root := t.TempDir()
		q := NewReviewQueue()
		q.Enqueue(reviewItem(root, "a"))
		q.Enqueue(reviewItem(root, "b"))
		boom := errors.New("boom")

		calls := 0
		err := q.Drain(context.Background(), &tu.FakeOracle{Err: boom}, func(context.Context, int, models.ReviewItem, models.OutcomeStatus) {
			calls++
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if calls != 0 {
			t.Errorf("expected no handler calls, got %d", calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		q := NewReviewQueue()
		q.Enqueue(reviewItem(t.TempDir(), "a"))
		oracle := &tu.FakeOracle{Answer: true}

		err := q.Drain(ctx, oracle, func(context.Context, int, models.ReviewItem, models.OutcomeStatus) {})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(oracle.Asked()) != 0 {
			t.Error("expected the oracle not to be asked")
		}
	})
}

func TestStaticOracle(t *testing.T) {
	for _, answer := range []bool{true, false} {
		got, err := StaticOracle(answer).Confirm(context.Background(), models.ReviewItem{})
		if err != nil || got != answer {
			t.Errorf("StaticOracle(%v) = %v, %v", answer, got, err)
		}
	}
}
