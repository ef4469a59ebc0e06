package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
)

type fakePage struct {
	headless bool
	closed   int
}

func (f *fakePage) Navigate(context.Context, string) error { return nil }
func (f *fakePage) TranscriptText(context.Context, string, string) (string, error) {
	return "", nil
}
func (f *fakePage) OuterHTML(context.Context, string) (string, error) { return "", nil }
func (f *fakePage) ElementText(context.Context, string, string) (string, error) {
	return "", nil
}
func (f *fakePage) Close() { f.closed++ }

type recordingOpener struct {
	pages []*fakePage
	err   error
}

func (r *recordingOpener) open(_ context.Context, opts Options) (Page, error) {
	if r.err != nil {
		return nil, r.err
	}
	page := &fakePage{headless: opts.Headless}
	r.pages = append(r.pages, page)
	return page, nil
}

func TestPoolResetsAfterThreshold(t *testing.T) {
	opener := &recordingOpener{}
	pool := NewPool(context.Background(), opener.open, Options{}, 3, logging.NewNop())

	for i := 0; i < 7; i++ {
		if _, err := pool.Acquire(true); err != nil {
			t.Fatalf("acquire %d: unexpected error: %v", i, err)
		}
	}
	if got := pool.Launches(); got != 3 {
		t.Fatalf("expected 3 launches for 7 uses at threshold 3, got %d", got)
	}
	if opener.pages[0].closed != 1 || opener.pages[1].closed != 1 {
		t.Fatalf("expected replaced sessions to be closed, got %d and %d", opener.pages[0].closed, opener.pages[1].closed)
	}
	if opener.pages[2].closed != 0 {
		t.Fatalf("current session closed early")
	}

	pool.Close()
	if opener.pages[2].closed != 1 {
		t.Fatalf("expected Close to tear down the current session")
	}
}

func TestPoolResetsOnModeChange(t *testing.T) {
	opener := &recordingOpener{}
	pool := NewPool(context.Background(), opener.open, Options{}, 10, logging.NewNop())

	first, err := pool.Acquire(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, _ := pool.Acquire(true)
	if first != again {
		t.Fatalf("expected the session to be reused in the same mode")
	}
	visible, _ := pool.Acquire(false)
	if visible == first {
		t.Fatalf("expected a new session after switching to visible mode")
	}
	if !opener.pages[0].headless || opener.pages[1].headless {
		t.Fatalf("unexpected session modes: %+v %+v", opener.pages[0], opener.pages[1])
	}
	if opener.pages[0].closed != 1 {
		t.Fatalf("expected the headless session to be closed on mode change")
	}
}

func TestPoolPropagatesLaunchFailure(t *testing.T) {
	boom := errors.New("no chrome")
	pool := NewPool(context.Background(), (&recordingOpener{err: boom}).open, Options{}, 2, logging.NewNop())
	if _, err := pool.Acquire(true); !errors.Is(err, boom) {
		t.Fatalf("expected launch error, got %v", err)
	}
}
