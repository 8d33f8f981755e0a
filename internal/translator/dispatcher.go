package translator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrInFlight means the same note is already being translated
var ErrInFlight = errors.New("translation already in progress")

// Result is handed to the completion callback of a request
type Result struct {
	NoteID     string
	TargetLang string
	Text       string
	Err        error
}

// Dispatcher runs translations in the background. Completion callbacks must
// not touch notebook state directly; they go through the notebook API like
// any other caller.
type Dispatcher struct {
	translator Translator
	timeout    time.Duration
	sem        *semaphore.Weighted
	logger     *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(t Translator, maxInFlight int, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		translator: t,
		timeout:    timeout,
		sem:        semaphore.NewWeighted(int64(maxInFlight)),
		logger:     logger,
		inFlight:   make(map[string]struct{}),
	}
}

// Submit starts translating text for noteID and returns immediately. done is
// called exactly once from another goroutine. A second request for the same
// note and language while the first is running is refused with ErrInFlight.
func (d *Dispatcher) Submit(noteID, text, targetLang string, done func(Result)) error {
	key := noteID + "|" + targetLang

	d.mu.Lock()
	if _, busy := d.inFlight[key]; busy {
		d.mu.Unlock()
		return ErrInFlight
	}
	d.inFlight[key] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			d.mu.Lock()
			delete(d.inFlight, key)
			d.mu.Unlock()
		}()

		res := Result{NoteID: noteID, TargetLang: targetLang}
		res.Text, res.Err = d.run(text, targetLang)
		if res.Err != nil {
			d.logger.Warn("Translation failed",
				zap.Error(res.Err),
				zap.String("note_id", noteID),
				zap.String("lang", targetLang))
		}
		done(res)
	}()
	return nil
}

func (d *Dispatcher) run(text, targetLang string) (string, error) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer d.sem.Release(1)

	return d.translator.Translate(ctx, text, targetLang)
}

// Wait blocks until every submitted request has called its callback
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
