// Package lifecycle owns the in-memory copy of a trained model. Readers
// always see a complete model; bootstrap training runs at most once at a
// time and is shared by every waiter; retrains are coalesced so that only
// one is in flight per holder.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Veraticus/spice-talk/internal/common"
)

// State describes where a holder is in its life.
type State int32

// Holder states.
const (
	Uninitialized State = iota
	Bootstrapping
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Bootstrapping:
		return "bootstrapping"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// BootstrapFunc trains a model from nothing.
type BootstrapFunc[T any] func(ctx context.Context) (*T, error)

// TrainFunc produces a replacement for current, which may be nil.
type TrainFunc[T any] func(ctx context.Context, current *T) (*T, error)

type future[T any] struct {
	done chan struct{}
	val  *T
	err  error
}

// Holder publishes one model of type T.
type Holder[T any] struct {
	swappedAt  atomic.Pointer[time.Time]
	current    atomic.Pointer[T]
	bootstrap  BootstrapFunc[T]
	boot       *future[T]
	group      singleflight.Group
	name       string
	generation atomic.Uint64
	mu         sync.Mutex
	state      atomic.Int32
	retraining atomic.Bool
}

// New creates an empty holder. bootstrap may be nil when the model can only
// be loaded or swapped in.
func New[T any](name string, bootstrap BootstrapFunc[T]) *Holder[T] {
	return &Holder[T]{name: name, bootstrap: bootstrap}
}

// Name returns the holder's model name.
func (h *Holder[T]) Name() string {
	return h.name
}

// Current returns the published model, or nil when none is ready.
func (h *Holder[T]) Current() *T {
	return h.current.Load()
}

// State returns the holder's state.
func (h *Holder[T]) State() State {
	return State(h.state.Load())
}

// Generation counts successful swaps.
func (h *Holder[T]) Generation() uint64 {
	return h.generation.Load()
}

// SwappedAt returns when the current model was published.
func (h *Holder[T]) SwappedAt() time.Time {
	if t := h.swappedAt.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// Retraining reports whether a retrain is in flight.
func (h *Holder[T]) Retraining() bool {
	return h.retraining.Load()
}

// Swap publishes m. Readers that already hold the previous model keep using
// it until they finish.
func (h *Holder[T]) Swap(m *T) {
	if m == nil {
		return
	}
	h.current.Store(m)
	h.markSwapped()
}

func (h *Holder[T]) markSwapped() {
	now := time.Now()
	h.swappedAt.Store(&now)
	h.generation.Add(1)
	h.state.Store(int32(Ready))
}

// Start begins bootstrap training in the background if no model is ready
// and none is being trained. It never blocks.
func (h *Holder[T]) Start(ctx context.Context) {
	if h.current.Load() != nil {
		return
	}
	h.start(ctx)
}

func (h *Holder[T]) start(ctx context.Context) *future[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	if f := h.boot; f != nil {
		select {
		case <-f.done:
			if f.err == nil {
				return f
			}
		default:
			return f
		}
	}

	f := &future[T]{done: make(chan struct{})}
	h.boot = f
	if h.bootstrap == nil {
		f.err = fmt.Errorf("%w: no bootstrap for %s", common.ErrModelNotReady, h.name)
		close(f.done)
		return f
	}

	h.state.Store(int32(Bootstrapping))
	// Waiters may give up; the training they share must not.
	bootCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(f.done)
		started := time.Now()
		m, err := h.bootstrap(bootCtx)
		if err == nil && m == nil {
			err = errors.New("bootstrap returned no model")
		}
		if err != nil {
			f.err = err
			if h.current.Load() == nil {
				h.state.Store(int32(Failed))
			}
			level := slog.LevelError
			if errors.Is(err, common.ErrInsufficientSamples) {
				level = slog.LevelInfo
			}
			slog.Log(bootCtx, level, "Bootstrap training failed", "model", h.name, "error", err)
			return
		}
		f.val = m
		if h.current.CompareAndSwap(nil, m) {
			h.markSwapped()
		}
		slog.Info("Bootstrap training finished", "model", h.name, "duration", time.Since(started))
	}()
	return f
}

// Ensure returns the published model, bootstrapping it first if needed.
// Concurrent callers share a single bootstrap run. If ctx ends first the
// caller gets ctx's error while training continues for the others.
func (h *Holder[T]) Ensure(ctx context.Context) (*T, error) {
	if m := h.current.Load(); m != nil {
		return m, nil
	}

	f := h.start(ctx)
	select {
	case <-f.done:
		if f.err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrBootstrapFailed, h.name, f.err)
		}
		if m := h.current.Load(); m != nil {
			return m, nil
		}
		return f.val, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Retrain runs train against the current model and publishes the result.
// While one retrain is in flight further calls wait for it and receive its
// outcome instead of starting another. On error the current model stays.
func (h *Holder[T]) Retrain(ctx context.Context, train TrainFunc[T]) (*T, error) {
	v, err, shared := h.group.Do("retrain", func() (any, error) {
		h.retraining.Store(true)
		defer h.retraining.Store(false)

		next, err := train(ctx, h.current.Load())
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("retrain of %s returned no model", h.name)
		}
		h.Swap(next)
		return next, nil
	})
	if shared {
		slog.Debug("Joined in-flight retrain", "model", h.name)
	}
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}
