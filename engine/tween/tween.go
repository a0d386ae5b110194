package tween

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/go-gl/mathgl/mgl32"
)

// EasingFunc maps linear progress in [0, 1] to eased progress.
type EasingFunc func(t float32) float32

// Linear is the identity easing.
func Linear(t float32) float32 { return t }

type tweenImpl struct {
	mu *sync.Mutex

	from     mgl32.Vec3
	to       mgl32.Vec3
	duration time.Duration
	delay    time.Duration
	easing   EasingFunc

	onUpdate   func(pos mgl32.Vec3, progress float32)
	onComplete func()

	started   bool
	startTime time.Time
	progress  float32
	done      bool
	cancelled bool
}

// Tween interpolates a point from one position to another over a fixed duration.
// It advances only when Update is called, so the caller's clock drives it.
type Tween interface {
	// Start schedules the tween to begin at now plus its delay.
	// Calling Start on a running or finished tween has no effect.
	//
	// Parameters:
	//   - now: the current time
	Start(now time.Time)

	// Update advances the tween to now, invoking OnUpdate and, on the final step, OnComplete.
	//
	// Parameters:
	//   - now: the current time
	//
	// Returns:
	//   - bool: true while the tween still has work to do
	Update(now time.Time) bool

	// Cancel stops the tween without invoking OnComplete.
	Cancel()

	// Progress returns the last computed progress in [0, 1].
	Progress() float32

	// Running reports whether the tween was started and has neither completed nor been cancelled.
	Running() bool

	// Done reports whether the tween ran to completion.
	Done() bool

	// Pending reports whether the tween may still produce updates: it has neither completed nor been cancelled.
	Pending() bool
}

var _ Tween = &tweenImpl{}

// NewTween creates a linear tween between two points.
//
// Parameters:
//   - from: the start position
//   - to: the end position
//   - duration: how long the motion takes, zero completes on the first Update
//   - options: functional options to configure the tween
//
// Returns:
//   - Tween: the newly created tween, not yet started
func NewTween(from, to mgl32.Vec3, duration time.Duration, options ...TweenBuilderOption) Tween {
	t := &tweenImpl{
		mu:       &sync.Mutex{},
		from:     from,
		to:       to,
		duration: duration,
		easing:   Linear,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *tweenImpl) Start(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.cancelled {
		return
	}
	t.started = true
	t.startTime = now.Add(t.delay)
}

func (t *tweenImpl) Update(now time.Time) bool {
	t.mu.Lock()
	if !t.started || t.done || t.cancelled {
		t.mu.Unlock()
		return false
	}
	if now.Before(t.startTime) {
		t.mu.Unlock()
		return true
	}

	progress := float32(1)
	if t.duration > 0 {
		progress = common.Clamp(float32(now.Sub(t.startTime))/float32(t.duration), 0, 1)
	}
	t.progress = progress
	t.done = progress >= 1
	pos := common.Lerp3(t.from, t.to, t.easing(progress))
	onUpdate, onComplete, done := t.onUpdate, t.onComplete, t.done
	t.mu.Unlock()

	// Callbacks run unlocked so they may query the tween.
	if onUpdate != nil {
		onUpdate(pos, progress)
	}
	if done && onComplete != nil {
		onComplete()
	}
	return !done
}

func (t *tweenImpl) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.cancelled = true
	}
}

func (t *tweenImpl) Progress() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

func (t *tweenImpl) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started && !t.done && !t.cancelled
}

func (t *tweenImpl) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *tweenImpl) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.done && !t.cancelled
}
