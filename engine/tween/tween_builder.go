package tween

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// TweenBuilderOption is a functional option for configuring a Tween.
type TweenBuilderOption func(*tweenImpl)

// WithDelay postpones the start of the motion after Start is called.
//
// Parameters:
//   - delay: time to wait before progress begins
//
// Returns:
//   - TweenBuilderOption: option function to apply
func WithDelay(delay time.Duration) TweenBuilderOption {
	return func(t *tweenImpl) {
		if delay > 0 {
			t.delay = delay
		}
	}
}

// WithEasing replaces the default linear easing.
func WithEasing(easing EasingFunc) TweenBuilderOption {
	return func(t *tweenImpl) {
		if easing != nil {
			t.easing = easing
		}
	}
}

// WithOnUpdate registers a callback invoked with the interpolated position and linear progress on every Update.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - TweenBuilderOption: option function to apply
func WithOnUpdate(fn func(pos mgl32.Vec3, progress float32)) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.onUpdate = fn
	}
}

// WithOnComplete registers a callback invoked once when the tween reaches its end.
func WithOnComplete(fn func()) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.onComplete = fn
	}
}
