package intro

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/bikeview/engine/tween"
	"github.com/go-gl/mathgl/mgl32"
)

// Phase is the state of the intro sequence.
type Phase int

const (
	// Disabled is the phase before the camera starts moving, controls are off.
	Disabled Phase = iota
	// Animating is the phase while the camera moves, controls stay off.
	Animating
	// Enabled is the final phase, controls are on.
	Enabled
)

func (p Phase) String() string {
	switch p {
	case Animating:
		return "animating"
	case Enabled:
		return "enabled"
	default:
		return "disabled"
	}
}

// Mover is the camera the intro drives.
type Mover interface {
	SetPosition(p mgl32.Vec3)
	LookAt(target mgl32.Vec3)
}

// Toggler is the user camera control the intro gates.
type Toggler interface {
	SetEnabled(enabled bool)
}

// sequencer is the implementation of the Sequencer interface.
type sequencer struct {
	mu *sync.Mutex

	camera   Mover
	controls Toggler
	logger   *slog.Logger

	from, to, lookAt mgl32.Vec3
	delay            time.Duration
	duration         time.Duration

	tweens   *tween.Group
	started  bool
	phase    Phase
	progress float32
	done     chan struct{}
}

// Sequencer moves the camera from a start to a resting pose once after load, then hands the
// camera to the user controls. It is one-shot: a finished or started sequence never restarts.
type Sequencer interface {
	// Start schedules the move to begin after the configured delay. Later calls are ignored.
	//
	// Parameters:
	//   - now: the current time, normally when loading finished
	//
	// Returns:
	//   - bool: true if this call started the sequence
	Start(now time.Time) bool

	// Update advances the move to now. Call it once per frame.
	//
	// Parameters:
	//   - now: the current time
	//
	// Returns:
	//   - Phase: the phase after the update
	Update(now time.Time) Phase

	// Phase returns the current phase.
	Phase() Phase

	// Progress returns the linear progress of the move in [0, 1].
	Progress() float32

	// LabelOpacity returns the label opacity for the current phase: 0 before the move,
	// the move progress while animating, and crowding once enabled.
	//
	// Parameters:
	//   - crowding: the distance-based opacity of the label
	//
	// Returns:
	//   - float32: the opacity to show
	LabelOpacity(crowding float32) float32

	// Done is closed when the sequence reaches Enabled.
	Done() <-chan struct{}
}

var _ Sequencer = &sequencer{}

// NewSequencer creates a Disabled sequencer. The controls are switched off immediately so the
// camera belongs to the intro until it completes.
//
// Parameters:
//   - camera: the camera to move
//   - controls: the user controls to enable on completion
//   - options: functional options
//
// Returns:
//   - Sequencer: the sequencer
func NewSequencer(camera Mover, controls Toggler, options ...SequencerBuilderOption) Sequencer {
	s := &sequencer{
		mu:       &sync.Mutex{},
		camera:   camera,
		controls: controls,
		logger:   slog.Default(),
		from:     mgl32.Vec3{1, 1.5, 0},
		to:       mgl32.Vec3{1, 0.7, -1},
		lookAt:   mgl32.Vec3{0, 0.5, -0.3},
		delay:    time.Second,
		duration: 2 * time.Second,
		tweens:   tween.NewGroup(),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.controls != nil {
		s.controls.SetEnabled(false)
	}
	return s
}

func (s *sequencer) Start(now time.Time) bool {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return false
	}
	s.started = true
	s.mu.Unlock()

	t := tween.NewTween(s.from, s.to, s.duration,
		tween.WithDelay(s.delay),
		tween.WithEasing(tween.Linear),
		tween.WithOnUpdate(s.onUpdate),
		tween.WithOnComplete(s.onComplete),
	)
	t.Start(now)
	s.tweens.Add(t)
	s.logger.Debug("intro scheduled", slog.Duration("delay", s.delay), slog.Duration("duration", s.duration))
	return true
}

func (s *sequencer) onUpdate(pos mgl32.Vec3, progress float32) {
	if s.camera != nil {
		s.camera.SetPosition(pos)
		s.camera.LookAt(s.lookAt)
	}

	s.mu.Lock()
	s.progress = progress
	entered := s.phase == Disabled
	if entered {
		s.phase = Animating
	}
	s.mu.Unlock()

	if entered {
		s.logger.Info("intro animating")
	}
}

func (s *sequencer) onComplete() {
	s.mu.Lock()
	if s.phase == Enabled {
		s.mu.Unlock()
		return
	}
	s.phase = Enabled
	s.progress = 1
	s.mu.Unlock()

	if s.controls != nil {
		s.controls.SetEnabled(true)
	}
	close(s.done)
	s.logger.Info("intro finished, controls enabled")
}

func (s *sequencer) Update(now time.Time) Phase {
	s.tweens.Update(now)
	return s.Phase()
}

func (s *sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *sequencer) Progress() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *sequencer) LabelOpacity(crowding float32) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case Animating:
		return s.progress
	case Enabled:
		return crowding
	default:
		return 0
	}
}

func (s *sequencer) Done() <-chan struct{} {
	return s.done
}
