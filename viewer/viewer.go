package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/Carmen-Shannon/bikeview/config"
	"github.com/Carmen-Shannon/bikeview/engine"
	"github.com/Carmen-Shannon/bikeview/engine/camera"
	"github.com/Carmen-Shannon/bikeview/engine/loader"
	"github.com/Carmen-Shannon/bikeview/engine/scene"
	"github.com/Carmen-Shannon/bikeview/engine/window"
	"github.com/Carmen-Shannon/bikeview/intro"
	"github.com/Carmen-Shannon/bikeview/parts"
	"github.com/Carmen-Shannon/bikeview/projection"
	"github.com/Carmen-Shannon/bikeview/selection"
)

var (
	// ErrLoadFailure marks every LoadFailure.
	ErrLoadFailure = errors.New("load failure")
	// ErrNoCamera is returned by New when the engine has no camera.
	ErrNoCamera = errors.New("engine has no camera")
	// ErrQueueFull is returned when an action cannot be queued for the next frame.
	ErrQueueFull = errors.New("action queue full")
	// ErrAlreadyLoading is returned by Load after the first call.
	ErrAlreadyLoading = errors.New("load already started")
)

// Texture and cube map names in the load bundle.
const (
	floorTextureName = "floor"
	reflectionName   = "reflection"
	refractionName   = "refraction"
)

// LoadFailure reports that the model or one of its textures could not be decoded.
// It is fatal for the session.
type LoadFailure struct {
	Asset string
	Err   error
}

func (e *LoadFailure) Error() string {
	if e.Asset == "" {
		return fmt.Sprintf("load failure: %v", e.Err)
	}
	return fmt.Sprintf("load failure: %s: %v", e.Asset, e.Err)
}

func (e *LoadFailure) Unwrap() []error {
	return []error{ErrLoadFailure, e.Err}
}

// BundleSource starts loading a bundle and delivers exactly one result.
type BundleSource func(b loader.Bundle) <-chan loader.BundleResult

// viewer is the implementation of the Viewer interface.
type viewer struct {
	mu *sync.Mutex

	cfg      config.Config
	engine   engine.Engine
	camera   camera.Camera
	controls camera.OrbitController
	source   BundleSource
	logger   *slog.Logger
	now      func() time.Time

	catalog   *parts.Catalog
	table     *parts.StateTable
	machine   selection.Machine
	projector projection.Projector
	intro     intro.Sequencer
	scenes    Scenes

	status      Status
	loadStarted bool
	pending     <-chan loader.BundleResult
	failure     *LoadFailure
	model       *scene.Node
	report      parts.Report

	onFailure func(error)
	publish   func(Snapshot)
	interval  time.Duration
	published time.Time

	input    inputState
	snapshot Snapshot
}

// Viewer runs the part annotation engine on top of the frame loop.
//
// Each frame it polls the asynchronous load, pumps the intro, updates the orbit controls,
// and after the scenes are drawn projects every part label, resolves crowding and publishes
// a snapshot. Actions from other goroutines are queued onto the frame loop.
type Viewer interface {
	// Load starts loading the model, floor texture and environment maps named by the config.
	//
	// Returns:
	//   - error: ErrAlreadyLoading on a second call
	Load() error

	// SelectLabel queues a label click for the next frame.
	//
	// Parameters:
	//   - id: the part ID
	//
	// Returns:
	//   - error: selection.ErrUnknownPart or ErrQueueFull
	SelectLabel(id string) error

	// CloseInfoPanel queues closing the info panel.
	CloseInfoPanel() error

	// SelectRepair queues switching the service mode to Repair.
	SelectRepair() error

	// SelectUpgrade queues switching the service mode to Upgrade.
	SelectUpgrade() error

	// Status returns the load state.
	Status() Status

	// Err returns the load failure, or nil.
	Err() error

	// Snapshot returns the latest published frame state.
	Snapshot() Snapshot

	// Report returns the binding report, empty until loaded.
	Report() parts.Report

	// Selection returns the selection state machine.
	Selection() selection.Machine

	// Controls returns the orbit controller.
	Controls() camera.OrbitController

	// Intro returns the intro sequencer.
	Intro() intro.Sequencer

	// Scenes returns the main and floor scenes.
	Scenes() Scenes

	// Run drives the engine until ctx is cancelled or the engine quits.
	Run(ctx context.Context) error
}

var _ Viewer = &viewer{}

// New builds a viewer on an engine that already has a camera and registers the frame
// callbacks and input handlers. The scenes are added at keys MainSceneKey and FloorSceneKey.
//
// Parameters:
//   - eng: the engine
//   - catalog: the part catalog
//   - options: functional options
//
// Returns:
//   - Viewer: the viewer
//   - error: ErrNoCamera if the engine has no camera
func New(eng engine.Engine, catalog *parts.Catalog, options ...ViewerBuilderOption) (Viewer, error) {
	if eng == nil || eng.Camera() == nil {
		return nil, ErrNoCamera
	}

	v := &viewer{
		mu:      &sync.Mutex{},
		cfg:     config.Default(),
		engine:  eng,
		camera:  eng.Camera(),
		logger:  slog.Default(),
		now:     time.Now,
		catalog: catalog,
		status:  StatusLoading,
	}
	for _, opt := range options {
		opt(v)
	}
	if v.catalog == nil {
		v.catalog = parts.DefaultCatalog()
	}
	if v.source == nil {
		l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithLogger(v.logger))
		v.source = l.LoadBundleAsync
	}
	if v.interval == 0 {
		v.interval = v.cfg.Overlay.PublishInterval()
	}

	cam := v.cfg.Camera
	v.camera.SetPosition(cam.StartPosition())
	v.camera.LookAt(cam.Target())

	v.controls = camera.NewOrbitController(v.camera,
		camera.WithOrbitTarget(cam.Target()),
		camera.WithDistanceBounds(0, v.cfg.Controls.MaxDistance),
		camera.WithPolarBounds(0, v.cfg.Controls.MaxPolarAngle),
		camera.WithDamping(v.cfg.Controls.Damping, 60, 6, 1),
	)
	v.intro = intro.NewSequencer(v.camera, v.controls,
		intro.WithPath(cam.StartPosition(), cam.RestPosition(), cam.Target()),
		intro.WithTiming(v.cfg.Intro.Delay(), v.cfg.Intro.Duration()),
		intro.WithLogger(v.logger),
	)

	v.table = parts.NewStateTable(v.catalog)
	v.machine = selection.NewMachine(v.catalog, v.table,
		selection.WithColors(v.cfg.Colors.Highlight, v.cfg.Colors.Baseline),
		selection.WithLogger(v.logger),
	)
	v.projector = projection.NewProjector(v.catalog, v.table, v.logger)

	v.logger.Info("creating scenes")
	v.scenes = NewScenes()
	eng.AddScene(MainSceneKey, v.scenes.Main)
	eng.AddScene(FloorSceneKey, v.scenes.Floor)

	eng.SetUpdateCallback(v.update)
	eng.SetRenderCallback(v.render)
	if w := eng.Window(); w != nil {
		v.attachInput(w)
	}
	return v, nil
}

func (v *viewer) Load() error {
	v.mu.Lock()
	if v.loadStarted {
		v.mu.Unlock()
		return ErrAlreadyLoading
	}
	v.loadStarted = true
	bundle := v.bundle()
	v.logger.Info("loading model", slog.String("path", bundle.ModelPath))
	v.pending = v.source(bundle)
	v.mu.Unlock()
	return nil
}

func (v *viewer) bundle() loader.Bundle {
	a := v.cfg.Assets
	b := loader.Bundle{ModelPath: a.Model}
	if a.FloorTexture != "" {
		b.Textures = append(b.Textures, loader.TextureSpec{
			Name:   floorTextureName,
			Path:   a.FloorTexture,
			Wrap:   common.WrapRepeat,
			Repeat: [2]float32{floorRepeat, floorRepeat},
		})
	}
	if a.EnvMapDir != "" {
		b.CubeMaps = append(b.CubeMaps,
			loader.CubeSpec{Name: reflectionName, Dir: a.EnvMapDir, Ext: a.EnvMapExt, Mapping: common.CubeReflection},
			loader.CubeSpec{Name: refractionName, Dir: a.EnvMapDir, Ext: a.EnvMapExt, Mapping: common.CubeRefraction},
		)
	}
	return b
}

// update runs before the scenes are drawn.
func (v *viewer) update(_ float32) {
	now := v.now()
	v.pollLoad(now)

	if v.Status() == StatusReady {
		v.intro.Update(now)
	}
	if v.controls.Enabled() {
		v.controls.Update()
	}
	v.camera.Update()
}

// pollLoad takes the load result if it has arrived, without blocking.
func (v *viewer) pollLoad(now time.Time) {
	v.mu.Lock()
	pending := v.pending
	v.mu.Unlock()
	if pending == nil {
		return
	}

	select {
	case res := <-pending:
		v.mu.Lock()
		v.pending = nil
		v.mu.Unlock()
		if res.Err != nil {
			v.fail(res.Err)
			return
		}
		v.loaded(res, now)
	default:
	}
}

func (v *viewer) loaded(res loader.BundleResult, now time.Time) {
	v.logger.Info("finished loading model", slog.String("path", v.cfg.Assets.Model))

	report := parts.Bind(res.Model, v.catalog, v.table, parts.Environment{
		Reflection: res.CubeMaps[reflectionName],
		Baseline:   v.cfg.Colors.Baseline,
	})
	v.logger.Info("parts bound",
		slog.Int("nodes", report.Eligible),
		slog.Int("matched", report.Matched),
		slog.Int("unmatched", report.Unmatched),
	)
	if unbound := report.Unbound(v.catalog); len(unbound) > 0 {
		v.logger.Warn("parts without nodes", slog.Any("parts", unbound))
	}

	v.scenes.AddModel(res.Model, res.Textures[floorTextureName])
	v.machine.SetModel(res.Model)

	v.mu.Lock()
	v.model = res.Model
	v.report = report
	v.status = StatusReady
	v.mu.Unlock()

	v.intro.Start(now)
}

// fail records the first load failure and reports it once.
func (v *viewer) fail(err error) {
	lf := &LoadFailure{Err: err}
	var asset *loader.AssetError
	if errors.As(err, &asset) {
		lf.Asset = asset.Path
	}

	v.mu.Lock()
	if v.failure != nil {
		v.mu.Unlock()
		return
	}
	v.failure = lf
	v.status = StatusFailed
	cb := v.onFailure
	v.mu.Unlock()

	v.logger.Error("failed to load model", slog.String("asset", lf.Asset), slog.String("error", err.Error()))
	if cb != nil {
		cb(lf)
	}
}

// render runs after the scenes are drawn.
func (v *viewer) render(_ float32) {
	width, height := v.engine.Size()

	if v.Status() == StatusReady {
		v.projector.Project(v.scenes.Main, v.camera, width, height)
		projection.ResolveCrowding(v.table)
		v.table.Each(func(_ string, s *parts.PartState) {
			s.Opacity = v.intro.LabelOpacity(s.Opacity)
		})
	}

	snap := v.buildSnapshot(width, height)
	v.mu.Lock()
	v.snapshot = snap
	publish := v.publish
	due := v.published.IsZero() || v.now().Sub(v.published) >= v.interval
	if publish != nil && due {
		v.published = v.now()
	}
	v.mu.Unlock()

	if publish != nil && due {
		publish(snap)
	}
}

func (v *viewer) buildSnapshot(width, height int) Snapshot {
	sel := v.machine.Snapshot()

	v.mu.Lock()
	defer v.mu.Unlock()
	snap := Snapshot{
		Frame:         v.engine.Frames(),
		Status:        v.status.String(),
		Intro:         v.intro.Phase().String(),
		Width:         width,
		Height:        height,
		Cursor:        v.input.cursor.String(),
		LabelsVisible: sel.LabelsVisible,
		Panel:         panelFrom(sel),
	}
	if v.failure != nil {
		snap.Error = v.failure.Error()
		return snap
	}
	if v.status == StatusReady {
		snap.Labels = buildLabels(v.catalog, v.table, sel.Part)
	}
	return snap
}

func (v *viewer) post(action func()) error {
	if !v.engine.Post(action) {
		return ErrQueueFull
	}
	return nil
}

func (v *viewer) SelectLabel(id string) error {
	if v.catalog.Get(id) == nil {
		return fmt.Errorf("%w: %q", selection.ErrUnknownPart, id)
	}
	return v.post(func() {
		if v.Status() != StatusReady {
			return
		}
		if err := v.machine.SelectLabel(id); err != nil {
			v.logger.Warn("select label", slog.String("error", err.Error()))
		}
	})
}

func (v *viewer) CloseInfoPanel() error {
	return v.post(v.machine.CloseInfoPanel)
}

func (v *viewer) SelectRepair() error {
	return v.post(v.machine.SelectRepair)
}

func (v *viewer) SelectUpgrade() error {
	return v.post(v.machine.SelectUpgrade)
}

func (v *viewer) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *viewer) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failure == nil {
		return nil
	}
	return v.failure
}

func (v *viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

func (v *viewer) Report() parts.Report {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.report
}

func (v *viewer) Selection() selection.Machine {
	return v.machine
}

func (v *viewer) Controls() camera.OrbitController {
	return v.controls
}

func (v *viewer) Intro() intro.Sequencer {
	return v.intro
}

func (v *viewer) Scenes() Scenes {
	return v.scenes
}

func (v *viewer) Run(ctx context.Context) error {
	v.mu.Lock()
	started := v.loadStarted
	v.mu.Unlock()
	if !started {
		if err := v.Load(); err != nil {
			return err
		}
	}
	err := v.engine.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// setCursor changes the cursor shape on the window, if there is one.
func (v *viewer) setCursor(c window.Cursor) {
	v.mu.Lock()
	v.input.cursor = c
	v.mu.Unlock()
	if w := v.engine.Window(); w != nil {
		w.SetCursor(c)
	}
}
