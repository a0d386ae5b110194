package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/bikeview/common"
)

// NullRendererBackend records frames without a GPU.
// The last finished frame stays inspectable until the next EndFrame.
type NullRendererBackend struct {
	mu *sync.Mutex

	width, height int
	presentMode   PresentMode

	open    bool
	clear   common.Color
	pending []Batch

	lastClear   common.Color
	lastBatches []Batch
	frames      int
	presented   int
	released    bool
}

var _ RendererBackend = &NullRendererBackend{}

// NewNullRendererBackend creates an empty NullRendererBackend.
func NewNullRendererBackend() *NullRendererBackend {
	return &NullRendererBackend{mu: &sync.Mutex{}}
}

func (b *NullRendererBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

func (b *NullRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *NullRendererBackend) BeginFrame(clear common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = true
	b.clear = clear
	b.pending = b.pending[:0]
	return nil
}

func (b *NullRendererBackend) Submit(batch Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		b.pending = append(b.pending, batch)
	}
}

func (b *NullRendererBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return
	}
	b.open = false
	b.lastClear = b.clear
	b.lastBatches = append([]Batch(nil), b.pending...)
	b.frames++
}

func (b *NullRendererBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presented++
}

func (b *NullRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}

// Size returns the last configured surface size.
func (b *NullRendererBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// LastFrame returns the clear color and batches of the last finished frame.
func (b *NullRendererBackend) LastFrame() (common.Color, []Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastClear, b.lastBatches
}

// Frames returns how many frames were finished and presented.
func (b *NullRendererBackend) Frames() (finished, presented int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames, b.presented
}
