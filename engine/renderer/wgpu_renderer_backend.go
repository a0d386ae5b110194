package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/bikeview/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// maxBatchesPerFrame bounds the number of scenes drawn in one frame, one uniform slot each.
const maxBatchesPerFrame = 8

// initialInstanceCapacity is the instance buffer size, in instances, before it first grows.
const initialInstanceCapacity = 256

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    *wgpu.TextureFormat
	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	presentMode wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	// Proxy pipeline state, created lazily once the surface format is known
	pipeline         *wgpu.RenderPipeline
	bindGroupLayout  *wgpu.BindGroupLayout
	bindGroup        *wgpu.BindGroup
	uniformBuffer    *wgpu.Buffer
	vertexBuffer     *wgpu.Buffer
	indexBuffer      *wgpu.Buffer
	indexCount       uint32
	instanceBuffer   *wgpu.Buffer
	instanceCapacity int

	// Frame state for batched rendering across multiple scenes
	clear        common.Color
	batches      []Batch
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor == nil {
		return nil, ErrNoSurface
	}

	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()
	count := uint32(b.sampleCount)
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	if count > 1 {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTexture = tex
		if b.msaaTextureView, err = tex.CreateView(nil); err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depth
	if b.depthTextureView, err = depth.CreateView(nil); err != nil {
		panic(err)
	}

	if b.pipeline == nil {
		if err := b.createProxyPipeline(); err != nil {
			panic(err)
		}
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

// createProxyPipeline builds the box pipeline, its uniform bind group and the shared box mesh.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createProxyPipeline() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "proxy.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: ProxyShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to compile proxy shader: %w", err)
	}
	defer module.Release()

	b.bindGroupLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Uniform Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   frameUniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Proxy",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	instanceAttributes := make([]wgpu.VertexAttribute, 6)
	for i := range instanceAttributes {
		instanceAttributes[i] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(i * 16),
			ShaderLocation: uint32(2 + i),
		}
	}

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Proxy Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 24,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
				{
					ArrayStride: instanceStride,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes:  instanceAttributes,
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			// Mirrored node transforms flip winding, so nothing is culled.
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create proxy pipeline: %w", err)
	}

	b.uniformBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Uniform Buffer",
		Size:  frameUniformStride * maxBatchesPerFrame,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	b.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Uniform Bind Group",
		Layout: b.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.uniformBuffer, Offset: 0, Size: frameUniformSize},
		},
	})
	if err != nil {
		return err
	}

	vertices := float32Bytes(unitBoxVertices())
	indices := unitBoxIndices()
	if b.vertexBuffer, err = b.createBuffer("Box Vertex Buffer", wgpu.BufferUsageVertex, vertices); err != nil {
		return err
	}
	if b.indexBuffer, err = b.createBuffer("Box Index Buffer", wgpu.BufferUsageIndex, uint32Bytes(indices)); err != nil {
		return err
	}
	b.indexCount = uint32(len(indices))

	return b.ensureInstanceCapacity(initialInstanceCapacity)
}

// createBuffer creates a buffer of the given usage and uploads data into it.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// ensureInstanceCapacity grows the instance buffer by doubling until it holds n instances.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) ensureInstanceCapacity(n int) error {
	if b.instanceBuffer != nil && n <= b.instanceCapacity {
		return nil
	}
	capacity := max(b.instanceCapacity, initialInstanceCapacity)
	for capacity < n {
		capacity *= 2
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Instance Buffer",
		Size:  uint64(capacity * instanceStride),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	if b.instanceBuffer != nil {
		b.instanceBuffer.Release()
	}
	b.instanceBuffer = buf
	b.instanceCapacity = capacity
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, acquiring another one
	// would fail with "Surface image is already acquired".
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	b.clear = clear
	b.batches = b.batches[:0]
	return nil
}

func (b *wgpuRendererBackendImpl) Submit(batch Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameSurface == nil || len(b.batches) == maxBatchesPerFrame {
		return
	}
	b.batches = append(b.batches, batch)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	total := 0
	for _, batch := range b.batches {
		total += len(batch.Instances)
	}
	if err := b.ensureInstanceCapacity(total); err != nil {
		b.releaseFrame()
		return
	}

	// Queue writes land before the command buffer below executes.
	uniforms := make([]byte, frameUniformStride*len(b.batches))
	var instances []GPUInstance
	for i := range b.batches {
		copy(uniforms[i*frameUniformStride:], b.batches[i].Frame.Marshal())
		instances = append(instances, b.batches[i].Instances...)
	}
	if len(uniforms) > 0 {
		b.queue.WriteBuffer(b.uniformBuffer, 0, uniforms)
	}
	if len(instances) > 0 {
		b.queue.WriteBuffer(b.instanceBuffer, 0, marshalInstances(instances))
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		b.releaseFrame()
		return
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(b.renderPassDescriptor())
	pass.SetPipeline(b.pipeline)
	pass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(b.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)

	offset := uint64(0)
	for i, batch := range b.batches {
		n := uint64(len(batch.Instances))
		if n == 0 {
			continue
		}
		pass.SetBindGroup(0, b.bindGroup, []uint32{uint32(i * frameUniformStride)})
		pass.SetVertexBuffer(1, b.instanceBuffer, offset*instanceStride, n*instanceStride)
		pass.DrawIndexed(b.indexCount, uint32(n), 0, 0, 0)
		offset += n
	}
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		b.releaseFrame()
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

// renderPassDescriptor builds the main pass for the acquired swapchain view.
// With MSAA the swapchain view is the resolve target, otherwise it is drawn to directly.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) renderPassDescriptor() *wgpu.RenderPassDescriptor {
	color := wgpu.RenderPassColorAttachment{
		View:    b.frameView,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(b.clear.R), G: float64(b.clear.G), B: float64(b.clear.B), A: 1.0,
		},
	}
	if b.sampleCount > 1 {
		color.View = b.msaaTextureView
		color.ResolveTarget = b.frameView
		color.StoreOp = wgpu.StoreOpDiscard
	}

	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrame()
}

// releaseFrame drops the acquired swapchain texture and view.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseFrame() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// releaseTargets drops the size-dependent MSAA and depth textures.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrame()
	b.releaseTargets()
	for _, buf := range []*wgpu.Buffer{b.instanceBuffer, b.vertexBuffer, b.indexBuffer, b.uniformBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	if b.bindGroup != nil {
		b.bindGroup.Release()
	}
	if b.bindGroupLayout != nil {
		b.bindGroupLayout.Release()
	}
	if b.pipeline != nil {
		b.pipeline.Release()
	}
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
