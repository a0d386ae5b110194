package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// ProxyShaderSource is the WGSL program used to draw mesh nodes as lit boxes.
//
//go:embed assets/proxy.wgsl
var ProxyShaderSource string

// MaxFrameLights is the number of lights the frame uniform carries. Extra lights are ignored.
const MaxFrameLights = 4

// frameUniformSize is the std140 size of the WGSL Frame struct.
const frameUniformSize = 64 + 16 + 16 + 16 + MaxFrameLights*32

// frameUniformStride is the dynamic-offset stride between per-scene uniforms.
// WebGPU's default minUniformBufferOffsetAlignment is 256.
const frameUniformStride = 256

// instanceStride is the byte size of one GPUInstance.
const instanceStride = 96

// GPULight is the GPU-aligned representation of one light in the frame uniform.
type GPULight struct {
	Direction [4]float32 // offset  0: normalized direction the light travels, w unused
	Color     [4]float32 // offset 16: rgb radiance, w unused
}

// GPUFrameUniform matches the WGSL Frame struct.
// Size: 240 bytes.
type GPUFrameUniform struct {
	ViewProjection [16]float32 // offset   0: column-major view-projection
	Eye            [4]float32  // offset  64: camera position, w unused
	FogColor       [4]float32  // offset  80: rgb fog color, w = fog near
	FogParams      [4]float32  // offset  96: x = fog far, y = enabled flag, z = light count
	Lights         [MaxFrameLights]GPULight
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: frameUniformSize bytes
func (g *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, frameUniformSize)
	off := putFloats(buf, 0, g.ViewProjection[:])
	off = putFloats(buf, off, g.Eye[:])
	off = putFloats(buf, off, g.FogColor[:])
	off = putFloats(buf, off, g.FogParams[:])
	for _, l := range g.Lights {
		off = putFloats(buf, off, l.Direction[:])
		off = putFloats(buf, off, l.Color[:])
	}
	return buf
}

// GPUInstance is the per-instance vertex data of one proxy box.
// Size: 96 bytes.
type GPUInstance struct {
	Model    [16]float32 // offset  0: column-major model matrix
	Color    [4]float32  // offset 64: rgba base color
	Emissive [4]float32  // offset 80: rgb emissive, w unused
}

// Marshal serializes the instance into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: instanceStride bytes
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, instanceStride)
	g.marshalInto(buf)
	return buf
}

func (g *GPUInstance) marshalInto(buf []byte) {
	off := putFloats(buf, 0, g.Model[:])
	off = putFloats(buf, off, g.Color[:])
	putFloats(buf, off, g.Emissive[:])
}

// marshalInstances packs instances back to back.
func marshalInstances(instances []GPUInstance) []byte {
	buf := make([]byte, len(instances)*instanceStride)
	for i := range instances {
		instances[i].marshalInto(buf[i*instanceStride:])
	}
	return buf
}

func putFloats(buf []byte, off int, values []float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	return off
}

// unitBoxVertices returns a unit cube centered on the origin as interleaved position and normal,
// four vertices per face so each face gets a flat normal.
func unitBoxVertices() []float32 {
	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	faces := []face{
		{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
	}

	out := make([]float32, 0, 6*4*6)
	for _, f := range faces {
		for _, c := range f.corners {
			out = append(out, c[0], c[1], c[2], f.normal[0], f.normal[1], f.normal[2])
		}
	}
	return out
}

// unitBoxIndices returns two counter-clockwise triangles per face of unitBoxVertices.
func unitBoxIndices() []uint32 {
	out := make([]uint32, 0, 36)
	for f := uint32(0); f < 6; f++ {
		b := f * 4
		out = append(out, b, b+1, b+2, b, b+2, b+3)
	}
	return out
}

func float32Bytes(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	putFloats(buf, 0, values)
	return buf
}

func uint32Bytes(values []uint32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
