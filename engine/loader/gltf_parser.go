package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorOutOfRange = errors.New("accessor reads past the end of its buffer")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser loads a glTF/GLB document, resolves its buffers and reads typed accessor data.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file from the given path.
	// GLB is detected by extension or by the magic number.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(path string) error

	// ParseReader parses a glTF document from a reader.
	// External buffers are resolved relative to baseDir.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//   - baseDir: directory for relative URIs, may be empty
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader, isGLB bool, baseDir string) error

	// Document returns the parsed document, or nil before a successful parse.
	Document() *gltfDocument

	// BaseDir returns the directory used to resolve relative URIs.
	BaseDir() string

	// ReadVec3Accessor reads a VEC3 FLOAT accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - [][3]float32: one entry per element
	//   - error: error if the accessor is missing, of another type or out of range
	ReadVec3Accessor(accessorIndex int) ([][3]float32, error)

	// ImageBytes returns the encoded bytes of an embedded image, or the resolved path of an external one.
	//
	// Parameters:
	//   - imageIndex: the index of the image
	//
	// Returns:
	//   - []byte: encoded image bytes for embedded images
	//   - string: file path for external images
	//   - error: error if the image cannot be resolved
	ImageBytes(imageIndex int) ([]byte, string, error)
}

var _ gltfParser = &gltfParserImpl{}

func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Parse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	p.baseDir = filepath.Dir(path)

	isGLB := strings.EqualFold(filepath.Ext(path), ".glb") ||
		(len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic)
	return p.parse(data, isGLB)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool, baseDir string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	p.baseDir = baseDir
	return p.parse(data, isGLB)
}

func (p *gltfParserImpl) parse(data []byte, isGLB bool) error {
	jsonData := data
	if isGLB {
		var err error
		jsonData, p.glbBinaryChunk, err = splitGLB(data)
		if err != nil {
			return err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// splitGLB returns the JSON and BIN chunks of a binary glTF container.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func splitGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	if len(data) < 12 {
		return nil, nil, errors.New("GLB file too small")
	}

	r := bytes.NewReader(data)
	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return nil, nil, errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return nil, nil, errInvalidGLBVersion
	}

	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		if int64(chunk.ChunkLength) > int64(r.Len()) {
			return nil, nil, fmt.Errorf("GLB chunk of %d bytes exceeds file size", chunk.ChunkLength)
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonChunk = body
		case gltfGLBChunkBIN:
			if binChunk == nil {
				binChunk = body
			}
		}
	}

	if jsonChunk == nil {
		return nil, nil, errMissingJSONChunk
	}
	return jsonChunk, binChunk, nil
}

// loadBuffers resolves every buffer from a data URI, an external file or the GLB binary chunk.
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		default:
			data, err := p.loadURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

// loadURI loads bytes from a base64 data URI or a file relative to the document.
func (p *gltfParserImpl) loadURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}

	data, err := os.ReadFile(filepath.Join(p.baseDir, uri))
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", uri, err)
	}
	return data, nil
}

// decodeDataURI decodes "data:[<mediatype>];base64,<data>".
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errInvalidBufferURI
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}

	acc := &p.document.Accessors[accessorIndex]
	if acc.Type != gltfAccessorTypeVec3 || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor is not VEC3 FLOAT: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}
	if acc.BufferView == nil {
		// A sparse-only or zero-filled accessor.
		return make([][3]float32, acc.Count), nil
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, fmt.Errorf("bufferView %d out of range", *acc.BufferView)
	}

	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	data := p.document.Buffers[bv.Buffer].Data

	const elementSize = 12
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && start+(acc.Count-1)*stride+elementSize > len(data) {
		return nil, errAccessorOutOfRange
	}

	out := make([][3]float32, acc.Count)
	for i := range out {
		off := start + i*stride
		for c := 0; c < 3; c++ {
			bits := binary.LittleEndian.Uint32(data[off+c*4:])
			out[i][c] = math.Float32frombits(bits)
		}
	}
	return out, nil
}

func (p *gltfParserImpl) ImageBytes(imageIndex int) ([]byte, string, error) {
	if p.document == nil || imageIndex < 0 || imageIndex >= len(p.document.Images) {
		return nil, "", fmt.Errorf("image index %d out of range", imageIndex)
	}
	img := p.document.Images[imageIndex]

	switch {
	case img.BufferView != nil:
		idx := *img.BufferView
		if idx < 0 || idx >= len(p.document.BufferViews) {
			return nil, "", fmt.Errorf("image %d: bufferView %d out of range", imageIndex, idx)
		}
		bv := p.document.BufferViews[idx]
		data := p.document.Buffers[bv.Buffer].Data
		if bv.ByteOffset+bv.ByteLength > len(data) {
			return nil, "", fmt.Errorf("image %d: %w", imageIndex, errBufferSizeMismatch)
		}
		return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], "", nil
	case strings.HasPrefix(img.URI, "data:"):
		data, err := decodeDataURI(img.URI)
		return data, "", err
	case img.URI != "":
		return nil, filepath.Join(p.baseDir, img.URI), nil
	default:
		return nil, "", fmt.Errorf("image %d has neither bufferView nor URI", imageIndex)
	}
}
