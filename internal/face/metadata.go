// internal/face/metadata.go
package face

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Metadata block layout, big-endian 32-bit words:
//
//	0  platform struct size   (must equal PlatformStructSize)
//	1  metadata size          (bytes after the platform header, > 0)
//	2  detection struct size  (must equal DetectionStructSize)
//	3  face count
//	4+ five words per face: left, top, width, height, score
const (
	wordSize            = 4
	platformWords       = 2
	detectionWords      = 2
	faceWords           = 5
	PlatformStructSize  = platformWords * wordSize
	DetectionStructSize = detectionWords * wordSize

	// MaxFaces bounds a single frame's face list.
	MaxFaces = 35
)

// Metadata is the face metadata carried by one preview frame.
type Metadata struct {
	PlatformSize uint32
	MetadataSize int32
	Detection    *Detection
}

// Detection is the hardware face-detection block.
type Detection struct {
	Size  uint32
	Faces []RawFace
}

var ErrShortBuffer = errors.New("face: metadata buffer too short")

// Decode parses a metadata block. Struct sizes are carried through
// unchecked; Transform rejects mismatches.
func Decode(b []byte) (*Metadata, error) {
	if b == nil {
		return nil, ErrNoMetadata
	}
	if len(b) < (platformWords+detectionWords)*wordSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortBuffer, len(b))
	}

	word := func(i int) uint32 { return binary.BigEndian.Uint32(b[i*wordSize:]) }

	meta := &Metadata{
		PlatformSize: word(0),
		MetadataSize: int32(word(1)),
	}
	det := &Detection{Size: word(2)}
	count := int(word(3))
	if count > MaxFaces {
		return nil, fmt.Errorf("face: face count %d exceeds %d", count, MaxFaces)
	}

	need := (platformWords + detectionWords + count*faceWords) * wordSize
	if len(b) < need {
		return nil, fmt.Errorf("%w: %d faces need %d bytes, got %d", ErrShortBuffer, count, need, len(b))
	}

	det.Faces = make([]RawFace, count)
	for i := range det.Faces {
		base := platformWords + detectionWords + i*faceWords
		det.Faces[i] = RawFace{
			Left:   word(base),
			Top:    word(base + 1),
			Width:  word(base + 2),
			Height: word(base + 3),
			Score:  word(base + 4),
		}
	}
	meta.Detection = det
	return meta, nil
}

// MarshalBinary is the inverse of Decode; used by the simulator and tests.
func (m *Metadata) MarshalBinary() ([]byte, error) {
	if m == nil || m.Detection == nil {
		return nil, ErrNoDetection
	}
	n := len(m.Detection.Faces)
	b := make([]byte, (platformWords+detectionWords+n*faceWords)*wordSize)
	put := func(i int, v uint32) { binary.BigEndian.PutUint32(b[i*wordSize:], v) }

	put(0, m.PlatformSize)
	put(1, uint32(m.MetadataSize))
	put(2, m.Detection.Size)
	put(3, uint32(n))
	for i, f := range m.Detection.Faces {
		base := platformWords + detectionWords + i*faceWords
		put(base, f.Left)
		put(base+1, f.Top)
		put(base+2, f.Width)
		put(base+3, f.Height)
		put(base+4, f.Score)
	}
	return b, nil
}

// NewMetadata wraps faces in a well-formed block.
func NewMetadata(faces []RawFace) *Metadata {
	return &Metadata{
		PlatformSize: PlatformStructSize,
		MetadataSize: int32((detectionWords + len(faces)*faceWords) * wordSize),
		Detection: &Detection{
			Size:  DetectionStructSize,
			Faces: faces,
		},
	}
}
