// internal/face/transform.go

// Package face converts hardware face-detection rectangles into the
// normalized face coordinates consumers expect.
//
// Hardware reports rectangles in preview-buffer pixels with the face
// always upright: (left, top) is toward the subject's left eye and hair
// regardless of device rotation. Output is relative to the sensor, in a
// fixed space of [Left, Right] x [Top, Bottom] centered on zero. Only a
// device orientation of 180 degrees is corrected here; 90 and 270 pass
// through untouched and must be handled upstream if needed.
package face

import (
	"errors"
	"fmt"
)

// Normalized output space.
const (
	Left   = -1000
	Top    = -1000
	Right  = 1000
	Bottom = 1000

	// InvalidData marks landmarks the hardware does not report.
	InvalidData = -2000
)

// Rect edge positions inside Face.Rect.
const (
	EdgeLeft = iota
	EdgeTop
	EdgeRight
	EdgeBottom
)

// RawFace is one hardware rectangle in preview pixels.
type RawFace struct {
	Left   uint32
	Top    uint32
	Width  uint32
	Height uint32
	Score  uint32
}

// Face is one normalized result.
type Face struct {
	Rect     [4]int32 `json:"rect"` // left, top, right, bottom
	Score    int32    `json:"score"`
	ID       int32    `json:"id"` // no tracking: always 0
	LeftEye  [2]int32 `json:"left_eye"`
	RightEye [2]int32 `json:"right_eye"`
	Mouth    [2]int32 `json:"mouth"`
}

var (
	ErrNoMetadata   = errors.New("face: missing frame metadata")
	ErrNoDetection  = errors.New("face: missing face detection block")
	ErrStructSize   = errors.New("face: struct size mismatch")
	ErrMetadataSize = errors.New("face: non-positive metadata size")
	ErrPreviewSize  = errors.New("face: non-positive preview size")
)

// NormalizeOrientation maps values outside [0, 270] to 0.
func NormalizeOrientation(deg int) int {
	if deg < 0 || deg > 270 {
		return 0
	}
	return deg
}

// Transform validates the frame metadata and converts its faces.
// Zero faces yields an empty, non-nil slice. No partial result on error.
func Transform(meta *Metadata, previewWidth, previewHeight, orientation int) ([]Face, error) {
	if meta == nil {
		return nil, ErrNoMetadata
	}
	if meta.PlatformSize != PlatformStructSize {
		return nil, fmt.Errorf("%w: platform expected=%d received=%d",
			ErrStructSize, PlatformStructSize, meta.PlatformSize)
	}
	if meta.MetadataSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrMetadataSize, meta.MetadataSize)
	}
	if meta.Detection == nil {
		return nil, ErrNoDetection
	}
	if meta.Detection.Size != DetectionStructSize {
		return nil, fmt.Errorf("%w: detection expected=%d received=%d",
			ErrStructSize, DetectionStructSize, meta.Detection.Size)
	}
	return Encode(meta.Detection.Faces, previewWidth, previewHeight, orientation)
}

// Encode maps raw rectangles into the normalized space.
func Encode(raw []RawFace, previewWidth, previewHeight, orientation int) ([]Face, error) {
	if previewWidth <= 0 || previewHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrPreviewSize, previewWidth, previewHeight)
	}

	const (
		hRange = Right - Left
		vRange = Bottom - Top
	)

	mult := 1.0
	eLeft, eTop, eRight, eBottom := EdgeLeft, EdgeTop, EdgeRight, EdgeBottom
	if NormalizeOrientation(orientation) == 180 {
		mult = -1
		eLeft, eTop, eRight, eBottom = EdgeRight, EdgeBottom, EdgeLeft, EdgeTop
	}

	pw, ph := float64(previewWidth), float64(previewHeight)

	out := make([]Face, 0, len(raw))
	for _, r := range raw {
		var f Face

		f.Rect[eLeft] = int32(float64(r.Left)/pw*hRange - hRange/2)
		f.Rect[eTop] = int32(float64(r.Top)/ph*vRange - vRange/2)

		w := float64(r.Width) / pw * hRange * mult
		f.Rect[eRight] = int32(float64(f.Rect[eLeft]) + w)

		h := float64(r.Height) / ph * vRange * mult
		f.Rect[eBottom] = int32(float64(f.Rect[eTop]) + h)

		f.Score = int32(r.Score)
		f.ID = 0
		f.LeftEye = [2]int32{InvalidData, InvalidData}
		f.RightEye = [2]int32{InvalidData, InvalidData}
		f.Mouth = [2]int32{InvalidData, InvalidData}

		out = append(out, f)
	}
	return out, nil
}
