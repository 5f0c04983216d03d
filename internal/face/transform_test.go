// internal/face/transform_test.go
package face

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var centered = RawFace{Left: 160, Top: 120, Width: 320, Height: 240, Score: 87}

func TestTransform_Orientation0(t *testing.T) {
	faces, err := Transform(NewMetadata([]RawFace{centered}), 640, 480, 0)
	require.NoError(t, err)
	require.Len(t, faces, 1)

	f := faces[0]
	assert.Equal(t, [4]int32{-500, -500, 500, 500}, f.Rect)
	assert.Equal(t, int32(87), f.Score)
	assert.Equal(t, int32(0), f.ID)
	assert.Equal(t, [2]int32{InvalidData, InvalidData}, f.LeftEye)
	assert.Equal(t, [2]int32{InvalidData, InvalidData}, f.RightEye)
	assert.Equal(t, [2]int32{InvalidData, InvalidData}, f.Mouth)
}

func TestTransform_Orientation180SwapsEdgesAndNegates(t *testing.T) {
	faces, err := Transform(NewMetadata([]RawFace{centered}), 640, 480, 180)
	require.NoError(t, err)
	require.Len(t, faces, 1)

	// right/bottom take what left/top would be at 0; extent runs negative
	assert.Equal(t, [4]int32{-1500, -1500, -500, -500}, faces[0].Rect)
}

func TestTransform_180MirrorsZeroForAnyRect(t *testing.T) {
	raws := []RawFace{
		{Left: 0, Top: 0, Width: 10, Height: 10},
		{Left: 1, Top: 2, Width: 3, Height: 4},
		{Left: 639, Top: 479, Width: 1, Height: 1},
		{Left: 100, Top: 333, Width: 77, Height: 91},
		{Left: 320, Top: 240, Width: 0, Height: 0},
	}
	for _, r := range raws {
		at0, err := Encode([]RawFace{r}, 640, 480, 0)
		require.NoError(t, err)
		at180, err := Encode([]RawFace{r}, 640, 480, 180)
		require.NoError(t, err)

		a, b := at0[0].Rect, at180[0].Rect
		assert.Equal(t, a[EdgeLeft], b[EdgeRight], "raw=%+v", r)
		assert.Equal(t, a[EdgeTop], b[EdgeBottom], "raw=%+v", r)

		// same extent up to one unit; each edge is truncated on its own
		assert.InDelta(t, a[EdgeRight]-a[EdgeLeft], b[EdgeRight]-b[EdgeLeft], 1, "raw=%+v", r)
		assert.InDelta(t, a[EdgeBottom]-a[EdgeTop], b[EdgeBottom]-b[EdgeTop], 1, "raw=%+v", r)
		assert.LessOrEqual(t, b[EdgeLeft], b[EdgeRight], "raw=%+v", r)
	}
}

func TestTransform_90And270PassThrough(t *testing.T) {
	at0, err := Encode([]RawFace{centered}, 640, 480, 0)
	require.NoError(t, err)

	for _, deg := range []int{90, 270, -90, 360, 1000} {
		got, err := Encode([]RawFace{centered}, 640, 480, deg)
		require.NoError(t, err)
		assert.Equal(t, at0, got, "orientation %d", deg)
	}
}

func TestTransform_TruncatesTowardZero(t *testing.T) {
	// 1/3*2000-1000 = -333.33..
	got, err := Encode([]RawFace{{Left: 1, Top: 2, Width: 1, Height: 1}}, 3, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(-333), got[0].Rect[EdgeLeft])
	assert.Equal(t, int32(333), got[0].Rect[EdgeTop])
	assert.Equal(t, int32(333), got[0].Rect[EdgeRight])
	assert.Equal(t, int32(999), got[0].Rect[EdgeBottom])
}

func TestTransform_ZeroFacesIsEmptyNotError(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {640, 480}, {4096, 2160}} {
		faces, err := Transform(NewMetadata(nil), dims[0], dims[1], 180)
		require.NoError(t, err)
		assert.NotNil(t, faces)
		assert.Empty(t, faces)
	}
}

func TestTransform_StructSizeMismatchAlwaysFails(t *testing.T) {
	contents := [][]RawFace{nil, {centered}, {centered, centered}}
	for _, faces := range contents {
		m := NewMetadata(faces)
		m.Detection.Size++
		got, err := Transform(m, 640, 480, 0)
		assert.ErrorIs(t, err, ErrStructSize)
		assert.Nil(t, got)

		m = NewMetadata(faces)
		m.PlatformSize = 0
		got, err = Transform(m, 640, 480, 0)
		assert.ErrorIs(t, err, ErrStructSize)
		assert.Nil(t, got)
	}
}

func TestTransform_MalformedInput(t *testing.T) {
	_, err := Transform(nil, 640, 480, 0)
	assert.ErrorIs(t, err, ErrNoMetadata)

	m := NewMetadata(nil)
	m.Detection = nil
	_, err = Transform(m, 640, 480, 0)
	assert.ErrorIs(t, err, ErrNoDetection)

	m = NewMetadata([]RawFace{centered})
	m.MetadataSize = 0
	_, err = Transform(m, 640, 480, 0)
	assert.ErrorIs(t, err, ErrMetadataSize)

	_, err = Transform(NewMetadata([]RawFace{centered}), 0, 480, 0)
	assert.ErrorIs(t, err, ErrPreviewSize)
}

func TestDecode_RoundTripThroughTransform(t *testing.T) {
	in := NewMetadata([]RawFace{centered, {Left: 0, Top: 0, Width: 64, Height: 48, Score: 12}})
	b, err := in.MarshalBinary()
	require.NoError(t, err)

	out, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	faces, err := Transform(out, 640, 480, 0)
	require.NoError(t, err)
	require.Len(t, faces, 2)
	assert.Equal(t, [4]int32{-1000, -1000, -800, -800}, faces[1].Rect)
}

func TestDecode_ShortBuffer(t *testing.T) {
	in := NewMetadata([]RawFace{centered})
	b, err := in.MarshalBinary()
	require.NoError(t, err)

	_, err = Decode(b[:len(b)-1])
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrNoMetadata)
}
