package inference

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankSortsDescendingAndTruncates(t *testing.T) {
	preds := []Prediction{
		{Label: "a", Probability: 0.1},
		{Label: "b", Probability: 0.4},
		{Label: "c", Probability: 0.3},
		{Label: "d", Probability: 0.2},
	}

	ranked := Rank(preds, 3)
	require.Equal(t, []string{"b", "c", "d"}, labels(ranked))
	require.Equal(t, "a", preds[0].Label, "input must not be reordered")
}

func TestRankStableOnTies(t *testing.T) {
	preds := []Prediction{
		{Label: "first", Probability: 0.25},
		{Label: "second", Probability: 0.25},
		{Label: "top", Probability: 0.5},
	}
	require.Equal(t, []string{"top", "first", "second"}, labels(Rank(preds, 3)))
}

func TestRankFewerThanK(t *testing.T) {
	preds := []Prediction{{Label: "x", Probability: 0.3}, {Label: "y", Probability: 0.7}}
	ranked := Rank(preds, 3)
	require.Len(t, ranked, 2)
	for i := 1; i < len(ranked); i++ {
		require.GreaterOrEqual(t, ranked[i-1].Probability, ranked[i].Probability)
	}
}

func TestNormalizeStretchesToSquare(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	for x := 0; x < 400; x++ {
		for y := 0; y < 100; y++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	dst := Normalize(src, 224)
	require.Equal(t, image.Rect(0, 0, 224, 224), dst.Bounds())
	r, _, _, a := dst.At(223, 223).RGBA()
	require.NotZero(t, a)
	require.NotZero(t, r)
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))

	img, format, err := Decode(&buf, 0)
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 3, img.Bounds().Dx())

	_, _, err = Decode(bytes.NewBufferString("not an image"), 0)
	require.Error(t, err)
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 10))))

	_, _, err := Decode(bytes.NewReader(buf.Bytes()), 32)
	require.ErrorIs(t, err, ErrFrameTooLarge)

	img, _, err := Decode(bytes.NewReader(buf.Bytes()), 40)
	require.NoError(t, err)
	require.Equal(t, 40, img.Bounds().Dx())
}

func TestDecodeRejectsHugeDeclaredDimensions(t *testing.T) {
	// Only the header matters: DecodeConfig stops before the pixel data.
	_, _, err := Decode(bytes.NewReader(pngHeader(12000, 12000)), 0)
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

// pngHeader builds a PNG signature plus IHDR chunk declaring an RGBA image of w x h.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func labels(preds []Prediction) []string {
	out := make([]string, 0, len(preds))
	for _, p := range preds {
		out = append(out, p.Label)
	}
	return out
}
