package imageintake

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/apperr"
	"github.com/aanand-mishra/student-directory/internal/types"
)

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func decodeURI(t *testing.T, uri string) (string, image.Config) {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:"))
	meta, body, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	require.True(t, ok)
	require.True(t, strings.HasSuffix(meta, ";base64"))
	raw, err := base64.StdEncoding.DecodeString(body)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	return strings.TrimSuffix(meta, ";base64"), cfg
}

func recordPhases() (*[]Phase, func(Phase)) {
	var phases []Phase
	return &phases, func(p Phase) { phases = append(phases, p) }
}

func TestProcess_SmallFilePassesThrough(t *testing.T) {
	data := encodePNG(t, gradient(40, 30))
	phases, progress := recordPhases()

	res, err := New().Process(context.Background(), FromBytes("a.png", "image/png", data), progress)
	require.NoError(t, err)

	assert.Equal(t, EncodeDataURI("image/png", data), res.DataURI)
	assert.Equal(t, types.AvatarEmbedded, res.Kind)
	assert.False(t, res.Resampled)
	assert.Equal(t, []Phase{PhaseProcessing, PhaseEncoding}, *phases)
	assert.True(t, types.IsEmbedded(res.DataURI))
}

func TestProcess_LargeJPEGIsResampled(t *testing.T) {
	data := encodeJPEG(t, gradient(1600, 1200))
	// A 3 MB declared size is what triggers resampling, as with a browser file.
	f := File{
		Name:      "big.jpg",
		Size:      3 << 20,
		MediaType: "image/jpeg",
		Open:      func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
	phases, progress := recordPhases()

	res, err := New().Process(context.Background(), f, progress)
	require.NoError(t, err)

	assert.True(t, res.Resampled)
	assert.LessOrEqual(t, len(res.DataURI), MaxEncodedLen)
	assert.Equal(t, []Phase{PhaseProcessing, PhaseCompressing, PhaseEncoding}, *phases)

	mediaType, cfg := decodeURI(t, res.DataURI)
	assert.Equal(t, "image/jpeg", mediaType)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
}

func TestProcess_PortraitPNGBecomesJPEG(t *testing.T) {
	data := encodePNG(t, gradient(300, 900))

	res, err := New(WithResampleThreshold(1)).Process(context.Background(), FromBytes("p.png", "image/png", data), nil)
	require.NoError(t, err)

	mediaType, cfg := decodeURI(t, res.DataURI)
	assert.Equal(t, "image/jpeg", mediaType)
	assert.Equal(t, 266, cfg.Width)
	assert.Equal(t, 800, cfg.Height)
}

func TestProcess_RejectsSize(t *testing.T) {
	for _, size := range []int64{0, -1, MaxFileSize + 1} {
		f := File{Name: "x.png", Size: size, MediaType: "image/png"}
		_, err := New().Process(context.Background(), f, nil)

		var ie *Error
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, ReasonFileSize, ie.Reason)
		assert.Equal(t, "Image size should be less than 10MB", err.Error())
		assert.True(t, errors.Is(err, apperr.ErrImageProcessing))
	}
}

func TestProcess_RejectsMediaType(t *testing.T) {
	f := FromBytes("doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	_, err := New().Process(context.Background(), f, nil)

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ReasonMediaType, ie.Reason)
}

func TestProcess_RejectsTooLargeAfterEncoding(t *testing.T) {
	data := encodePNG(t, gradient(64, 64))
	_, err := New(WithMaxEncodedLen(100)).Process(context.Background(), FromBytes("a.png", "image/png", data), nil)

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ReasonEncodedSize, ie.Reason)
	assert.Contains(t, err.Error(), "use a URL instead")
}

func TestProcess_UndecodableImageFails(t *testing.T) {
	f := FromBytes("broken.jpg", "image/jpeg", []byte("definitely not a jpeg"))
	_, err := New(WithResampleThreshold(1)).Process(context.Background(), f, nil)

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, ReasonFailed, ie.Reason)
	assert.Equal(t, "Failed to process image. Please try another image.", err.Error())
	assert.Error(t, errors.Unwrap(err))
}

func TestProcess_ReadErrorFails(t *testing.T) {
	f := File{
		Name: "gone.png", Size: 10, MediaType: "image/png",
		Open: func() (io.ReadCloser, error) { return nil, os.ErrNotExist },
	}
	_, err := New().Process(context.Background(), f, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, apperr.ErrImageProcessing)
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := encodePNG(t, gradient(10, 10))

	_, err := New().Process(ctx, FromBytes("a.png", "image/png", data), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromPath_SniffsMediaType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.bin")
	data := encodePNG(t, gradient(8, 8))
	require.NoError(t, os.WriteFile(path, data, 0o644))

	f, err := FromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MediaType)
	assert.Equal(t, int64(len(data)), f.Size)

	res, err := New().Process(context.Background(), f, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.DataURI, "data:image/png;base64,"))
}

func TestFitWithin(t *testing.T) {
	tests := []struct{ w, h, wantW, wantH int }{
		{1600, 1200, 800, 600},
		{1200, 1600, 600, 800},
		{800, 800, 800, 800},
		{1000, 1000, 800, 800},
		{640, 480, 640, 480},
		{4000, 2, 800, 1},
	}
	for _, tt := range tests {
		w, h := FitWithin(tt.w, tt.h, 800)
		assert.Equal(t, tt.wantW, w, "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "%dx%d", tt.w, tt.h)
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "Compressing image...", PhaseCompressing.String())
}
