package packager

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/killallgit/r2get/pkg/ffmpeg"
)

// makeJPEG encodes a w×h test image
func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

// mp3Frames returns n silent MPEG-1 Layer III frames, 128 kbit/s at 44.1 kHz
func mp3Frames(n int) []byte {
	const frameSize = 417 // 144 * 128000 / 44100
	frame := make([]byte, frameSize)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x64})
	return bytes.Repeat(frame, n)
}

// fakeTranscoder writes canned bytes instead of running ffmpeg
type fakeTranscoder struct {
	output       []byte
	transcodeErr error
	calls        []ffmpeg.Profile
}

func (f *fakeTranscoder) Transcode(ctx context.Context, input, output string, profile ffmpeg.Profile) error {
	f.calls = append(f.calls, profile)
	if f.transcodeErr != nil {
		return f.transcodeErr
	}
	return os.WriteFile(output, f.output, 0o644)
}

func (f *fakeTranscoder) ApplyMetadata(ctx context.Context, path, metadataFile string) error {
	return errors.New("not supported by fake")
}

func (f *fakeTranscoder) GetMetadata(ctx context.Context, filePath string) (*ffmpeg.AudioMetadata, error) {
	return nil, errors.New("not supported by fake")
}
