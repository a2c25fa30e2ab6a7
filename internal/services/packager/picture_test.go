package packager

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPictureBlockLayout(t *testing.T) {
	cover := makeJPEG(t, 40, 30)

	block := PictureBlock(cover, "image/jpeg", "Cover")

	next := func() uint32 {
		v := binary.BigEndian.Uint32(block[:4])
		block = block[4:]
		return v
	}
	str := func(n uint32) string {
		s := string(block[:n])
		block = block[n:]
		return s
	}

	assert.Equal(t, uint32(3), next(), "front cover")
	assert.Equal(t, "image/jpeg", str(next()))
	assert.Equal(t, "Cover", str(next()))
	assert.Equal(t, uint32(40), next())
	assert.Equal(t, uint32(30), next())
	assert.Equal(t, uint32(24), next())
	assert.Equal(t, uint32(0), next())
	size := next()
	assert.Equal(t, uint32(len(cover)), size)
	assert.Equal(t, cover, block)
}

func TestPictureBlockUndecodableCoverHasZeroDimensions(t *testing.T) {
	cover := []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'u', 'n', 'k'}

	block := PictureBlock(cover, "image/jpeg", "")

	// type, mime length, mime, description length
	offset := 4 + 4 + len("image/jpeg") + 4
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(block[offset:]), "width")
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(block[offset+4:]), "height")
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(block[offset+8:]), "depth")
	assert.Equal(t, uint32(len(cover)), binary.BigEndian.Uint32(block[offset+16:]))
	assert.Equal(t, cover, block[offset+20:])
}

func TestEncodedPictureBlock(t *testing.T) {
	cover := makeJPEG(t, 8, 8)

	encoded := EncodedPictureBlock(cover, "image/jpeg", "")

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(decoded), string(cover)))
}

func TestFFMetadata(t *testing.T) {
	content := FFMetadata(Tags{
		Title:  "Jutud; #1 = a\\b",
		Artist: "R2",
		Album:  "R2",
	})

	assert.Equal(t, ";FFMETADATA1\nARTIST=R2\nTITLE=Jutud\\; \\#1 \\= a\\\\b\n", content)
	assert.NotContains(t, content, "ALBUM")
}

func TestFFMetadataWithCover(t *testing.T) {
	cover := makeJPEG(t, 16, 16)

	content := FFMetadata(Tags{Title: "Huvitaja 2015-02-12", Artist: "R2", Cover: cover})

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[3], "METADATA_BLOCK_PICTURE="))

	value := strings.TrimPrefix(lines[3], "METADATA_BLOCK_PICTURE=")
	value = strings.ReplaceAll(value, `\=`, "=")
	block, err := base64.StdEncoding.DecodeString(value)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(block), string(cover)))
}

// recordingApplier keeps the ffmetadata it was asked to apply
type recordingApplier struct {
	path     string
	metadata string
}

func (r *recordingApplier) ApplyMetadata(_ context.Context, path, metadataFile string) error {
	data, err := os.ReadFile(metadataFile)
	if err != nil {
		return err
	}
	r.path, r.metadata = path, string(data)
	return nil
}

func TestVorbisWriterKeepsTagsWithUndecodableCover(t *testing.T) {
	applier := &recordingApplier{}
	w := &vorbisWriter{meta: applier, tempDir: t.TempDir()}
	cover := []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'u', 'n', 'k'}

	err := w.WriteTags(context.Background(), "/out/huvitaja-1.ogg", Tags{
		Title:  "Huvitaja 2015-02-12",
		Artist: "R2",
		Cover:  cover,
	})
	require.NoError(t, err)

	assert.Equal(t, "/out/huvitaja-1.ogg", applier.path)
	assert.Contains(t, applier.metadata, "ARTIST=R2\n")
	assert.Contains(t, applier.metadata, "TITLE=Huvitaja 2015-02-12\n")
	assert.Contains(t, applier.metadata, "METADATA_BLOCK_PICTURE=")
}
