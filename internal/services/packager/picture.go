package packager

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"image"
	"image/color"
	_ "image/jpeg" // register the decoder for DecodeConfig
)

// pictureTypeFrontCover is the ID3/FLAC picture type "Cover (front)".
const pictureTypeFrontCover = 3

// PictureBlock encodes cover as a FLAC METADATA_BLOCK_PICTURE body, the form
// Vorbis comments carry artwork in. Width, height and depth are left 0 when
// the image header cannot be decoded; readers treat them as unknown.
func PictureBlock(cover []byte, mimeType, description string) []byte {
	var width, height, depth uint32
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(cover)); err == nil {
		width, height, depth = uint32(cfg.Width), uint32(cfg.Height), 24
		if cfg.ColorModel == color.GrayModel {
			depth = 8
		}
	}

	var buf bytes.Buffer
	buf.Grow(len(cover) + len(mimeType) + len(description) + 32)
	writeUint32 := func(v uint32) {
		_ = binary.Write(&buf, binary.BigEndian, v)
	}

	writeUint32(pictureTypeFrontCover)
	writeUint32(uint32(len(mimeType)))
	buf.WriteString(mimeType)
	writeUint32(uint32(len(description)))
	buf.WriteString(description)
	writeUint32(width)
	writeUint32(height)
	writeUint32(depth)
	writeUint32(0) // colors, only used by indexed images
	writeUint32(uint32(len(cover)))
	buf.Write(cover)

	return buf.Bytes()
}

// EncodedPictureBlock is PictureBlock in standard base64
func EncodedPictureBlock(cover []byte, mimeType, description string) string {
	return base64.StdEncoding.EncodeToString(PictureBlock(cover, mimeType, description))
}
