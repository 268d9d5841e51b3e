package imaging

import (
	"encoding/base64"
	"image"
)

// EncodedImage carries an image across the MCP boundary.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeBytes   int    `json:"size_bytes"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeForTransport encodes img with codec and wraps it as base64.
func EncodeForTransport(codec Codec, img image.Image, format Format, quality int) (*EncodedImage, error) {
	data, err := codec.Encode(img, format, quality)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return WrapEncoded(data, b.Dx(), b.Dy(), format), nil
}

// WrapEncoded wraps already-encoded bytes, such as CompressResult.Data.
func WrapEncoded(data []byte, width, height int, format Format) *EncodedImage {
	return &EncodedImage{
		Width:       width,
		Height:      height,
		SizeBytes:   len(data),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    format.MimeType(),
	}
}
