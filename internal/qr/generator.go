// Package qr renders QR code images for short links.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// imageSize is the rendered PNG edge length in pixels.
const imageSize = 512

// EncodePNG renders content as a PNG QR code with high error correction,
// matching what scanners expect from printed codes.
func EncodePNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.High, imageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
