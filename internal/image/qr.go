package imagepkg

import (
	"bytes"
	"image"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// Long payloads, such as a full deck list, drop to the lowest error
// correction level so they still fit in one code.
const longPayload = 1000

func recoveryLevel(text string) qrcode.RecoveryLevel {
	if len(text) > longPayload {
		return qrcode.Low
	}
	return qrcode.Medium
}

// GenerateQRPNG returns PNG bytes of a QR code for the given text.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if size < 64 {
		size = 64
	}
	if size > 2048 {
		size = 2048
	}
	return qrcode.Encode(text, recoveryLevel(text), size)
}

// GenerateQRImage returns an image.Image for further composition.
func GenerateQRImage(text string, size int) (image.Image, error) {
	b, err := GenerateQRPNG(text, size)
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(b))
}
