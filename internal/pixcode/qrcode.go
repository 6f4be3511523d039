package pixcode

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCodePNG renders the payload as a PNG at medium error correction, the
// level banking apps reliably scan from screens.
func QRCodePNG(payload string, size int) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, size)
}

// QRCodeBase64 is the wire form handed to UI consumers.
func QRCodeBase64(payload string, size int) (string, error) {
	png, err := QRCodePNG(payload, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
