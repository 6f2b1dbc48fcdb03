package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// Version is the fixed QR symbol version the provider app scans.
	Version = 6
	// defaultModulePixels is the PNG size of one module.
	defaultModulePixels = 5
)

// Renderer implements ports.QRRenderer with go-qrcode. Symbols use version
// 6, error correction level L and the standard four module quiet zone.
type Renderer struct {
	modulePixels int
}

// NewRenderer creates a Renderer. modulePixels <= 0 selects the default.
func NewRenderer(modulePixels int) *Renderer {
	if modulePixels <= 0 {
		modulePixels = defaultModulePixels
	}
	return &Renderer{modulePixels: modulePixels}
}

// PNG renders content as a PNG image.
func (r *Renderer) PNG(content string) ([]byte, error) {
	code, err := qrcode.NewWithForcedVersion(content, Version, qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("encoding qr: %w", err)
	}

	// A negative size is read as pixels per module.
	png, err := code.PNG(-r.modulePixels)
	if err != nil {
		return nil, fmt.Errorf("rendering qr png: %w", err)
	}
	return png, nil
}

// DataURI renders content as a base64 PNG data URI.
func (r *Renderer) DataURI(content string) (string, error) {
	png, err := r.PNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
