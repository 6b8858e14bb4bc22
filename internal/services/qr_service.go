package services

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 300
	maxQRSize     = 1024
	minQRSize     = 64
)

type QRService struct{}

func NewQRService() *QRService {
	return &QRService{}
}

// PNG encodes content as a QR code image of size x size pixels.
func (s *QRService) PNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	size = min(max(size, minQRSize), maxQRSize)

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// DataURI returns the QR code as an inline PNG data URI.
func (s *QRService) DataURI(content string, size int) (string, error) {
	png, err := s.PNG(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
