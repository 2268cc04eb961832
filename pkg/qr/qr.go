package qr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/betonpro/tradelinkpro/pkg/storage"
	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// Generator renders contact strings into scannable PNG images stored
// through the upload store's collision-avoidance naming.
type Generator struct {
	store storage.FileStorage
}

func NewGenerator(store storage.FileStorage) *Generator {
	return &Generator{store: store}
}

// Generate encodes data and writes it under baseFilename (".png" is
// appended when the name has no extension). Empty data yields the
// empty marker and writes nothing. Repeated calls with the same base
// name produce additional numbered files; callers regenerating QR
// images are expected to tolerate or clean those up.
func (g *Generator) Generate(data, baseFilename string) (string, error) {
	if data == "" {
		return "", nil
	}

	png, err := qrcode.Encode(data, qrcode.Medium, imageSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr image: %w", err)
	}

	if !strings.Contains(baseFilename, ".") {
		baseFilename += ".png"
	}
	return g.store.Save(baseFilename, bytes.NewReader(png))
}
