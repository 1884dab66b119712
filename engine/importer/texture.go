package importer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/crpg/engine/assets"
	"github.com/spaghettifunk/crpg/engine/core"
	"github.com/spaghettifunk/crpg/engine/strid"
)

// loadImage decodes the image at path. PNG and JPEG go through the
// standard registry; TGA and BMP need their own decoders.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		core.LogError("failed to open image '%s': %s", path, err.Error())
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		return tga.Decode(f)
	case ".bmp":
		return bmp.Decode(f)
	default:
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image '%s': %w", path, err)
		}
		return img, nil
	}
}

// textureFromImage flattens img into RGBA8 samples. Texture dimensions
// are stored as uint16 in the packed format.
func textureFromImage(db *strid.DB, name string, img image.Image) (assets.TextureData, []byte, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > 0xFFFF || height > 0xFFFF {
		return assets.TextureData{}, nil, fmt.Errorf("texture '%s' is %dx%d, which won't fit the format's uint16 dimensions", name, width, height)
	}

	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}

	tex := assets.TextureData{
		ID:         assets.TextureID(db.GetID(name)),
		Width:      uint16(width),
		Height:     uint16(height),
		Components: 4,
	}
	return tex, rgba.Pix, nil
}

// WriteTextureFileFromImages decodes every image and packs them into
// one texture file at outPath, assigning sample offsets in argument
// order. Texture names, and so their interned ids, come from the file
// name without extension.
func WriteTextureFileFromImages(db *strid.DB, outPath string, imagePaths []string) error {
	textures := make([]assets.TextureData, 0, len(imagePaths))
	var samples []byte

	for _, path := range imagePaths {
		img, err := loadImage(path)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		tex, pix, err := textureFromImage(db, name, img)
		if err != nil {
			return err
		}

		tex.Offset = uint32(len(samples))
		samples = append(samples, pix...)
		textures = append(textures, tex)
	}

	return assets.WriteTextureFile(outPath, textures, samples)
}
