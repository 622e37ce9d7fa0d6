package render

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontRegular = mustFont(goregular.TTF)
	fontBold    = mustFont(gobold.TTF)
)

func mustFont(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic(err)
	}
	return f
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache hands out hinted faces by size so frames do not re-rasterize the
// font tables.
type faceCache struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[faceKey]font.Face)}
}

func (fc *faceCache) face(size float64, bold bool) font.Face {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	key := faceKey{size, bold}
	if f, ok := fc.faces[key]; ok {
		return f
	}
	src := fontRegular
	if bold {
		src = fontBold
	}
	f := truetype.NewFace(src, &truetype.Options{Size: size})
	fc.faces[key] = f
	return f
}
