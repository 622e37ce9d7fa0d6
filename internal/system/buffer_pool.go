package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует кадровые буферы *image.RGBA, чтобы горячие циклы
// рендеринга (превью, экспорт) не нагружали GC восьмимегабайтными
// аллокациями на каждый кадр.
type ImagePool struct {
	mu    sync.Mutex
	pools map[image.Point]*sync.Pool
}

var globalPool = &ImagePool{
	pools: make(map[image.Point]*sync.Pool),
}

// GetImage возвращает буфер нужного размера из пула или создаёт новый.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает буфер в пул. Вызывающий обязан больше не трогать его.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.Size()
	p.mu.Lock()
	pool, ok := p.pools[key]
	if !ok {
		pool = &sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(image.Rectangle{Max: key})
			},
		}
		p.pools[key] = pool
	}
	p.mu.Unlock()

	return pool.Get().(*image.RGBA)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.Lock()
	pool, ok := p.pools[img.Rect.Size()]
	p.mu.Unlock()
	if ok {
		pool.Put(img)
	}
}
