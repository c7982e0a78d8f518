package utils

import (
	"image/color"
	"math/rand"
	"sync"

	"github.com/Pallinder/go-randomdata"
)

var randomdataLock sync.Mutex

// BrushColorGenerator gives brushes random bluish colours. The sequence only
// depends on the seed.
type BrushColorGenerator struct {
	rng *rand.Rand
}

func NewBrushColorGenerator(seed int64) *BrushColorGenerator {
	return &BrushColorGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *BrushColorGenerator) Next() color.RGBA {
	randomdataLock.Lock()
	defer randomdataLock.Unlock()

	randomdata.CustomRand(g.rng)
	return color.RGBA{
		R: 0,
		G: uint8(randomdata.Number(100, 180)),
		B: uint8(randomdata.Number(200, 256)),
		A: 255,
	}
}
