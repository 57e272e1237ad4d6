package trial

import (
	"math"
	"math/rand"
	"time"
)

// FloatSource yields uniform floats in [0, 1). *rand.Rand satisfies it;
// tests substitute fixed sources to pin the bomb position.
type FloatSource interface {
	Float64() float64
}

// NewSource returns a seeded float source. The same seed reproduces the
// same bomb draws, which is what batch runs use to stay replayable.
func NewSource(seed int64) FloatSource {
	return rand.New(rand.NewSource(seed))
}

func ambientSource() FloatSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// drawBombIndex maps a uniform float onto a 1-based box index. The clamp
// guards the f == 1.0 edge a non-conforming source could produce.
func drawBombIndex(f float64, boxCount int) int {
	idx := int(math.Floor(f*float64(boxCount))) + 1
	if idx > boxCount {
		idx = boxCount
	}
	if idx < 1 {
		idx = 1
	}
	return idx
}
