package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// soundCache stores pre-rendered unity-gain buffers
type soundCache struct {
	mu    sync.RWMutex
	store [soundTypeCount]*beep.Buffer
}

func newSoundCache() *soundCache {
	return &soundCache{}
}

// get returns cached buffer or renders on demand
func (c *soundCache) get(st SoundType) *beep.Buffer {
	if st < 0 || int(st) >= int(soundTypeCount) {
		return nil
	}

	c.mu.RLock()
	if buf := c.store[st]; buf != nil {
		c.mu.RUnlock()
		return buf
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if buf := c.store[st]; buf != nil {
		return buf
	}

	buf := beep.NewBuffer(format)
	buf.Append(generateSound(st))
	c.store[st] = buf
	return buf
}

// preload renders the fusion chimes, the most frequent sounds
func (c *soundCache) preload() {
	c.get(SoundFusionDT)
	c.get(SoundFusionDD)
	c.get(SoundFusionDHe3)
}
