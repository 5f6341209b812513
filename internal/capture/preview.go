package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Preview holds the latest frame as JPEG for the preview stream. Frames are only
// encoded while at least one watcher is registered.
type Preview struct {
	mu       sync.Mutex
	jpeg     []byte
	seq      uint64
	watchers int
}

// Watching reports whether anyone is watching.
func (p *Preview) Watching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watchers > 0
}

// Watch registers a watcher. The returned func unregisters it and may be called once.
func (p *Preview) Watch() func() {
	p.mu.Lock()
	p.watchers++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.watchers--
			if p.watchers == 0 {
				p.jpeg = nil
			}
			p.mu.Unlock()
		})
	}
}

// Update encodes frame when someone is watching.
func (p *Preview) Update(frame *gocv.Mat) error {
	if frame == nil || !p.Watching() {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	p.Store(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// Store replaces the latest frame with an already encoded JPEG.
func (p *Preview) Store(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jpeg = jpeg
	p.seq++
}

// Latest returns the latest JPEG and its sequence number, which changes on every
// Store.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg, p.seq
}
