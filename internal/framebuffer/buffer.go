// Package framebuffer holds the bounded FIFO of recent analysed frames
// that retroactive snapshot selection rescans.
package framebuffer

import (
	"image"

	"github.com/banshee-data/serve.report/internal/features"
	"github.com/banshee-data/serve.report/internal/pose"
)

// Thumbnail is the renderable reference kept with each sample. Image may
// be nil when frames are replayed without pixels.
type Thumbnail struct {
	FrameIndex int // scan step the image was captured at
	Image      image.Image
}

// Sample is one analysed frame.
type Sample struct {
	Index    int     // sequence number among detected frames
	Time     float64 // seconds
	Pose     *pose.Frame
	Thumb    Thumbnail
	Features features.Features
}

// Buffer is a fixed-capacity ring of samples. Adding to a full buffer
// evicts the oldest sample.
type Buffer struct {
	samples  []Sample
	capacity int
	head     int // next write position
	size     int
}

// New creates a buffer with the specified capacity.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 80
	}
	return &Buffer{
		samples:  make([]Sample, capacity),
		capacity: capacity,
	}
}

// Add stores s, overwriting the oldest sample if at capacity. It returns
// the evicted sample and true when an eviction happened.
func (b *Buffer) Add(s Sample) (Sample, bool) {
	var evicted Sample
	full := b.size == b.capacity
	if full {
		evicted = b.samples[b.head]
	}
	b.samples[b.head] = s
	b.head = (b.head + 1) % b.capacity
	if !full {
		b.size++
	}
	return evicted, full
}

// Len returns the number of samples stored.
func (b *Buffer) Len() int {
	return b.size
}

// Capacity returns the maximum number of samples.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// at returns the i-th sample counting from the oldest.
func (b *Buffer) at(i int) *Sample {
	idx := (b.head - b.size + i + b.capacity) % b.capacity
	return &b.samples[idx]
}

// Oldest returns the oldest sample, or nil when empty.
func (b *Buffer) Oldest() *Sample {
	if b.size == 0 {
		return nil
	}
	return b.at(0)
}

// Previous returns the sample n steps back from the most recent.
// Previous(1) is the newest. Returns nil if it doesn't exist.
func (b *Buffer) Previous(n int) *Sample {
	if n < 1 || n > b.size {
		return nil
	}
	return b.at(b.size - n)
}

// Scan calls fn for each sample from oldest to newest until fn returns
// false. Samples must not be retained or modified.
func (b *Buffer) Scan(fn func(s *Sample) bool) {
	for i := 0; i < b.size; i++ {
		if !fn(b.at(i)) {
			return
		}
	}
}

// Samples returns a copy of all samples from oldest to newest.
func (b *Buffer) Samples() []Sample {
	if b.size == 0 {
		return nil
	}
	out := make([]Sample, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = *b.at(i)
	}
	return out
}
