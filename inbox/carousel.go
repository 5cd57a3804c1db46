package inbox

import (
	"context"
	"slices"
	"sync"
	"time"
)

// AutoplayDelay is the home carousel's default slide interval.
const AutoplayDelay = 3 * time.Second

// Carousel is a list of slides with a current position. Manual navigation stops
// at either end; autoplay wraps from the last slide back to the first.
type Carousel struct {
	mu     sync.Mutex
	slides []Message
	index  int
}

// SetSlides replaces the slides and rewinds to the first one.
func (c *Carousel) SetSlides(slides []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slides = slices.Clone(slides)
	c.index = 0
}

func (c *Carousel) Slides() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.slides)
}

func (c *Carousel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slides)
}

func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current returns the visible slide; ok is false when there are no slides.
func (c *Carousel) Current() (m Message, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.slides) == 0 {
		return Message{}, false
	}
	return c.slides[c.index], true
}

func (c *Carousel) CanNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index < len(c.slides)-1
}

func (c *Carousel) CanPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index > 0
}

// Next moves one slide forward and reports whether it moved.
func (c *Carousel) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index >= len(c.slides)-1 {
		return false
	}
	c.index++
	return true
}

// Prev moves one slide back and reports whether it moved.
func (c *Carousel) Prev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == 0 {
		return false
	}
	c.index--
	return true
}

// advance is one autoplay step.
func (c *Carousel) advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.slides) == 0 {
		return
	}
	c.index = (c.index + 1) % len(c.slides)
}

// Autoplay advances every delay until ctx is done. tick, if non-nil, is called
// after each step with the new index.
func (c *Carousel) Autoplay(ctx context.Context, delay time.Duration, tick func(int)) {
	if delay <= 0 {
		delay = AutoplayDelay
	}
	t := time.NewTicker(delay)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			c.advance()
			if tick != nil {
				tick(c.Index())
			}
		}
	}
}
