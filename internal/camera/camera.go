// Package camera provides live frames from a capture device.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"photobooth/internal/config"
)

// ErrUnavailable is returned when the camera cannot be opened: the device is
// missing, access was refused, or opening timed out.
var ErrUnavailable = errors.New("camera unavailable")

// maxReadErrors is how many consecutive failed reads end the reader loop.
const maxReadErrors = 50

// Device reads frames from an opened capture device.
type Device interface {
	Read() (image.Image, error)
	Close() error
}

// Opener opens a capture device with the given settings.
type Opener func(settings config.Camera) (Device, error)

// Camera keeps the latest frame of a capture device.
type Camera struct {
	settings config.Camera
	open     Opener

	// lifecycle serializes Start and Stop so only one device is ever open.
	lifecycle sync.Mutex

	mu      sync.RWMutex
	device  Device
	frame   image.Image
	stopCh  chan struct{}
	doneCh  chan struct{}
	onFrame func()
	onLost  func(err error)
}

// New creates a camera backed by OpenCV.
func New(settings config.Camera) *Camera {
	return NewWithOpener(settings, OpenCV)
}

// NewWithOpener creates a camera that opens devices with open.
func NewWithOpener(settings config.Camera, open Opener) *Camera {
	return &Camera{settings: settings, open: open}
}

// OnFrame sets a callback invoked after each new frame.
// The callback is called from the reader goroutine.
func (c *Camera) OnFrame(callback func()) {
	c.mu.Lock()
	c.onFrame = callback
	c.mu.Unlock()
}

// OnLost sets a callback invoked when the reader gives up on a device that
// keeps failing. The camera is stopped by then.
func (c *Camera) OnLost(callback func(err error)) {
	c.mu.Lock()
	c.onLost = callback
	c.mu.Unlock()
}

type openResult struct {
	device Device
	err    error
}

// Start opens the device and begins reading frames. A running camera is
// restarted. Opening is bounded by the configured timeout; on failure the
// returned error wraps ErrUnavailable.
func (c *Camera) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.stop()

	ctx, cancel := context.WithTimeout(ctx, c.settings.OpenTimeout)
	defer cancel()

	ch := make(chan openResult, 1)
	go func() {
		d, err := c.open(c.settings)
		ch <- openResult{device: d, err: err}
	}()

	var res openResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		// Release the device if it opens after we gave up.
		go func() {
			if late := <-ch; late.err == nil && late.device != nil {
				late.device.Close()
			}
		}()
		return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
	if res.err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, res.err)
	}

	c.mu.Lock()
	c.device = res.device
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	stopCh, doneCh := c.stopCh, c.doneCh
	c.mu.Unlock()

	log.Printf("Camera: device %d opened", c.settings.Device)
	go c.readLoop(res.device, stopCh, doneCh)
	return nil
}

// Stop stops reading and releases the device. Stopping an idle camera does
// nothing.
func (c *Camera) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	c.stop()
}

func (c *Camera) stop() {
	c.mu.Lock()
	device, stopCh, doneCh := c.device, c.stopCh, c.doneCh
	c.device, c.stopCh, c.doneCh = nil, nil, nil
	c.frame = nil
	c.mu.Unlock()

	if device == nil {
		return
	}
	close(stopCh)
	<-doneCh
	if err := device.Close(); err != nil {
		log.Printf("Camera: close failed: %v", err)
	}
}

// Running reports whether a device is open.
func (c *Camera) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.device != nil
}

// Frame returns the latest frame.
func (c *Camera) Frame() (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame, c.frame != nil
}

func (c *Camera) readLoop(device Device, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	interval := time.Second / 30
	if c.settings.FPS > 0 {
		interval = time.Second / time.Duration(c.settings.FPS)
	}

	failures := 0
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		img, err := device.Read()
		if err != nil {
			failures++
			if failures >= maxReadErrors {
				log.Printf("Camera: giving up after %d failed reads: %v", failures, err)
				c.lost(device, err)
				return
			}
			select {
			case <-stopCh:
				return
			case <-time.After(interval):
			}
			continue
		}
		failures = 0

		c.mu.Lock()
		// A concurrent Stop may already have detached this device.
		if c.device != device {
			c.mu.Unlock()
			return
		}
		c.frame = img
		onFrame := c.onFrame
		c.mu.Unlock()

		if onFrame != nil {
			onFrame()
		}
	}
}

// lost detaches and closes a device the reader gave up on, unless a Stop or
// restart already replaced it.
func (c *Camera) lost(device Device, cause error) {
	c.mu.Lock()
	if c.device != device {
		c.mu.Unlock()
		return
	}
	c.device, c.stopCh, c.doneCh = nil, nil, nil
	c.frame = nil
	onLost := c.onLost
	c.mu.Unlock()

	if err := device.Close(); err != nil {
		log.Printf("Camera: close failed: %v", err)
	}
	if onLost != nil {
		onLost(fmt.Errorf("%w: %v", ErrUnavailable, cause))
	}
}
