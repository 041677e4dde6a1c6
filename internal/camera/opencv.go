package camera

import (
	"errors"
	"fmt"
	"image"

	"photobooth/internal/config"

	"gocv.io/x/gocv"
)

var errEmptyFrame = errors.New("empty frame")

// cvDevice reads frames through an OpenCV VideoCapture.
type cvDevice struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// OpenCV opens the configured device through OpenCV.
func OpenCV(settings config.Camera) (Device, error) {
	capture, err := gocv.OpenVideoCapture(settings.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %d: %w", settings.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("device %d did not open", settings.Device)
	}

	if settings.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(settings.Width))
	}
	if settings.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(settings.Height))
	}
	if settings.FPS > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(settings.FPS))
	}

	return &cvDevice{capture: capture, mat: gocv.NewMat()}, nil
}

// Read grabs the next frame and converts it to an image.
func (d *cvDevice) Read() (image.Image, error) {
	if ok := d.capture.Read(&d.mat); !ok {
		return nil, fmt.Errorf("read failed")
	}
	if d.mat.Empty() {
		return nil, errEmptyFrame
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

// Close releases the Mat and the device.
func (d *cvDevice) Close() error {
	d.mat.Close()
	return d.capture.Close()
}
