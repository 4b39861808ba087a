// Package video provides the frame source for the monitor loop.
package video

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Source wraps an OpenCV capture over a file, device, or stream URL.
// End of stream is not an error; the caller decides between rewinding
// and terminating.
type Source struct {
	cap  *gocv.VideoCapture
	path string
}

// Open opens the named video source. An unopenable source is a fatal
// startup error for the callers.
func Open(path string) (*Source, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video source %s: %w", path, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("open video source %s: not opened", path)
	}
	return &Source{cap: cap, path: path}, nil
}

// Read reads the next frame into img. A false return means end of
// stream (or a decode hiccup); the frame in img is not valid then.
func (s *Source) Read(img *gocv.Mat) bool {
	return s.cap.Read(img) && !img.Empty()
}

// Rewind seeks back to the first frame, looping the stream.
func (s *Source) Rewind() {
	s.cap.Set(gocv.VideoCapturePosFrames, 0)
}

// Path returns the source path, for log lines.
func (s *Source) Path() string {
	return s.path
}

// Close releases the capture.
func (s *Source) Close() error {
	return s.cap.Close()
}
