//go:build headless

package main

// NewEbitenOutput is unavailable in headless builds; the terminal screen is
// used instead.
func NewEbitenOutput(video *TRS80Video, scale int) (VideoOutput, error) {
	return nil, &VideoError{Operation: "open", Details: "no window backend", Err: ErrNoWindow}
}
