//go:build nocgo || !cgo

package espeak

import "errors"

// NewDeviceOutput is unavailable without cgo.
func NewDeviceOutput(sampleRate, channels int) (Output, error) {
	return nil, errors.New("audio not available in nocgo build")
}
