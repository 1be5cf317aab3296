//go:build cgo && !nocgo

package espeak

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// the audio device can only be opened once per process
var (
	deviceOnce sync.Once
	device     *oto.Context
	deviceErr  error
)

type otoOutput struct {
	ctx *oto.Context
}

// NewDeviceOutput opens the system audio device.
func NewDeviceOutput(sampleRate, channels int) (Output, error) {
	deviceOnce.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		if runtime.GOOS == "darwin" {
			opts.BufferSize = 100 * time.Millisecond
		}

		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			deviceErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		device = ctx
	})
	if deviceErr != nil {
		return nil, deviceErr
	}
	return otoOutput{ctx: device}, nil
}

func (o otoOutput) NewPlayer(r io.Reader) Player {
	return o.ctx.NewPlayer(r)
}
