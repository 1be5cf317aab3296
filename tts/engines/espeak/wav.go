package espeak

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Output format of espeak-ng.
const (
	SampleRate = 22050
	Channels   = 1
)

// ErrInvalidWAV is returned for data that is not 16-bit PCM WAV.
var ErrInvalidWAV = errors.New("invalid wav data")

// PCM is decoded WAV audio.
type PCM struct {
	SampleRate int
	Channels   int
	Bits       int
	Data       []byte
}

// Check verifies the audio can be played by an output opened with the given
// format.
func (p PCM) Check(sampleRate, channels int) error {
	if p.SampleRate != sampleRate || p.Channels != channels || p.Bits != 16 {
		return fmt.Errorf("%w: got %d Hz, %d channels, %d bits; want %d Hz, %d channels, 16 bits",
			ErrInvalidWAV, p.SampleRate, p.Channels, p.Bits, sampleRate, channels)
	}
	return nil
}

// DecodeWAV extracts the PCM samples of a RIFF/WAVE file. espeak writes the
// header before it knows the length when streaming to stdout, so chunk sizes
// past the end of the data are truncated.
func DecodeWAV(b []byte) (PCM, error) {
	var p PCM
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return p, fmt.Errorf("%w: missing RIFF header", ErrInvalidWAV)
	}

	haveFmt := false
	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		pos += 8
		end := pos + size
		if size < 0 || end > len(b) || end < pos {
			end = len(b)
		}

		switch id {
		case "fmt ":
			if end-pos < 16 {
				return p, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			if format := binary.LittleEndian.Uint16(b[pos : pos+2]); format != 1 {
				return p, fmt.Errorf("%w: unsupported format %d", ErrInvalidWAV, format)
			}
			p.Channels = int(binary.LittleEndian.Uint16(b[pos+2 : pos+4]))
			p.SampleRate = int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
			p.Bits = int(binary.LittleEndian.Uint16(b[pos+14 : pos+16]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return p, fmt.Errorf("%w: data before fmt chunk", ErrInvalidWAV)
			}
			data := b[pos:end]
			if frame := p.Channels * p.Bits / 8; frame > 0 {
				data = data[:len(data)-len(data)%frame]
			}
			p.Data = data
			return p, nil
		}

		// chunks are word aligned
		pos = end + size%2
	}
	return p, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
}
