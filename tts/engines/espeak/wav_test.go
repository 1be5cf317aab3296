package espeak

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestDecodeWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	p, err := DecodeWAV(wavBytes(22050, 1, pcm))
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if p.SampleRate != 22050 || p.Channels != 1 || p.Bits != 16 {
		t.Errorf("unexpected format %+v", p)
	}
	if string(p.Data) != string(pcm) {
		t.Errorf("unexpected data %v", p.Data)
	}
	if err := p.Check(SampleRate, Channels); err != nil {
		t.Errorf("Check failed: %v", err)
	}
}

func TestDecodeWAVStreamingHeader(t *testing.T) {
	b := wavBytes(22050, 1, []byte{1, 2, 3, 4, 5})
	// streamed output carries a placeholder length
	binary.LittleEndian.PutUint32(b[40:44], 0x7fffffff)

	p, err := DecodeWAV(b)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	// odd trailing byte is dropped to keep whole samples
	if len(p.Data) != 4 {
		t.Errorf("expected 4 bytes of data, got %d", len(p.Data))
	}
}

func TestDecodeWAVErrors(t *testing.T) {
	noData := wavBytes(22050, 1, nil)[:36]

	tests := map[string][]byte{
		"empty":    nil,
		"not riff": []byte("RIFX0000WAVE"),
		"no data":  noData,
		"not pcm":  func() []byte { b := wavBytes(22050, 1, []byte{0, 0}); b[20] = 3; return b }(),
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeWAV(in); !errors.Is(err, ErrInvalidWAV) {
				t.Errorf("expected ErrInvalidWAV, got %v", err)
			}
		})
	}
}

func TestCheckMismatch(t *testing.T) {
	p := PCM{SampleRate: 44100, Channels: 2, Bits: 16}
	if err := p.Check(SampleRate, Channels); !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("expected ErrInvalidWAV, got %v", err)
	}
}
