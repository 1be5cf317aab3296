package espeak

import "io"

// Output opens players on an audio device.
type Output interface {
	NewPlayer(r io.Reader) Player
}

// Player plays one stream of signed 16-bit little endian PCM.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	Err() error
}
