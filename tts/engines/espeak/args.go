package espeak

import (
	"strconv"

	"github.com/wptts/readaloud/tts"
)

// espeak parameter scales at a multiplier of 1.0.
const (
	BaseWordsPerMinute = 175
	BasePitch          = 50
	BaseAmplitude      = 100
)

// Args returns the command line that synthesizes u to WAV on stdout.
func Args(u *tts.Utterance) []string {
	args := []string{"--stdout"}

	if u.Voice != nil && u.Voice.Language != "" {
		args = append(args, "-v", u.Voice.Language)
	}

	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	args = append(args,
		"-s", strconv.Itoa(int(BaseWordsPerMinute*rate)),
		"-p", strconv.Itoa(clamp(int(BasePitch*u.Pitch), 0, 99)),
		"-a", strconv.Itoa(clamp(int(BaseAmplitude*u.Volume), 0, 200)),
		"--", u.Text,
	)
	return args
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
