package espeak

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/wptts/readaloud/tts"
)

// DefaultLanguage marks the voice reported as default.
const DefaultLanguage = "en"

// ParseVoices reads the table printed by "espeak-ng --voices":
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func ParseVoices(out []byte) []tts.Voice {
	var voices []tts.Voice

	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		lang, name := fields[1], fields[3]
		voices = append(voices, tts.Voice{
			Name:     strings.ReplaceAll(name, "_", " "),
			Language: lang,
			Default:  lang == DefaultLanguage,
		})
	}
	return voices
}
