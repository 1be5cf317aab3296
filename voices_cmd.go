package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wptts/readaloud/internal/config"
	"github.com/wptts/readaloud/tts"
	"github.com/wptts/readaloud/tts/engines/espeak"
	"github.com/wptts/readaloud/tts/engines/mock"
)

var voicesCmd = &cobra.Command{
	Use:     "voices [QUERY]",
	Short:   "List the voices of the speech engine",
	Long:    paragraph(fmt.Sprintf("\n%s the voices of the configured engine, optionally fuzzy-filtered by name or language.", keyword("List"))),
	Example: paragraph("readaloud voices\nreadaloud voices german\nreadaloud voices --engine mock"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		name, err := config.LoadEngine(v)
		if err != nil {
			return err
		}
		settings, err := config.LoadSettings(v)
		if err != nil {
			return err
		}

		voices, err := engineVoices(cmd.Context(), name)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			voices = filterVoices(voices, args[0])
		}
		if len(voices) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), faint("No voices found."))
			return nil
		}

		configured := tts.ResolveVoice(voices, settings.VoiceName)
		for _, voice := range voices {
			var marks string
			if voice.Default {
				marks += " default"
			}
			if configured != nil && configured.Name == voice.Name {
				marks += " configured"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s%s\n", voice.Name, faint(voice.Language), keyword(marks))
		}
		return nil
	},
}

func engineVoices(ctx context.Context, name string) ([]tts.Voice, error) {
	switch name {
	case "mock":
		return mock.New(mock.DefaultOptions()).Voices(), nil
	case "piper":
		c, err := config.LoadPiper(viper.GetViper())
		if err != nil {
			return nil, err
		}
		return []tts.Voice{piperConfig(c).Voice()}, nil
	}

	bin, err := espeak.FindBinary()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return espeak.ListVoices(ctx, bin)
}

type voiceSource []tts.Voice

func (v voiceSource) String(i int) string { return v[i].Name + " " + v[i].Language }
func (v voiceSource) Len() int            { return len(v) }

// filterVoices returns the voices matching query, best match first.
func filterVoices(voices []tts.Voice, query string) []tts.Voice {
	matches := fuzzy.FindFrom(query, voiceSource(voices))
	out := make([]tts.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}
