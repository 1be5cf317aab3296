package config

import "testing"

func TestLookupBrand(t *testing.T) {
	tests := []struct {
		slug      string
		namespace string
		option    string
		class     string
		code      string
		wantErr   bool
	}{
		{"", "wp-tts/v1", "wp_tts_settings", "wp-tts-player", "wp_tts_post_not_found", false},
		{"wp-tts", "wp-tts/v1", "wp_tts_settings", "wp-tts-player", "wp_tts_post_not_found", false},
		{"WPSpeech", "wpspeech/v1", "wpspeech_settings", "wpspeech-player", "wpspeech_post_not_found", false},
		{"other", "", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			b, err := LookupBrand(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LookupBrand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if b.Namespace != tt.namespace || b.OptionKey != tt.option {
				t.Errorf("unexpected brand %+v", b)
			}
			if b.PlayerClass() != tt.class {
				t.Errorf("PlayerClass() = %q, want %q", b.PlayerClass(), tt.class)
			}
			if got := b.Code("post_not_found"); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestBrandSlugs(t *testing.T) {
	slugs := BrandSlugs()
	if len(slugs) != 2 || slugs[0] != "wp-tts" || slugs[1] != "wpspeech" {
		t.Errorf("unexpected slugs %v", slugs)
	}
}
