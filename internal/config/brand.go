// Package config holds the reader settings, the brand presets and the server
// runtime configuration.
package config

import (
	"fmt"
	"sort"
	"strings"
)

// Brand is a deployment identity. It only changes names, never behavior.
type Brand struct {
	Slug      string // "wp-tts"
	Name      string // human readable
	Namespace string // REST namespace, e.g. "wp-tts/v1"
	OptionKey string // settings key, e.g. "wp_tts_settings"
}

// DefaultBrand is used when none is configured.
const DefaultBrand = "wp-tts"

var brands = map[string]Brand{
	"wp-tts": {
		Slug:      "wp-tts",
		Name:      "WP Text to Speech",
		Namespace: "wp-tts/v1",
		OptionKey: "wp_tts_settings",
	},
	"wpspeech": {
		Slug:      "wpspeech",
		Name:      "WPSpeech",
		Namespace: "wpspeech/v1",
		OptionKey: "wpspeech_settings",
	},
}

// LookupBrand returns the preset for slug.
func LookupBrand(slug string) (Brand, error) {
	if slug == "" {
		slug = DefaultBrand
	}
	b, ok := brands[strings.ToLower(slug)]
	if !ok {
		return Brand{}, fmt.Errorf("unknown brand %q: must be one of %v", slug, BrandSlugs())
	}
	return b, nil
}

// BrandSlugs lists the known brands.
func BrandSlugs() []string {
	slugs := make([]string, 0, len(brands))
	for s := range brands {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}

// Prefix is the class and identifier prefix.
func (b Brand) Prefix() string {
	return b.Slug
}

// PlayerClass is the class of the player's own markup, which is excluded from
// the text it reads.
func (b Brand) PlayerClass() string {
	return b.Slug + "-player"
}

// Code builds a machine readable error code, e.g. "wp_tts_post_not_found".
func (b Brand) Code(name string) string {
	return strings.ReplaceAll(b.Slug, "-", "_") + "_" + name
}
