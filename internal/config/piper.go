package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// PiperConfig locates the Piper binary and its voice model.
type PiperConfig struct {
	Binary  string `mapstructure:"binary"`
	Model   string `mapstructure:"model"`
	Speaker int    `mapstructure:"speaker"`
}

// LoadPiper reads the piper block. A model is required.
func LoadPiper(v *viper.Viper) (PiperConfig, error) {
	var c PiperConfig
	if err := v.UnmarshalKey("piper", &c); err != nil {
		return c, fmt.Errorf("unable to parse piper config: %w", err)
	}
	if c.Binary == "" {
		c.Binary = "piper"
	}
	if c.Model == "" {
		return c, errors.New("piper.model must point to an .onnx voice model")
	}
	if c.Speaker < 0 {
		return c, fmt.Errorf("piper.speaker cannot be negative, got %d", c.Speaker)
	}
	c.Binary = ExpandPath(c.Binary)
	c.Model = ExpandPath(c.Model)
	return c, nil
}
