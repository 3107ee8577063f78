// Package core contains the matching and disambiguation engine: text
// normalization, similarity scoring, intent classification, candidate
// resolution, and the clarification protocol.
package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EngineConfig holds every tunable constant of the matching pipeline.
// All thresholds are configuration values, not behavioral contracts; the
// defaults below are starting points meant to be tuned against the curated
// knowledge base.
type EngineConfig struct {
	// MatchThreshold is the minimum composite confidence for a fuzzy match
	// to be considered at all.
	MatchThreshold float64
	// ResolutionThreshold is the confidence above which a match is answered
	// directly without clarification.
	ResolutionThreshold float64
	// ButtonKindThreshold is the fuzzy threshold for button resolution
	// within the declared source kind.
	ButtonKindThreshold float64
	// ButtonAnyThreshold is the fuzzy threshold for button resolution
	// across all source kinds.
	ButtonAnyThreshold float64
	// SecondaryPassFactor scales MatchThreshold down for the loose
	// multi-keyword substring pass.
	SecondaryPassFactor float64
	// PhoneticFloor is the minimum effective similarity for phonetically
	// equal leading tokens.
	PhoneticFloor float64

	// Ratio blend weights. SequenceWeight + TokenWeight + FirstLetterBonus
	// should sum to 1.
	SequenceWeight   float64
	TokenWeight      float64
	FirstLetterBonus float64

	// Composite confidence blend: ratio and keyword-overlap weights plus
	// the per-keyword substring bonus and its cap.
	ConfidenceRatioWeight   float64
	ConfidenceKeywordWeight float64
	KeywordBonus            float64
	KeywordBonusCap         float64

	// MaxClarifyOptions caps the number of numbered alternatives offered.
	MaxClarifyOptions int
}

// DefaultEngineConfig returns an EngineConfig populated with the tuned
// defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MatchThreshold:      0.40,
		ResolutionThreshold: 0.65,
		ButtonKindThreshold: 0.25,
		ButtonAnyThreshold:  0.35,
		SecondaryPassFactor: 0.8,
		PhoneticFloor:       0.6,
		SequenceWeight:      0.6,
		TokenWeight:         0.3,
		FirstLetterBonus:    0.1,

		ConfidenceRatioWeight:   0.6,
		ConfidenceKeywordWeight: 0.3,
		KeywordBonus:            0.05,
		KeywordBonusCap:         0.2,

		MaxClarifyOptions: 4,
	}
}

// ConfigurationManager defines the interface for loading and validating
// the engine configuration from the .kbdeskconfig file.
type ConfigurationManager interface {
	LoadConfig() (*EngineConfig, error)
	ValidateConfig(cfg *EngineConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .kbdeskconfig relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// LoadConfig reads the .kbdeskconfig file from the base path. If the file
// does not exist, the tuned defaults are returned.
func (cm *viperConfigManager) LoadConfig() (*EngineConfig, error) {
	cfg := DefaultEngineConfig()

	v := viper.New()
	v.SetConfigName(".kbdeskconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("thresholds.match", cfg.MatchThreshold)
	v.SetDefault("thresholds.resolution", cfg.ResolutionThreshold)
	v.SetDefault("thresholds.button_kind", cfg.ButtonKindThreshold)
	v.SetDefault("thresholds.button_any", cfg.ButtonAnyThreshold)
	v.SetDefault("thresholds.secondary_factor", cfg.SecondaryPassFactor)
	v.SetDefault("thresholds.phonetic_floor", cfg.PhoneticFloor)
	v.SetDefault("ratio.sequence_weight", cfg.SequenceWeight)
	v.SetDefault("ratio.token_weight", cfg.TokenWeight)
	v.SetDefault("ratio.first_letter_bonus", cfg.FirstLetterBonus)
	v.SetDefault("confidence.ratio_weight", cfg.ConfidenceRatioWeight)
	v.SetDefault("confidence.keyword_weight", cfg.ConfidenceKeywordWeight)
	v.SetDefault("confidence.keyword_bonus", cfg.KeywordBonus)
	v.SetDefault("confidence.keyword_bonus_cap", cfg.KeywordBonusCap)
	v.SetDefault("clarify.max_options", cfg.MaxClarifyOptions)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading .kbdeskconfig: %w", err)
	}

	cfg.MatchThreshold = v.GetFloat64("thresholds.match")
	cfg.ResolutionThreshold = v.GetFloat64("thresholds.resolution")
	cfg.ButtonKindThreshold = v.GetFloat64("thresholds.button_kind")
	cfg.ButtonAnyThreshold = v.GetFloat64("thresholds.button_any")
	cfg.SecondaryPassFactor = v.GetFloat64("thresholds.secondary_factor")
	cfg.PhoneticFloor = v.GetFloat64("thresholds.phonetic_floor")
	cfg.SequenceWeight = v.GetFloat64("ratio.sequence_weight")
	cfg.TokenWeight = v.GetFloat64("ratio.token_weight")
	cfg.FirstLetterBonus = v.GetFloat64("ratio.first_letter_bonus")
	cfg.ConfidenceRatioWeight = v.GetFloat64("confidence.ratio_weight")
	cfg.ConfidenceKeywordWeight = v.GetFloat64("confidence.keyword_weight")
	cfg.KeywordBonus = v.GetFloat64("confidence.keyword_bonus")
	cfg.KeywordBonusCap = v.GetFloat64("confidence.keyword_bonus_cap")
	cfg.MaxClarifyOptions = v.GetInt("clarify.max_options")

	return &cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *EngineConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	checkUnit := func(name string, val float64) {
		if val < 0 || val > 1 {
			errs = append(errs, fmt.Sprintf("%s %.2f is invalid, must be in [0,1]", name, val))
		}
	}

	checkUnit("thresholds.match", cfg.MatchThreshold)
	checkUnit("thresholds.resolution", cfg.ResolutionThreshold)
	checkUnit("thresholds.button_kind", cfg.ButtonKindThreshold)
	checkUnit("thresholds.button_any", cfg.ButtonAnyThreshold)
	checkUnit("thresholds.secondary_factor", cfg.SecondaryPassFactor)
	checkUnit("thresholds.phonetic_floor", cfg.PhoneticFloor)
	checkUnit("ratio.sequence_weight", cfg.SequenceWeight)
	checkUnit("ratio.token_weight", cfg.TokenWeight)
	checkUnit("ratio.first_letter_bonus", cfg.FirstLetterBonus)
	checkUnit("confidence.ratio_weight", cfg.ConfidenceRatioWeight)
	checkUnit("confidence.keyword_weight", cfg.ConfidenceKeywordWeight)
	checkUnit("confidence.keyword_bonus", cfg.KeywordBonus)
	checkUnit("confidence.keyword_bonus_cap", cfg.KeywordBonusCap)

	if cfg.MatchThreshold > cfg.ResolutionThreshold {
		errs = append(errs, fmt.Sprintf(
			"thresholds.match %.2f must not exceed thresholds.resolution %.2f",
			cfg.MatchThreshold, cfg.ResolutionThreshold,
		))
	}

	if cfg.MaxClarifyOptions < 2 || cfg.MaxClarifyOptions > 10 {
		errs = append(errs, fmt.Sprintf(
			"clarify.max_options %d is invalid, must be between 2 and 10",
			cfg.MaxClarifyOptions,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("engine config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
