package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-talk/internal/common"
)

// KeywordWeights are the fixed weights of the keyword tier's score.
type KeywordWeights struct {
	Keyword      float64
	TokenOverlap float64
	Jaccard      float64
	Ngram        float64
	Direction    float64
}

// Calibration holds the empirically chosen thresholds of the pipeline.
// They are pinned by tests; change them deliberately.
type Calibration struct {
	Weights                   KeywordWeights
	MinAutoConfidence         float64
	IntentMinConfidence       float64
	FallbackConfidenceCeiling float64
	MinModelScore             float64
	ExactNameScore            float64
	MaxAlternatives           int
	PriorWindowDays           int
}

// ModelSettings sizes and trains one neural model.
type ModelSettings struct {
	SeqLen       int
	EmbedDim     int
	HiddenDim    int
	VocabSize    int
	Epochs       int
	BatchSize    int
	Samples      int
	Dropout      float64
	LearningRate float64
	Seed         int64
}

// LearningSettings controls online retraining.
type LearningSettings struct {
	RetrainSchedule   string
	MinRetrainSamples int
	IncrementalEpochs int
}

// Settings is the full runtime configuration.
type Settings struct {
	DatabasePath string
	Learning     LearningSettings
	Intent       ModelSettings
	Amount       ModelSettings
	Category     ModelSettings
	Calibration  Calibration
	ParseTimeout time.Duration
}

// DefaultCalibration returns the pinned calibration constants.
func DefaultCalibration() Calibration {
	return Calibration{
		MinAutoConfidence:         0.6,
		IntentMinConfidence:       0.6,
		FallbackConfidenceCeiling: 0.25,
		MinModelScore:             0.1,
		ExactNameScore:            0.95,
		MaxAlternatives:           3,
		PriorWindowDays:           90,
		Weights: KeywordWeights{
			Keyword:      0.30,
			TokenOverlap: 0.40,
			Jaccard:      0.15,
			Ngram:        0.10,
			Direction:    0.05,
		},
	}
}

// Default returns settings usable without any config file.
func Default() Settings {
	return Settings{
		DatabasePath: DefaultDatabasePath(),
		ParseTimeout: 2 * time.Second,
		Calibration:  DefaultCalibration(),
		Intent: ModelSettings{
			SeqLen: 16, EmbedDim: 24, HiddenDim: 32, VocabSize: 2000,
			Epochs: 25, BatchSize: 16, Samples: 160, Dropout: 0.2, LearningRate: 0.01, Seed: 7,
		},
		Amount: ModelSettings{
			SeqLen: 32, EmbedDim: 16, HiddenDim: 24, VocabSize: 2000,
			Epochs: 15, BatchSize: 16, Samples: 400, LearningRate: 0.01, Seed: 11,
		},
		Category: ModelSettings{
			SeqLen: 16, EmbedDim: 24, HiddenDim: 32, VocabSize: 5000,
			Epochs: 40, BatchSize: 8, Dropout: 0.1, LearningRate: 0.02, Seed: 13,
		},
		Learning: LearningSettings{
			MinRetrainSamples: 5,
			IncrementalEpochs: 15,
			RetrainSchedule:   "@every 6h",
		},
	}
}

// SetDefaults registers every default with v so config files and SPICE_*
// environment variables only need to name what they change.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.path", d.DatabasePath)
	v.SetDefault("pipeline.parse_timeout", d.ParseTimeout)

	c := d.Calibration
	v.SetDefault("calibration.min_auto_confidence", c.MinAutoConfidence)
	v.SetDefault("calibration.intent_min_confidence", c.IntentMinConfidence)
	v.SetDefault("calibration.fallback_confidence_ceiling", c.FallbackConfidenceCeiling)
	v.SetDefault("calibration.min_model_score", c.MinModelScore)
	v.SetDefault("calibration.exact_name_score", c.ExactNameScore)
	v.SetDefault("calibration.max_alternatives", c.MaxAlternatives)
	v.SetDefault("calibration.prior_window_days", c.PriorWindowDays)
	v.SetDefault("calibration.weights.keyword", c.Weights.Keyword)
	v.SetDefault("calibration.weights.token_overlap", c.Weights.TokenOverlap)
	v.SetDefault("calibration.weights.jaccard", c.Weights.Jaccard)
	v.SetDefault("calibration.weights.ngram", c.Weights.Ngram)
	v.SetDefault("calibration.weights.direction", c.Weights.Direction)

	setModelDefaults(v, "models.intent", d.Intent)
	setModelDefaults(v, "models.amount", d.Amount)
	setModelDefaults(v, "models.category", d.Category)

	v.SetDefault("learning.min_retrain_samples", d.Learning.MinRetrainSamples)
	v.SetDefault("learning.incremental_epochs", d.Learning.IncrementalEpochs)
	v.SetDefault("learning.retrain_schedule", d.Learning.RetrainSchedule)
}

func setModelDefaults(v *viper.Viper, prefix string, m ModelSettings) {
	v.SetDefault(prefix+".seq_len", m.SeqLen)
	v.SetDefault(prefix+".embed_dim", m.EmbedDim)
	v.SetDefault(prefix+".hidden_dim", m.HiddenDim)
	v.SetDefault(prefix+".vocab_size", m.VocabSize)
	v.SetDefault(prefix+".epochs", m.Epochs)
	v.SetDefault(prefix+".batch_size", m.BatchSize)
	v.SetDefault(prefix+".samples", m.Samples)
	v.SetDefault(prefix+".dropout", m.Dropout)
	v.SetDefault(prefix+".learning_rate", m.LearningRate)
	v.SetDefault(prefix+".seed", m.Seed)
}

func loadModel(v *viper.Viper, prefix string) ModelSettings {
	return ModelSettings{
		SeqLen:       v.GetInt(prefix + ".seq_len"),
		EmbedDim:     v.GetInt(prefix + ".embed_dim"),
		HiddenDim:    v.GetInt(prefix + ".hidden_dim"),
		VocabSize:    v.GetInt(prefix + ".vocab_size"),
		Epochs:       v.GetInt(prefix + ".epochs"),
		BatchSize:    v.GetInt(prefix + ".batch_size"),
		Samples:      v.GetInt(prefix + ".samples"),
		Dropout:      v.GetFloat64(prefix + ".dropout"),
		LearningRate: v.GetFloat64(prefix + ".learning_rate"),
		Seed:         v.GetInt64(prefix + ".seed"),
	}
}

// Load reads settings from v, applying defaults for anything unset, and
// validates the result.
func Load(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	s := Settings{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		ParseTimeout: v.GetDuration("pipeline.parse_timeout"),
		Calibration: Calibration{
			MinAutoConfidence:         v.GetFloat64("calibration.min_auto_confidence"),
			IntentMinConfidence:       v.GetFloat64("calibration.intent_min_confidence"),
			FallbackConfidenceCeiling: v.GetFloat64("calibration.fallback_confidence_ceiling"),
			MinModelScore:             v.GetFloat64("calibration.min_model_score"),
			ExactNameScore:            v.GetFloat64("calibration.exact_name_score"),
			MaxAlternatives:           v.GetInt("calibration.max_alternatives"),
			PriorWindowDays:           v.GetInt("calibration.prior_window_days"),
			Weights: KeywordWeights{
				Keyword:      v.GetFloat64("calibration.weights.keyword"),
				TokenOverlap: v.GetFloat64("calibration.weights.token_overlap"),
				Jaccard:      v.GetFloat64("calibration.weights.jaccard"),
				Ngram:        v.GetFloat64("calibration.weights.ngram"),
				Direction:    v.GetFloat64("calibration.weights.direction"),
			},
		},
		Intent:   loadModel(v, "models.intent"),
		Amount:   loadModel(v, "models.amount"),
		Category: loadModel(v, "models.category"),
		Learning: LearningSettings{
			MinRetrainSamples: v.GetInt("learning.min_retrain_samples"),
			IncrementalEpochs: v.GetInt("learning.incremental_epochs"),
			RetrainSchedule:   v.GetString("learning.retrain_schedule"),
		},
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that settings are usable.
func (s Settings) Validate() error {
	if s.DatabasePath == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if s.ParseTimeout <= 0 {
		return fmt.Errorf("%w: pipeline.parse_timeout must be positive", common.ErrInvalidConfig)
	}

	c := s.Calibration
	for name, p := range map[string]float64{
		"min_auto_confidence":         c.MinAutoConfidence,
		"intent_min_confidence":       c.IntentMinConfidence,
		"fallback_confidence_ceiling": c.FallbackConfidenceCeiling,
		"min_model_score":             c.MinModelScore,
		"exact_name_score":            c.ExactNameScore,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: calibration.%s must be in [0,1], got %v", common.ErrInvalidConfig, name, p)
		}
	}
	if c.MaxAlternatives < 1 {
		return fmt.Errorf("%w: calibration.max_alternatives must be at least 1", common.ErrInvalidConfig)
	}
	if c.PriorWindowDays < 1 {
		return fmt.Errorf("%w: calibration.prior_window_days must be at least 1", common.ErrInvalidConfig)
	}
	w := c.Weights
	if sum := w.Keyword + w.TokenOverlap + w.Jaccard + w.Ngram + w.Direction; sum <= 0 || sum > 1.0000001 {
		return fmt.Errorf("%w: calibration weights must sum to (0,1], got %v", common.ErrInvalidConfig, sum)
	}

	for name, m := range map[string]ModelSettings{"intent": s.Intent, "amount": s.Amount, "category": s.Category} {
		if err := m.validate(); err != nil {
			return fmt.Errorf("models.%s: %w", name, err)
		}
	}

	if s.Learning.MinRetrainSamples < 1 {
		return fmt.Errorf("%w: learning.min_retrain_samples must be at least 1", common.ErrInvalidConfig)
	}
	return nil
}

func (m ModelSettings) validate() error {
	if m.SeqLen < 1 || m.EmbedDim < 1 || m.HiddenDim < 1 {
		return fmt.Errorf("%w: dimensions must be positive", common.ErrInvalidConfig)
	}
	if m.Epochs < 1 || m.BatchSize < 1 {
		return fmt.Errorf("%w: epochs and batch_size must be positive", common.ErrInvalidConfig)
	}
	if m.Dropout < 0 || m.Dropout >= 1 {
		return fmt.Errorf("%w: dropout must be in [0,1)", common.ErrInvalidConfig)
	}
	if m.LearningRate <= 0 {
		return fmt.Errorf("%w: learning_rate must be positive", common.ErrInvalidConfig)
	}
	return nil
}
