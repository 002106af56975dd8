package imputer

import (
	"math"

	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/featurize"
	"github.com/wdm0006/imputekit/pkg/hpo"
)

const (
	DefaultHashBuckets = 1 << 12
	DefaultLatentDim   = 100
	DefaultHidden      = 1
	DefaultSuffix      = "_imputed"
)

// Config names the columns an imputer reads and writes plus the
// featurization and tower settings. It is fixed once New accepts it.
type Config struct {
	InputColumns []string `json:"input_columns" mapstructure:"input_columns"`
	OutputColumn string   `json:"output_column" mapstructure:"output_column"`
	OutputPath   string   `json:"output_path" mapstructure:"output_path"`

	NumHashBuckets int              `json:"num_hash_buckets" mapstructure:"num_hash_buckets"`
	Tokens         featurize.Tokens `json:"tokens" mapstructure:"tokens"`
	// LatentDim and HiddenLayers shape the tower of each numeric input. A nil
	// HiddenLayers means DefaultHidden; Ptr(0) feeds numeric inputs straight
	// into the head.
	LatentDim    int  `json:"latent_dim" mapstructure:"latent_dim"`
	HiddenLayers *int `json:"hidden_layers" mapstructure:"hidden_layers"`
	// LayerDim are the hidden sizes of each image input's tower.
	LayerDim  []int `json:"layer_dim,omitempty" mapstructure:"layer_dim"`
	ImageSize int   `json:"image_size" mapstructure:"image_size"`
	// ColumnTypes pins the modality of input columns instead of inferring it.
	ColumnTypes map[string]featurize.Modality `json:"column_types,omitempty" mapstructure:"column_types"`
}

func (c Config) withDefaults() Config {
	if c.NumHashBuckets == 0 {
		c.NumHashBuckets = DefaultHashBuckets
	}
	if c.Tokens == "" {
		c.Tokens = featurize.Chars
	}
	if c.LatentDim == 0 {
		c.LatentDim = DefaultLatentDim
	}
	if c.ImageSize == 0 {
		c.ImageSize = featurize.DefaultImageSize
	}
	c.HiddenLayers = orDefault(c.HiddenLayers, DefaultHidden)
	return c
}

// Ptr returns a pointer to v, for settings where zero differs from unset.
func Ptr[T any](v T) *T { return &v }

// orDefault returns a fresh pointer holding *v, or def when v is nil.
func orDefault[T any](v *T, def T) *T {
	if v == nil {
		return Ptr(def)
	}
	return Ptr(*v)
}

func (c Config) validate() error {
	if len(c.InputColumns) == 0 {
		return errs.Newf(errs.ErrConfiguration, "no input columns")
	}
	seen := make(map[string]bool, len(c.InputColumns))
	for _, in := range c.InputColumns {
		if in == "" {
			return errs.Newf(errs.ErrConfiguration, "empty input column name")
		}
		if seen[in] {
			return errs.Newf(errs.ErrConfiguration, "input column %q listed twice", in)
		}
		seen[in] = true
	}
	if c.OutputColumn == "" {
		return errs.Newf(errs.ErrConfiguration, "no output column")
	}
	if seen[c.OutputColumn] {
		return errs.Newf(errs.ErrConfiguration, "output column %q is also an input column", c.OutputColumn)
	}
	if c.OutputPath == "" {
		return errs.Newf(errs.ErrConfiguration, "no output path")
	}
	if c.Tokens != featurize.Chars && c.Tokens != featurize.Words {
		return errs.Newf(errs.ErrConfiguration, "tokens must be %q or %q, got %q", featurize.Chars, featurize.Words, c.Tokens)
	}
	if c.NumHashBuckets < 1 || c.LatentDim < 1 || *c.HiddenLayers < 0 || c.ImageSize < 1 {
		return errs.Newf(errs.ErrConfiguration, "num_hash_buckets, latent_dim and image_size must be positive, hidden_layers non-negative")
	}
	for _, d := range c.LayerDim {
		if d < 1 {
			return errs.Newf(errs.ErrConfiguration, "layer_dim entries must be positive, got %v", c.LayerDim)
		}
	}
	for col, m := range c.ColumnTypes {
		if !seen[col] {
			return errs.Newf(errs.ErrConfiguration, "column type given for %q, which is not an input", col)
		}
		if !m.Valid() {
			return errs.Newf(errs.ErrConfiguration, "unknown column type %q for %q", m, col)
		}
	}
	return nil
}

// Backend selects the learner behind an imputer.
type Backend string

const (
	MLP Backend = "mlp"
	KNN Backend = "knn"
)

// Params are the training settings of one fit.
type Params struct {
	LearningRate float64 `json:"learning_rate" mapstructure:"learning_rate"`
	NumEpochs    int     `json:"num_epochs" mapstructure:"num_epochs"`
	// Patience and TestSplit take their defaults when nil. Ptr(0) disables
	// early stopping or the hold-out respectively.
	Patience           *int     `json:"patience" mapstructure:"patience"`
	TestSplit          *float64 `json:"test_split" mapstructure:"test_split"`
	WeightDecay        float64  `json:"weight_decay" mapstructure:"weight_decay"`
	BatchSize          int      `json:"batch_size" mapstructure:"batch_size"`
	FinalFCHiddenUnits []int    `json:"final_fc_hidden_units" mapstructure:"final_fc_hidden_units"`
	Seed               int64    `json:"seed" mapstructure:"seed"`
	Backend            Backend  `json:"backend" mapstructure:"backend"`
	KNeighbors         int      `json:"k_neighbors,omitempty" mapstructure:"k_neighbors"`
}

// DefaultParams mirrors the settings the tutorial uses when none are given.
func DefaultParams() Params {
	return Params{
		LearningRate:       1e-3,
		NumEpochs:          10,
		Patience:           Ptr(3),
		TestSplit:          Ptr(0.1),
		BatchSize:          16,
		FinalFCHiddenUnits: []int{100},
		Backend:            MLP,
		KNeighbors:         5,
	}
}

// withDefaults fills zero or nil fields from DefaultParams. FinalFCHiddenUnits
// keeps an explicit empty slice, which means no hidden head layer.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	p.Patience = orDefault(p.Patience, *d.Patience)
	p.TestSplit = orDefault(p.TestSplit, *d.TestSplit)
	if p.LearningRate == 0 {
		p.LearningRate = d.LearningRate
	}
	if p.NumEpochs == 0 {
		p.NumEpochs = d.NumEpochs
	}
	if p.BatchSize == 0 {
		p.BatchSize = d.BatchSize
	}
	if p.FinalFCHiddenUnits == nil {
		p.FinalFCHiddenUnits = d.FinalFCHiddenUnits
	}
	if p.Backend == "" {
		p.Backend = d.Backend
	}
	if p.KNeighbors == 0 {
		p.KNeighbors = d.KNeighbors
	}
	return p
}

func (p Params) validate() error {
	switch {
	case p.LearningRate <= 0 || math.IsInf(p.LearningRate, 0) || math.IsNaN(p.LearningRate):
		return errs.Newf(errs.ErrConfiguration, "learning_rate must be positive, got %v", p.LearningRate)
	case p.NumEpochs < 1:
		return errs.Newf(errs.ErrConfiguration, "num_epochs must be positive, got %d", p.NumEpochs)
	case *p.Patience < 0:
		return errs.Newf(errs.ErrConfiguration, "patience must not be negative")
	case *p.TestSplit < 0 || *p.TestSplit >= 1:
		return errs.Newf(errs.ErrConfiguration, "test_split must be in [0, 1), got %v", *p.TestSplit)
	case p.WeightDecay < 0:
		return errs.Newf(errs.ErrConfiguration, "weight_decay must not be negative")
	case p.BatchSize < 1:
		return errs.Newf(errs.ErrConfiguration, "batch_size must be positive")
	case p.Backend != MLP && p.Backend != KNN:
		return errs.Newf(errs.ErrConfiguration, "unknown backend %q", p.Backend)
	case p.KNeighbors < 1:
		return errs.Newf(errs.ErrConfiguration, "k_neighbors must be positive")
	}
	for _, h := range p.FinalFCHiddenUnits {
		if h < 1 {
			return errs.Newf(errs.ErrConfiguration, "final_fc_hidden_units entries must be positive, got %v", p.FinalFCHiddenUnits)
		}
	}
	return nil
}

// Candidates lists the values FitHPO searches. Empty lists are not searched;
// the imputer's Config and Base supply those settings instead.
type Candidates struct {
	LearningRate       []float64          `mapstructure:"learning_rate"`
	FinalFCHiddenUnits [][]int            `mapstructure:"final_fc_hidden_units"`
	NumHashBuckets     []int              `mapstructure:"num_hash_buckets"`
	Tokens             []featurize.Tokens `mapstructure:"tokens"`
	LatentDim          []int              `mapstructure:"latent_dim"`
	HiddenLayers       []int              `mapstructure:"hidden_layers"`
	LayerDim           [][]int            `mapstructure:"layer_dim"`

	// Base holds the fixed training params of every trial. Unset fields take
	// their DefaultParams values, so trials are scored on a hold-out.
	Base Params `mapstructure:"base"`
	// HPOMaxTrainSamples caps the rows each trial trains on; 0 means all.
	HPOMaxTrainSamples int `mapstructure:"hpo_max_train_samples"`
	// OnTrial, when set, observes every finished trial.
	OnTrial func(hpo.Report) `mapstructure:"-"`
}
