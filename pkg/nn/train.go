package nn

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/wdm0006/imputekit/pkg/featurize"
)

// Sample is one training example: one vector per input group and either a
// class index or a (scaled) regression target.
type Sample struct {
	X      []featurize.Vector
	Class  int
	Target float64
}

type TrainConfig struct {
	LearningRate float64
	WeightDecay  float64
	Epochs       int
	BatchSize    int
	// Patience stops training after this many epochs without a validation
	// improvement; 0 disables early stopping.
	Patience int
	Seed     int64
}

type EpochStats struct {
	Epoch     int     `json:"epoch"`
	TrainLoss float64 `json:"train_loss"`
	ValLoss   float64 `json:"val_loss"`
}

type History struct {
	Epochs    []EpochStats `json:"epochs"`
	BestEpoch int          `json:"best_epoch"`
	Stopped   bool         `json:"early_stopped"`
}

// ErrNonFinite is returned when the training loss diverges.
var ErrNonFinite = errors.New("nn: non-finite loss")

// Train fits m on train, tracking loss on val (or train when val is empty).
// The weights of the best epoch are restored before returning. onEpoch may
// be nil.
func (m *MLP) Train(ctx context.Context, train, val []Sample, cfg TrainConfig, onEpoch func(EpochStats)) (History, error) {
	if len(train) == 0 {
		return History{}, errors.New("nn: no training samples")
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 1e-3
	}
	layers := m.layers()
	for _, d := range layers {
		d.opt = newAdamState(d)
	}
	defer func() {
		for _, d := range layers {
			d.opt = nil
		}
	}()
	rng := rand.New(rand.NewSource(cfg.Seed))
	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}
	var h History
	best, stale, adamT := math.Inf(1), 0, 0
	bestW := m.snapshot()
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return h, err
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		var total float64
		for lo := 0; lo < len(order); lo += cfg.BatchSize {
			hi := min(lo+cfg.BatchSize, len(order))
			for _, i := range order[lo:hi] {
				tr, err := m.forward(train[i].X)
				if err != nil {
					return h, err
				}
				l, grad := m.loss(tr.head[len(tr.head)-1], train[i])
				total += l
				m.backward(tr, grad)
			}
			adamT++
			for _, d := range layers {
				d.opt.step(d, cfg.LearningRate, cfg.WeightDecay, adamT, hi-lo)
			}
		}
		st := EpochStats{Epoch: epoch, TrainLoss: total / float64(len(train))}
		if math.IsNaN(st.TrainLoss) || math.IsInf(st.TrainLoss, 0) {
			return h, ErrNonFinite
		}
		st.ValLoss = st.TrainLoss
		if len(val) > 0 {
			vl, err := m.Loss(val)
			if err != nil {
				return h, err
			}
			st.ValLoss = vl
		}
		h.Epochs = append(h.Epochs, st)
		if onEpoch != nil {
			onEpoch(st)
		}
		if st.ValLoss < best {
			best, stale, h.BestEpoch = st.ValLoss, 0, epoch
			bestW = m.snapshot()
		} else {
			stale++
			if cfg.Patience > 0 && stale >= cfg.Patience {
				h.Stopped = true
				break
			}
		}
	}
	m.restore(bestW)
	return h, nil
}

// Loss is the mean loss over samples.
func (m *MLP) Loss(samples []Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	var total float64
	for _, s := range samples {
		tr, err := m.forward(s.X)
		if err != nil {
			return 0, err
		}
		l, _ := m.loss(tr.head[len(tr.head)-1], s)
		total += l
	}
	return total / float64(len(samples)), nil
}

func (m *MLP) snapshot() [][]float64 {
	var out [][]float64
	for _, d := range m.layers() {
		out = append(out, append([]float64(nil), d.W...), append([]float64(nil), d.B...))
	}
	return out
}

func (m *MLP) restore(s [][]float64) {
	for i, d := range m.layers() {
		copy(d.W, s[2*i])
		copy(d.B, s[2*i+1])
	}
}
