// Package sampling splits tables for model development. Every operation
// takes an explicit seed; there is no package-level generator.
package sampling

import (
	"fmt"
	"math/rand"
	"sort"

	"gocredit/domain/dataset"
	"gocredit/internal/errors"
	"gocredit/ports"
)

// SeededRNG derives independent deterministic streams from a base seed and an
// operation name
type SeededRNG struct{}

var _ ports.RNG = SeededRNG{}

// Stream mixes the operation name into the seed so two operations run with
// the same seed do not share a sequence
func (SeededRNG) Stream(name string, seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(hashString(name))))
}

// hashString is djb2
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}

// Splitter draws samples from the streams of an RNG
type Splitter struct {
	rng ports.RNG
}

// NewSplitter wraps rng; a nil rng uses SeededRNG
func NewSplitter(rng ports.RNG) *Splitter {
	if rng == nil {
		rng = SeededRNG{}
	}
	return &Splitter{rng: rng}
}

var defaultSplitter = NewSplitter(nil)

// TrainTestSplit shuffles t and puts the first ⌊n·ratio⌋ records in train
func TrainTestSplit(t *dataset.Table, seed int64, ratio float64) (train, test *dataset.Table, err error) {
	return defaultSplitter.TrainTestSplit(t, seed, ratio)
}

// TrainTestSplit shuffles t and puts the first ⌊n·ratio⌋ records in train
func (s *Splitter) TrainTestSplit(t *dataset.Table, seed int64, ratio float64) (train, test *dataset.Table, err error) {
	if !(ratio > 0 && ratio < 1) {
		return nil, nil, errors.Configuration("ratio", fmt.Sprintf("must lie in (0,1), got %v", ratio))
	}
	perm := s.rng.Stream("train_test_split", seed).Perm(t.Len())
	cut := int(float64(t.Len()) * ratio)
	if train, err = t.Select(perm[:cut]); err != nil {
		return nil, nil, err
	}
	if test, err = t.Select(perm[cut:]); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// BalancedSplit splits t like TrainTestSplit, then resamples the training
// part with replacement to count non-events followed by count events
func BalancedSplit(t *dataset.Table, outcome string, count int, seed int64, ratio float64) (train, test *dataset.Table, err error) {
	return defaultSplitter.BalancedSplit(t, outcome, count, seed, ratio)
}

// BalancedSplit splits t like TrainTestSplit, then resamples the training
// part with replacement to count non-events followed by count events
func (s *Splitter) BalancedSplit(t *dataset.Table, outcome string, count int, seed int64, ratio float64) (train, test *dataset.Table, err error) {
	if count < 1 {
		return nil, nil, errors.Configuration("balance_count", fmt.Sprintf("must be at least 1, got %d", count))
	}
	full, test, err := s.TrainTestSplit(t, seed, ratio)
	if err != nil {
		return nil, nil, err
	}
	labels, err := full.Labels(outcome)
	if err != nil {
		return nil, nil, errors.InvalidColumn(outcome, err)
	}
	byClass := [2][]int{}
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}

	rng := s.rng.Stream("balanced_split", seed)
	rows := make([]int, 0, 2*count)
	for class, members := range byClass {
		if len(members) == 0 {
			return nil, nil, errors.DegenerateBin(outcome, fmt.Sprintf("%d", class), "training sample has no records of this class")
		}
		for i := 0; i < count; i++ {
			rows = append(rows, members[rng.Intn(len(members))])
		}
	}
	if train, err = full.Select(rows); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// StratifiedFolds partitions record indices into k folds that preserve the
// outcome ratio. Each fold lists its test indices in increasing order.
func StratifiedFolds(labels []int, k int, seed int64) ([][]int, error) {
	return defaultSplitter.StratifiedFolds(labels, k, seed)
}

// StratifiedFolds partitions record indices into k folds that preserve the
// outcome ratio. Each fold lists its test indices in increasing order.
func (s *Splitter) StratifiedFolds(labels []int, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, errors.Configuration("folds", fmt.Sprintf("must be at least 2, got %d", k))
	}
	byClass := [2][]int{}
	for i, l := range labels {
		if l != 0 && l != 1 {
			return nil, errors.InvalidInput(fmt.Sprintf("label %d at row %d is outside {0,1}", l, i))
		}
		byClass[l] = append(byClass[l], i)
	}
	for class, members := range byClass {
		if len(members) < k {
			return nil, errors.Configuration("folds", fmt.Sprintf("class %d has %d records, fewer than %d folds", class, len(members), k))
		}
	}

	rng := s.rng.Stream("stratified_folds", seed)
	folds := make([][]int, k)
	next := 0
	for _, members := range byClass {
		shuffled := append([]int(nil), members...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for _, idx := range shuffled {
			folds[next%k] = append(folds[next%k], idx)
			next++
		}
	}
	for _, f := range folds {
		sort.Ints(f)
	}
	return folds, nil
}

// Complement returns the indices in [0,n) not listed in fold
func Complement(n int, fold []int) []int {
	skip := make(map[int]bool, len(fold))
	for _, i := range fold {
		skip[i] = true
	}
	out := make([]int, 0, n-len(fold))
	for i := 0; i < n; i++ {
		if !skip[i] {
			out = append(out, i)
		}
	}
	return out
}
