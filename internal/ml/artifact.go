package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
)

// Artifact is a trained multinomial logistic model over finish positions.
// Class k of the softmax output is the probability of finishing in place k+1.
type Artifact struct {
	Name              string      `json:"name"`
	Version           string      `json:"version"`
	FeatureSetVersion string      `json:"feature_set_version"`
	FeatureNames      []string    `json:"feature_names"`
	Classes           int         `json:"classes"`
	Intercepts        []float64   `json:"intercepts"`
	Coefficients      [][]float64 `json:"coefficients"`
	Means             []float64   `json:"means,omitempty"`
	Scales            []float64   `json:"scales,omitempty"`
}

// LoadArtifact reads and validates an artifact file
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactInvalid, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the artifact against the encoder's feature layout and its own shape
func (a *Artifact) Validate() error {
	if a.FeatureSetVersion != "" && a.FeatureSetVersion != FeatureSetVersion {
		return fmt.Errorf("%w: version %s, encoder %s", ErrFeatureMismatch, a.FeatureSetVersion, FeatureSetVersion)
	}
	if len(a.FeatureNames) != len(FeatureNames) {
		return fmt.Errorf("%w: %d features, encoder has %d", ErrFeatureMismatch, len(a.FeatureNames), len(FeatureNames))
	}
	for i, name := range a.FeatureNames {
		if name != FeatureNames[i] {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrFeatureMismatch, i, name, FeatureNames[i])
		}
	}

	if a.Classes < 3 {
		return fmt.Errorf("%w: need at least 3 classes, got %d", ErrArtifactInvalid, a.Classes)
	}
	if len(a.Intercepts) != a.Classes || len(a.Coefficients) != a.Classes {
		return fmt.Errorf("%w: intercepts/coefficients do not match %d classes", ErrArtifactInvalid, a.Classes)
	}
	for k, row := range a.Coefficients {
		if len(row) != len(FeatureNames) {
			return fmt.Errorf("%w: class %d has %d coefficients", ErrArtifactInvalid, k, len(row))
		}
	}
	if a.Means != nil && len(a.Means) != len(FeatureNames) {
		return fmt.Errorf("%w: means length %d", ErrArtifactInvalid, len(a.Means))
	}
	if a.Scales != nil && len(a.Scales) != len(FeatureNames) {
		return fmt.Errorf("%w: scales length %d", ErrArtifactInvalid, len(a.Scales))
	}
	return nil
}

// PredictProba returns the class probabilities for one feature row
func (a *Artifact) PredictProba(row []float64) []float64 {
	x := a.standardize(row)

	logits := make([]float64, a.Classes)
	maxLogit := math.Inf(-1)
	for k := 0; k < a.Classes; k++ {
		z := a.Intercepts[k]
		for j, c := range a.Coefficients[k] {
			z += c * x[j]
		}
		logits[k] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	sum := 0.0
	for k, z := range logits {
		logits[k] = math.Exp(z - maxLogit)
		sum += logits[k]
	}
	for k := range logits {
		logits[k] /= sum
	}
	return logits
}

func (a *Artifact) standardize(row []float64) []float64 {
	if a.Means == nil && a.Scales == nil {
		return row
	}
	x := make([]float64, len(row))
	for j, v := range row {
		if a.Means != nil {
			v -= a.Means[j]
		}
		if a.Scales != nil && a.Scales[j] != 0 {
			v /= a.Scales[j]
		}
		x[j] = v
	}
	return x
}

// ExpectedRank is the probability-weighted mean finish position
func ExpectedRank(probs []float64) float64 {
	rank := 0.0
	for k, p := range probs {
		rank += float64(k+1) * p
	}
	return rank
}
