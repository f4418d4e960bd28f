// Package ml provides the feature encoder and the placement probability estimator.
package ml

import "errors"

var (
	// ErrArtifactNotFound indicates no model artifact exists at the configured path
	ErrArtifactNotFound = errors.New("model artifact not found")

	// ErrArtifactInvalid indicates the artifact could not be decoded or has a bad shape
	ErrArtifactInvalid = errors.New("invalid model artifact")

	// ErrFeatureMismatch indicates the artifact was trained on a different feature layout
	ErrFeatureMismatch = errors.New("artifact feature set does not match encoder")
)
