package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourusername/boat-oracle/internal/events"
	"github.com/yourusername/boat-oracle/internal/models"
)

// PredictionRequest is the JSON body of a remote prediction request
type PredictionRequest struct {
	Card    models.RaceCard           `json:"card"`
	Weights *models.PredictionWeights `json:"weights,omitempty"`
}

func decodeRequest(data []byte) (*PredictionRequest, error) {
	var req PredictionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &req, nil
}

// Handlers returns the request handlers keyed by prediction kind. Consensus
// requests always use the configured agent line-up.
func (s *PredictionService) Handlers() map[string]events.Handler {
	return map[string]events.Handler{
		KindStatistical: func(ctx context.Context, data []byte) (interface{}, error) {
			req, err := decodeRequest(data)
			if err != nil {
				return nil, err
			}
			return s.Statistical(ctx, &req.Card, req.Weights)
		},
		KindML: func(ctx context.Context, data []byte) (interface{}, error) {
			req, err := decodeRequest(data)
			if err != nil {
				return nil, err
			}
			return s.ML(ctx, &req.Card)
		},
		KindConsensus: func(ctx context.Context, data []byte) (interface{}, error) {
			req, err := decodeRequest(data)
			if err != nil {
				return nil, err
			}
			return s.Consensus(ctx, &req.Card, nil)
		},
	}
}

// RequestServer subscribes handlers to remote requests
type RequestServer interface {
	Serve(kind string, h events.Handler) error
}

// Serve registers every request handler on the bus
func (s *PredictionService) Serve(bus RequestServer) error {
	handlers := s.Handlers()
	for _, kind := range []string{KindStatistical, KindML, KindConsensus} {
		if err := bus.Serve(kind, handlers[kind]); err != nil {
			return fmt.Errorf("failed to serve %s requests: %w", kind, err)
		}
	}
	return nil
}
