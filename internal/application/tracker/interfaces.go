package tracker

import (
	"context"

	"github.com/penwyp/go-health-monitor/internal/core/model"
)

// Service is the network service the tracker writes through
type Service interface {
	// UpdateWeight records the day's weight
	UpdateWeight(ctx context.Context, userID string, update model.WeightUpdate) error
	// LogWater adds a drink
	LogWater(ctx context.Context, userID string, log model.WaterLog) error
	// AddFasting stores a completed fasting session
	AddFasting(ctx context.Context, userID string, rec model.FastingRecord) error
	// SetHeight stores the user's height in centimetres
	SetHeight(ctx context.Context, userID string, heightCm float64) error
	// Metadata fetches everything stored for the user
	Metadata(ctx context.Context, userID string) (*model.Metadata, error)
}
