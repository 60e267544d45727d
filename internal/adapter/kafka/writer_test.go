package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 7, 15, 10, 30, 0, 0, time.UTC)
	event := domain.AssessmentEvent{
		PredictionID:        "pred-1",
		Latitude:            28.61,
		Longitude:           77.21,
		RoofType:            "concrete",
		RoofAreaM2:          100,
		FeasibilityCategory: "Highly Feasible",
		FeasibilityScore:    0.85,
		Structure:           "Recharge Pit",
		TankCapacityLiters:  28800,
		WeatherSource:       "IMD_API",
		ProcessedAt:         now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("pred-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"feasibility_category":"Highly Feasible"`)
	assert.Contains(t, string(msg.Value), `"recommended_tank_capacity_liters":28800`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "feasibility_category", msg.Headers[0].Key)
	assert.Equal(t, []byte("Highly Feasible"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
