// Package model loads the trained feasibility artifact and serves
// predictions from it. The artifact is a JSON export of the training
// pipeline: feature schema, scaler parameters, the feasibility scorer, and
// the per-structure recommendation weights.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/couchcryptid/recharge-feasibility/internal/domain"
)

// artifact mirrors the JSON layout written by the training export.
type artifact struct {
	Features []string `json:"features"`
	Scaler   struct {
		Mean  []float64 `json:"mean"`
		Scale []float64 `json:"scale"`
	} `json:"scaler"`
	Score struct {
		Weights   []float64 `json:"weights"`
		Intercept float64   `json:"intercept"`
	} `json:"score"`
	Categories []category  `json:"categories"`
	Structures []structure `json:"structures"`
}

type category struct {
	Label    string  `json:"label"`
	MinScore float64 `json:"min_score"`
}

type structure struct {
	Label     string    `json:"label"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// Models holds a validated artifact ready to predict.
type Models struct {
	art artifact
}

// Load reads and validates a model artifact. Any inconsistency between the
// feature schema and the parameter vectors fails here, at startup, rather
// than on the first prediction.
func Load(path string) (*Models, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}

	n := len(art.Features)
	if n == 0 {
		return nil, fmt.Errorf("model artifact %s: empty feature schema", path)
	}
	if len(art.Scaler.Mean) != n || len(art.Scaler.Scale) != n {
		return nil, fmt.Errorf("model artifact %s: scaler sized %d/%d, want %d",
			path, len(art.Scaler.Mean), len(art.Scaler.Scale), n)
	}
	if len(art.Score.Weights) != n {
		return nil, fmt.Errorf("model artifact %s: score weights sized %d, want %d",
			path, len(art.Score.Weights), n)
	}
	if len(art.Categories) == 0 {
		return nil, fmt.Errorf("model artifact %s: no feasibility categories", path)
	}
	if !sort.SliceIsSorted(art.Categories, func(i, j int) bool {
		return art.Categories[i].MinScore > art.Categories[j].MinScore
	}) {
		return nil, fmt.Errorf("model artifact %s: categories not in descending min_score order", path)
	}
	if len(art.Structures) == 0 {
		return nil, fmt.Errorf("model artifact %s: no structure models", path)
	}
	for _, s := range art.Structures {
		if len(s.Weights) != n {
			return nil, fmt.Errorf("model artifact %s: structure %q weights sized %d, want %d",
				path, s.Label, len(s.Weights), n)
		}
	}

	return &Models{art: art}, nil
}

// FeatureSchema returns the ordered feature column names the models were
// trained on. Callers encode their vectors against this schema.
func (m *Models) FeatureSchema() []string {
	schema := make([]string, len(m.art.Features))
	copy(schema, m.art.Features)
	return schema
}

// Predict scores an encoded feature vector and returns the feasibility
// category, the clamped score, and the recommended structure.
func (m *Models) Predict(vec []float64) (domain.Prediction, error) {
	if len(vec) != len(m.art.Features) {
		return domain.Prediction{}, fmt.Errorf("feature vector sized %d, want %d",
			len(vec), len(m.art.Features))
	}

	std := make([]float64, len(vec))
	for i, v := range vec {
		scale := m.art.Scaler.Scale[i]
		if scale == 0 {
			scale = 1
		}
		std[i] = (v - m.art.Scaler.Mean[i]) / scale
	}

	score := m.art.Score.Intercept
	for i, w := range m.art.Score.Weights {
		score += w * std[i]
	}
	score = math.Round(math.Min(1, math.Max(0, score))*1000) / 1000

	cat := m.art.Categories[len(m.art.Categories)-1].Label
	for _, c := range m.art.Categories {
		if score >= c.MinScore {
			cat = c.Label
			break
		}
	}

	best := 0
	bestScore := math.Inf(-1)
	for i, s := range m.art.Structures {
		v := s.Intercept
		for j, w := range s.Weights {
			v += w * std[j]
		}
		if v > bestScore {
			bestScore = v
			best = i
		}
	}

	return domain.Prediction{
		Category:  cat,
		Score:     score,
		Structure: m.art.Structures[best].Label,
	}, nil
}
