// Command validate performs offline integrity checks on a trained model
// artifact and on the sizing formulas: artifact/schema consistency, the
// seasonal distribution model, golden water-balance scenarios, and recharge
// classification boundaries. It runs without a database or network and is
// meant for CI and for vetting a freshly exported artifact before deploy.
//
// Usage:
//
//	go run ./cmd/validate -model models/feasibility_models.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/recharge-feasibility/internal/adapter/model"
	"github.com/couchcryptid/recharge-feasibility/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	modelPath := flag.String("model", "models/feasibility_models.json", "path to the model artifact")
	flag.Parse()

	if code := run(*modelPath); code != 0 {
		os.Exit(code)
	}
}

func run(modelPath string) int {
	fmt.Println("=== Feasibility Model & Formula Validation ===")
	fmt.Println()

	phases := []*phase{
		validateArtifact(modelPath),
		validateDistributionModel(),
		validateWaterBalance(),
		validateRechargeClassification(),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-48s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Model Artifact ──
// Loads the artifact (which checks parameter-vector sizing) and verifies the
// feature schema only names columns the encoder can supply.

func validateArtifact(path string) *phase {
	p := &phase{name: "Phase 1: Model Artifact (schema & scaler)"}

	models, err := model.Load(path)
	if err != nil {
		p.errorf("load artifact: %v", err)
		return p
	}

	schema := models.FeatureSchema()
	for _, col := range schema {
		if domain.KnownColumn(col) || strings.HasPrefix(col, "roof_type_") {
			continue
		}
		p.errorf("schema column %q is not a known feature or roof_type one-hot", col)
	}

	// A representative vector must score without error and land in a category.
	fv, _, err := domain.DeriveFeatures(domain.SiteRequest{
		RoofType:   "concrete",
		RoofAreaM2: domain.Num(100),
	}, domain.DefaultWeatherMetrics())
	if err != nil {
		p.errorf("derive reference features: %v", err)
		return p
	}
	pred, err := models.Predict(domain.EncodeFeatures(fv, schema))
	if err != nil {
		p.errorf("predict reference vector: %v", err)
		return p
	}
	if pred.Category == "" || pred.Structure == "" {
		p.errorf("reference prediction incomplete: category=%q structure=%q", pred.Category, pred.Structure)
	}
	if pred.Score < 0 || pred.Score > 1 {
		p.errorf("reference score %g outside [0, 1]", pred.Score)
	}
	return p
}

// ── Phase 2: Distribution Model ──
// The twelve monthly shares must sum to exactly 1.00 and the month calendar
// to 365 days; the monthly harvest totals must recompose the annual figure.

func validateDistributionModel() *phase {
	p := &phase{name: "Phase 2: Seasonal Distribution Model"}

	balance := domain.ComputeWaterBalance(100, 1200, 0.8)

	var harvestSum float64
	for _, m := range balance.Months {
		harvestSum += float64(m.HarvestableLiters)
	}
	// Flooring each month loses less than a liter per month.
	if math.Abs(harvestSum-balance.AnnualHarvestableLiters) > 12 {
		p.errorf("monthly harvest sums to %g, annual is %g", harvestSum, balance.AnnualHarvestableLiters)
	}

	if balance.Months[0].Month != "January" || balance.Months[11].Month != "December" {
		p.errorf("months out of calendar order: %s ... %s", balance.Months[0].Month, balance.Months[11].Month)
	}
	return p
}

// ── Phase 3: Water Balance Goldens ──
// Reference scenario: 100 m² roof, 1200 mm rainfall, 0.8 runoff coefficient.

func validateWaterBalance() *phase {
	p := &phase{name: "Phase 3: Water Balance (golden scenario)"}

	balance := domain.ComputeWaterBalance(100, 1200, 0.8)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"annual_harvestable_liters", balance.AnnualHarvestableLiters, 96000},
		{"tank_capacity_liters", float64(balance.TankCapacityLiters), 28800},
		{"july_harvestable", float64(balance.Months[6].HarvestableLiters), 24000},
		{"july_storage_required", float64(balance.Months[6].StorageRequiredLiters), 960},
		{"january_storage_required", float64(balance.Months[0].StorageRequiredLiters), 28608},
	}
	for _, c := range checks {
		if !floatEq(c.got, c.want) {
			p.errorf("%s: expected %g, got %g", c.name, c.want, c.got)
		}
	}

	// Degenerate roof: no harvest, storage is buffered usage.
	zero := domain.ComputeWaterBalance(0, 1200, 0.8)
	if zero.AnnualHarvestableLiters != 0 {
		p.errorf("zero roof: annual harvestable %g, expected 0", zero.AnnualHarvestableLiters)
	}
	if got, want := zero.Months[0].StorageRequiredLiters, int(math.Floor(800*31*1.2)); got != want {
		p.errorf("zero roof january storage: expected %d, got %d", want, got)
	}

	// Tank cap: a very large harvest is limited to 90 days of usage.
	big := domain.ComputeWaterBalance(1000, 2500, 0.9)
	if big.TankCapacityLiters != 72000 {
		p.errorf("tank cap: expected 72000, got %d", big.TankCapacityLiters)
	}
	return p
}

// ── Phase 4: Recharge Classification ──
// Band boundaries are strict greater-than and the efficiency is unclamped.

func validateRechargeClassification() *phase {
	p := &phase{name: "Phase 4: Recharge Classification (boundaries)"}

	monsoonCases := []struct {
		rainfall  float64
		wantLevel string
		wantScore float64
	}{
		{2001, "Very High", 0.9},
		{2000, "High", 0.7},
		{1600, "High", 0.7},
		{1500, "Moderate", 0.5},
		{1000, "Low", 0.3},
		{500, "Very Low", 0.1},
	}
	for _, c := range monsoonCases {
		m := domain.ClassifyMonsoon(c.rainfall, 50)
		if m.Level != c.wantLevel || !floatEq(m.Score, c.wantScore) {
			p.errorf("monsoon %gmm: expected %s/%g, got %s/%g", c.rainfall, c.wantLevel, c.wantScore, m.Level, m.Score)
		}
	}

	seasonCases := []struct {
		month      time.Month
		wantSeason string
		wantFactor float64
	}{
		{time.July, "Monsoon", 1.5},
		{time.April, "Pre-Monsoon", 0.8},
		{time.October, "Post-Monsoon", 1.2},
		{time.January, "Winter", 0.5},
	}
	for _, c := range seasonCases {
		s := domain.ClassifySeason(c.month)
		if s.Season != c.wantSeason || !floatEq(s.RechargeFactor, c.wantFactor) {
			p.errorf("season %s: expected %s/%g, got %s/%g", c.month, c.wantSeason, c.wantFactor, s.Season, s.RechargeFactor)
		}
	}

	// Default inputs reproduce the documented fallback metrics.
	m := domain.EstimateRechargeAt(domain.RechargeInput{}, time.July)
	if !floatEq(m.EvaporationRateMMDay, 0.54) || !floatEq(m.InfiltrationPotential, 0.6) || !floatEq(m.RechargeEfficiency, 0.568) {
		p.errorf("default recharge metrics: expected 0.54/0.6/0.568, got %g/%g/%g",
			m.EvaporationRateMMDay, m.InfiltrationPotential, m.RechargeEfficiency)
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
