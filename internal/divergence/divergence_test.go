package divergence

import (
	"math"
	"testing"

	"github.com/dyike/coveredcall/models"
)

func view(stance models.Stance, bias models.CoveredCallBias, conf float64) *models.StanceView {
	return &models.StanceView{Stance: stance, CoveredCallBias: bias, Confidence: conf}
}

func TestIdenticalViewsScoreZero(t *testing.T) {
	v := view(models.StanceNeutral, models.BiasIncome, 0.8)
	r := Compute(v, view(models.StanceNeutral, models.BiasIncome, 0.8), 0.40)

	if r.Score != 0 {
		t.Fatalf("expected score 0, got %v", r.Score)
	}
	if r.Severity != models.SeverityAligned {
		t.Fatalf("expected ALIGNED, got %s", r.Severity)
	}
	if r.Material {
		t.Fatal("identical views must not be material")
	}
}

func TestOppositeViewsScoreHigh(t *testing.T) {
	det := view(models.StanceBullish, models.BiasUpside, 0.9)
	assisted := view(models.StanceBearish, models.BiasCaution, 0.3)
	r := Compute(det, assisted, 0.40)

	// stance and bias fully disagree; the 0.6 confidence gap saturates.
	want := 0.45*1.0 + 0.30*1.0 + 0.25*1.0
	if math.Abs(r.Score-want) > 1e-9 {
		t.Fatalf("expected score %v, got %v", want, r.Score)
	}
	if r.Severity != models.SeverityCritical {
		t.Fatalf("expected CRITICAL, got %s", r.Severity)
	}
	if !r.Material {
		t.Fatal("full disagreement must be material")
	}
}

func TestConfidenceGapAloneContributes(t *testing.T) {
	det := view(models.StanceNeutral, models.BiasIncome, 0.9)
	assisted := view(models.StanceNeutral, models.BiasIncome, 0.4)
	r := Compute(det, assisted, 0.20)

	// Labels agree; the saturated confidence gap carries its full weight.
	if math.Abs(r.Score-0.25) > 1e-9 {
		t.Fatalf("expected score 0.25, got %v", r.Score)
	}
	if r.StanceDivergence != 0 || r.BiasDivergence != 0 {
		t.Fatalf("label dimensions must be zero: %+v", r)
	}
	if !r.Material {
		t.Fatal("score 0.25 must be material at threshold 0.20")
	}
	if r.Material && r.Severity != models.SeverityMinor {
		t.Fatalf("expected MINOR, got %s", r.Severity)
	}
}

func TestAdjacentStanceIsHalfDivergence(t *testing.T) {
	det := view(models.StanceNeutral, models.BiasIncome, 0.8)
	assisted := view(models.StanceBullish, models.BiasIncome, 0.8)
	r := Compute(det, assisted, 0.40)

	if r.StanceDivergence != 0.5 {
		t.Fatalf("expected stance divergence 0.5, got %v", r.StanceDivergence)
	}
	if r.ConfidenceDivergence != 0 {
		t.Fatalf("expected confidence divergence 0, got %v", r.ConfidenceDivergence)
	}
}

func TestSeverityBands(t *testing.T) {
	cases := []struct {
		score float64
		want  models.Severity
	}{
		{0.0, models.SeverityAligned},
		{0.199, models.SeverityAligned},
		{0.20, models.SeverityMinor},
		{0.399, models.SeverityMinor},
		{0.40, models.SeverityMajor},
		{0.649, models.SeverityMajor},
		{0.65, models.SeverityCritical},
		{1.0, models.SeverityCritical},
	}
	for _, c := range cases {
		if got := SeverityFor(c.score); got != c.want {
			t.Fatalf("score %v: got %s, want %s", c.score, got, c.want)
		}
	}
}

func TestMaterialityUsesThreshold(t *testing.T) {
	det := view(models.StanceNeutral, models.BiasIncome, 0.9)
	assisted := view(models.StanceNeutral, models.BiasIncome, 0.4)

	if Compute(det, assisted, 0.40).Material {
		t.Fatal("score 0.25 must not be material at threshold 0.40")
	}
	if !Compute(det, assisted, 0.25).Material {
		t.Fatal("score 0.25 must be material at threshold 0.25 (inclusive)")
	}
}

func TestWideningConfidenceGapNeverLowersMateriality(t *testing.T) {
	// Labels held fixed; only the confidence gap grows. The score must be
	// non-decreasing and materiality must never flip back off.
	const threshold = 0.20
	prevScore := -1.0
	prevMaterial := false
	for gap := 0.0; gap <= 0.90001; gap += 0.05 {
		det := view(models.StanceNeutral, models.BiasIncome, 0.95)
		assisted := view(models.StanceNeutral, models.BiasIncome, 0.95-gap)
		r := Compute(det, assisted, threshold)

		if r.Score < prevScore {
			t.Fatalf("gap %.2f: score decreased from %v to %v", gap, prevScore, r.Score)
		}
		if prevMaterial && !r.Material {
			t.Fatalf("gap %.2f: materiality regressed after being established", gap)
		}
		prevScore = r.Score
		prevMaterial = r.Material
	}
	if !prevMaterial {
		t.Fatal("the widest gap must end up material")
	}
}

func TestReportEchoesBothViews(t *testing.T) {
	det := view(models.StanceBullish, models.BiasUpside, 0.823)
	assisted := view(models.StanceBearish, models.BiasCaution, 0.41)
	r := Compute(det, assisted, 0.40)

	if r.Stance != [2]string{"BULLISH", "BEARISH"} {
		t.Fatalf("unexpected stance pair: %v", r.Stance)
	}
	if r.CoveredCallBias != [2]string{"UPSIDE", "CAUTION"} {
		t.Fatalf("unexpected bias pair: %v", r.CoveredCallBias)
	}
	if r.Confidence[0] != 0.823 || r.Confidence[1] != 0.41 {
		t.Fatalf("unexpected confidence pair: %v", r.Confidence)
	}
	if r.ActionHint == "" {
		t.Fatal("action hint must be populated")
	}
}
