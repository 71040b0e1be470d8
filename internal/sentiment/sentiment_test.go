package sentiment

import "testing"

func TestScoreNeutralOnEmptyOrUnknown(t *testing.T) {
	if got := Score(""); got != 0 {
		t.Fatalf("empty text should be neutral, got %v", got)
	}
	if got := Score("the quick brown fox"); got != 0 {
		t.Fatalf("lexicon-free text should be neutral, got %v", got)
	}
}

func TestScoreSignAndBounds(t *testing.T) {
	pos := Score("bullish on this launch, great work shipping")
	if pos <= 0 || pos > 1 {
		t.Fatalf("expected positive score in (0,1], got %v", pos)
	}
	neg := Score("bearish, total dump, everyone rekt")
	if neg >= 0 || neg < -1 {
		t.Fatalf("expected negative score in [-1,0), got %v", neg)
	}
}

func TestScoreDeterministic(t *testing.T) {
	text := "excited about this amazing launch"
	first := Score(text)
	for i := 0; i < 5; i++ {
		if Score(text) != first {
			t.Fatalf("score not deterministic")
		}
	}
}

func TestScoreIntensityGrows(t *testing.T) {
	weak := Score("good")
	strong := Score("good great amazing awesome")
	if strong <= weak {
		t.Fatalf("more positive hits should raise the score: %v vs %v", weak, strong)
	}
}
