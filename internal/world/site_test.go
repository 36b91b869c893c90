package world

import "testing"

func TestSurveyDeterministic(t *testing.T) {
	a := Survey(42)
	b := Survey(42)
	if a != b {
		t.Fatalf("same seed surveyed differently: %+v vs %+v", a, b)
	}
}

func TestSurveyVariesWithSeed(t *testing.T) {
	a := Survey(1)
	b := Survey(2)
	if a == b {
		t.Fatalf("distinct seeds produced identical sites: %+v", a)
	}
}

func TestSurveyBounds(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		s := Survey(seed)
		for name, v := range map[string]float64{
			"fertility": s.Fertility,
			"quarry":    s.Quarry,
			"shelter":   s.Shelter,
		} {
			if v < 1-span || v > 1+span {
				t.Errorf("seed %d: %s modifier %v outside [%v, %v]", seed, name, v, 1-span, 1+span)
			}
		}
	}
}
