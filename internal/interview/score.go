package interview

// Score bounds shared by every dimension.
const (
	ScoreMin = 0
	ScoreMax = 100
)

// ScoreSet holds the four scoring dimensions of a completed session.
type ScoreSet struct {
	Confidence       int `json:"confidence"`
	Correctness      int `json:"correctness"`
	DepthOfKnowledge int `json:"depth_of_knowledge"`
	RoleFit          int `json:"role_fit"`
}

// Validate rejects any dimension outside [ScoreMin, ScoreMax].
func (s ScoreSet) Validate() error {
	dims := []struct {
		name  string
		value int
	}{
		{"confidence", s.Confidence},
		{"correctness", s.Correctness},
		{"depthOfKnowledge", s.DepthOfKnowledge},
		{"roleFit", s.RoleFit},
	}
	for _, d := range dims {
		if d.value < ScoreMin || d.value > ScoreMax {
			return invalid(d.name, "Score %s must be between %d and %d, got %d.", d.name, ScoreMin, ScoreMax, d.value)
		}
	}
	return nil
}
