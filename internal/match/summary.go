package match

// Summary aggregates a ranked match list.
type Summary struct {
	Total          int            `json:"total" yaml:"total"`
	AverageScore   float64        `json:"average_score" yaml:"average_score"`
	HighConfidence int            `json:"high_confidence" yaml:"high_confidence"`
	Reasons        map[string]int `json:"reasons" yaml:"reasons"`
}

// Summarize counts matches, their average score, those at or above the
// engine's high-confidence threshold, and how often each reason appears.
func (e *Engine) Summarize(matches []ScoredMatch) Summary {
	s := Summary{Total: len(matches), Reasons: map[string]int{}}
	if len(matches) == 0 {
		return s
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
		if m.Score >= e.cfg.HighConfidence {
			s.HighConfidence++
		}
		for _, r := range m.Reasons {
			s.Reasons[r]++
		}
	}
	s.AverageScore = round4(sum / float64(len(matches)))
	return s
}
