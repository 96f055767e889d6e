package model

// RiskLevel orders low < medium < high.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var riskSeverity = map[RiskLevel]int{
	RiskLow:    0,
	RiskMedium: 1,
	RiskHigh:   2,
}

// Severity returns the numeric rank of the level.
func (l RiskLevel) Severity() int {
	return riskSeverity[l]
}

// Max returns the more severe of the two levels.
func (l RiskLevel) Max(other RiskLevel) RiskLevel {
	if other.Severity() > l.Severity() {
		return other
	}
	return l
}

// RiskAssessment is derived on demand from checklist items, conflicts and the
// project target date. It is never persisted.
type RiskAssessment struct {
	Level           RiskLevel `json:"level"`
	CompletionRate  float64   `json:"completion_rate"`
	CriticalPending int       `json:"critical_pending"`
	HighPending     int       `json:"high_pending"`
	Conflicts       int       `json:"conflicts"`
	Reasons         []string  `json:"reasons"`
	Recommendations []string  `json:"recommendations"`
	CanDeliver      bool      `json:"can_deliver"`
}
