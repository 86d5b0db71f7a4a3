package model

// Verdict 是 desk rejection 风险的固定分级。
type Verdict string

const (
	VerdictReadyToPublish Verdict = "Yayına Hazır"
	VerdictLowRisk        Verdict = "Düşük Risk"
	VerdictMediumRisk     Verdict = "Orta Risk"
	VerdictHighRisk       Verdict = "Yüksek Risk"
)

// Valid 判断 verdict 是否属于固定枚举。
func (v Verdict) Valid() bool {
	switch v {
	case VerdictReadyToPublish, VerdictLowRisk, VerdictMediumRisk, VerdictHighRisk:
		return true
	}
	return false
}

// CriterionScore 是单项评审标准的得分。
type CriterionScore struct {
	Criterion string `json:"criterion"`
	Score     int    `json:"score"` // 1-10
	Feedback  string `json:"feedback"`
}

// RiskReport 是风险分析操作产出的结构化报告。
type RiskReport struct {
	OverallScore int              `json:"overallScore"` // 0-100
	Verdict      Verdict          `json:"verdict"`
	Details      []CriterionScore `json:"details"`
}
