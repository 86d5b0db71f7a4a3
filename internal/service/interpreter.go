package service

import (
	"bytes"
	"encoding/json"
	"math"
	"scholar-agent-go/internal/model"
	"strings"
)

// InterpretationKind 标识模型回复被归入的类别。
type InterpretationKind int

const (
	// PlainAnswer 普通文本回答
	PlainAnswer InterpretationKind = iota
	// Suggestion 带说明的完整文档改写
	Suggestion
	// RawFallback JSON 合法但不符合任何预期结构
	RawFallback
	// TypedReport 风险分析报告
	TypedReport
)

func (k InterpretationKind) String() string {
	switch k {
	case PlainAnswer:
		return "plain"
	case Suggestion:
		return "suggestion"
	case RawFallback:
		return "raw"
	case TypedReport:
		return "report"
	}
	return "unknown"
}

// Interpretation 是模型回复解析后的结果。
// Text 总是可以直接展示；Suggestion 时 Rewrite 为完整文档，TypedReport 时 Report 非空。
type Interpretation struct {
	Kind    InterpretationKind
	Text    string
	Rewrite string
	Report  *model.RiskReport
}

// riskPayload 允许分数以小数形式出现，解析后四舍五入。
type riskPayload struct {
	OverallScore float64 `json:"overallScore"`
	Verdict      string  `json:"verdict"`
	Details      []struct {
		Criterion string  `json:"criterion"`
		Score     float64 `json:"score"`
		Feedback  string  `json:"feedback"`
	} `json:"details"`
}

// Interpret 解析通用对话/编辑回复，任何格式问题都退化为纯文本，不返回错误。
func Interpret(raw string) Interpretation {
	candidate, ok := jsonSpan(raw)
	if !ok {
		return Interpretation{Kind: PlainAnswer, Text: raw}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return Interpretation{Kind: PlainAnswer, Text: raw}
	}

	explanation := stringField(obj, "explanation")
	if rewrite := stringField(obj, "rewritten_text"); rewrite != "" {
		if explanation == "" {
			explanation = defaultSuggestionText
		}
		return Interpretation{Kind: Suggestion, Text: explanation, Rewrite: rewrite}
	}
	if explanation != "" {
		return Interpretation{Kind: PlainAnswer, Text: explanation}
	}
	return Interpretation{Kind: RawFallback, Text: compact(candidate)}
}

// InterpretRisk 解析风险分析回复。只有顶层对象本身是合法报告时才返回 TypedReport，
// 否则原样返回文本。
func InterpretRisk(raw string) Interpretation {
	candidate, ok := jsonSpan(raw)
	if !ok {
		return Interpretation{Kind: RawFallback, Text: raw}
	}

	var payload riskPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return Interpretation{Kind: RawFallback, Text: raw}
	}
	verdict := model.Verdict(strings.TrimSpace(payload.Verdict))
	if !verdict.Valid() {
		return Interpretation{Kind: RawFallback, Text: raw}
	}

	report := model.RiskReport{
		OverallScore: roundClamp(payload.OverallScore, 0, 100),
		Verdict:      verdict,
		Details:      make([]model.CriterionScore, 0, len(payload.Details)),
	}
	for _, d := range payload.Details {
		report.Details = append(report.Details, model.CriterionScore{
			Criterion: d.Criterion,
			Score:     roundClamp(d.Score, 1, 10),
			Feedback:  d.Feedback,
		})
	}
	return Interpretation{Kind: TypedReport, Text: riskDoneText, Report: &report}
}

// jsonSpan 截取第一个 '{' 到最后一个 '}' 之间的内容，容忍模型在 JSON 前后包裹说明文字或代码块。
func jsonSpan(raw string) (string, bool) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last == -1 || last <= first {
		return "", false
	}
	return raw[first : last+1], true
}

// stringField 只接受非空字符串字段，其它类型视为缺失。
func stringField(obj map[string]json.RawMessage, key string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func compact(candidate string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(candidate)); err != nil {
		return candidate
	}
	return buf.String()
}

// roundClamp 先在浮点域内截断再取整，超出 int 范围的分数不会溢出。
func roundClamp(v float64, lo, hi int) int {
	v = math.Round(v)
	if v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}
