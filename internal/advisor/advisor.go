package advisor

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mirrorcli/mirror/internal/model"
)

// Fallback values returned when the advisory service is unreachable or its
// response cannot be parsed. They are part of the boundary contract: callers
// rely on getting these exact values instead of an error.
const (
	FallbackSocraticQuestion = "Does this retreat feel familiar, or is it merely a continuation of your last six months?"
	FallbackGradeFeedback    = "Evidence rejected."
	FallbackVerifyFeedback   = "Verification service offline. Integrity check failed."
	FallbackGatekeeper       = "Connection unstable. But you know the truth. Get back to work."
	FallbackBehaviorReport   = "The registry is silent. Your failure is loud."
	FallbackJournalReflect   = "A labyrinth of words to hide the fact that you still haven't started."
	FallbackIntake           = "Profile intake recorded. The pathology will reveal itself in the ledger."
	FallbackPatternTruth     = "Analysis unavailable. The pattern persists regardless."
)

// FallbackQuiz is returned when quiz generation fails.
var FallbackQuiz = []string{
	"Explain the specific approach you utilized.",
	"Detail the hardest step and how you handled it.",
	"Identify one weakness in what you produced.",
}

// FallbackInquisition is returned when inquisition generation fails.
var FallbackInquisition = []string{
	"Why did you prioritize passive consumption this morning?",
	"Identify the lie behind your most recent delay.",
	"Quantify the cost of your avoidance so far.",
}

// QuizGrade is the verdict on submitted quiz answers.
type QuizGrade struct {
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`
}

// Verification is the verdict on completion evidence. Scores of 60 and
// above pass.
type Verification struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	IsValid  bool   `json:"isValid"`
}

// VerifyPassMark is the minimum score accepted as proof of work.
const VerifyPassMark = 60

// Verdict is the gatekeeper's ruling on a pause plea.
type Verdict string

const (
	VerdictAllow Verdict = "ALLOW"
	VerdictDeny  Verdict = "DENY"
	// VerdictPress means the interrogation continues with another question.
	VerdictPress Verdict = "PRESS"
)

// GatekeeperResult is one exchange in the pause interrogation.
type GatekeeperResult struct {
	Verdict  Verdict `json:"verdict"`
	Response string  `json:"response"`
}

// PatternAnalysis is the structured weekly behaviour report.
type PatternAnalysis struct {
	OverallScore          int                  `json:"overallScore"`
	PrimaryPattern        string               `json:"primaryPattern"`
	EscapePatterns        []EscapePattern      `json:"escapePatterns"`
	ProductivityInsights  ProductivityInsights `json:"productivityInsights"`
	ExcusePatterns        []string             `json:"excusePatterns"`
	SelfDeceptionFlags    []string             `json:"selfDeceptionFlags"`
	Strengths             []string             `json:"strengths"`
	UrgentRecommendations []Recommendation     `json:"urgentRecommendations"`
	HonestTruth           string               `json:"honestTruth"`
}

// EscapePattern describes one recurring avoidance behaviour.
type EscapePattern struct {
	Pattern     string `json:"pattern"`
	Frequency   string `json:"frequency"`
	TriggerTime string `json:"triggerTime"`
}

// ProductivityInsights summarises when and on what the user actually works.
type ProductivityInsights struct {
	PeakHours     []string `json:"peakHours"`
	WorstHours    []string `json:"worstHours"`
	BestCategory  string   `json:"bestCategory"`
	WorstCategory string   `json:"worstCategory"`
}

// Recommendation is one urgent corrective action.
type Recommendation struct {
	Recommendation string `json:"recommendation"`
	Reason         string `json:"reason"`
}

func logDigest(logs []model.LogEntry, max int) string {
	if len(logs) > max {
		logs = logs[:max]
	}
	data, err := json.Marshal(logs)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// IntakeProfile submits the onboarding narrative for profiling and returns
// the profile text.
func (c *Client) IntakeProfile(ctx context.Context, p model.UserProfile) string {
	data, _ := json.Marshal(p)
	text, err := c.generate(ctx,
		"ROLE: Behavioral pathologist. The user is an intellectual procrastinator. "+
			"Create a ruthless psychological profile from this intake. Identify the "+
			"shield activity they hide behind.",
		"OBLIGATION INTAKE: "+string(data), false)
	if err != nil || strings.TrimSpace(text) == "" {
		return FallbackIntake
	}
	return strings.TrimSpace(text)
}

// SocraticQuestion produces the single forensic question asked before a task
// may be repudiated.
func (c *Client) SocraticQuestion(ctx context.Context, task model.Task, recent []model.LogEntry) string {
	text, err := c.generate(ctx,
		"ROLE: Interrogator. The user is trying to delete or avoid a task. "+
			"Ask ONE forensic question (max 12 words) that cuts through their rationalization.",
		"REPUDIATION ATTEMPT: "+task.Title+". LOGS: "+logDigest(recent, 10), false)
	if err != nil || strings.TrimSpace(text) == "" {
		return FallbackSocraticQuestion
	}
	return strings.TrimSpace(text)
}

// GenerateQuiz produces three highly specific verification questions about
// the completed task.
func (c *Client) GenerateQuiz(ctx context.Context, taskTitle string) []string {
	text, err := c.generate(ctx,
		"Generate 3 HIGHLY SPECIFIC technical questions verifying real work on "+
			"the named task. No generic questions. Return ONLY a JSON array of 3 strings.",
		"VERIFICATION_AUDIT: \""+taskTitle+"\"", true)
	if err != nil {
		return FallbackQuiz
	}
	var questions []string
	if err := json.Unmarshal([]byte(text), &questions); err != nil || len(questions) == 0 {
		return FallbackQuiz
	}
	return questions
}

// GradeQuiz judges the quiz answers. Vague or generic answers fail.
func (c *Client) GradeQuiz(ctx context.Context, questions, answers []string) QuizGrade {
	q, _ := json.Marshal(questions)
	a, _ := json.Marshal(answers)
	fallback := QuizGrade{Passed: false, Feedback: FallbackGradeFeedback}

	text, err := c.generate(ctx,
		"ROLE: Ruthless senior reviewer. FAIL criteria: vague answers, generic "+
			"definitions, lack of rigor. Return JSON: { \"passed\": boolean, \"feedback\": string }.",
		"EVIDENCE: Q: "+string(q)+" | A: "+string(a), true)
	if err != nil {
		return fallback
	}
	var grade QuizGrade
	if err := json.Unmarshal([]byte(text), &grade); err != nil {
		return fallback
	}
	return grade
}

// VerifyCompletion scores free-text proof of work for a task.
func (c *Client) VerifyCompletion(ctx context.Context, task model.Task, evidence string) Verification {
	fallback := Verification{Score: 0, Feedback: FallbackVerifyFeedback, IsValid: false}

	text, err := c.generate(ctx,
		"ROLE: AI auditor. Score the evidence 0-100 for specificity and technical "+
			"credibility against the task. Return JSON: { \"score\": number, "+
			"\"feedback\": string, \"isValid\": boolean }.",
		"TASK: \""+task.Title+"\". EVIDENCE: \""+evidence+"\"", true)
	if err != nil {
		return fallback
	}
	var v Verification
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return fallback
	}
	v.IsValid = v.Score >= VerifyPassMark
	return v
}

// Interrogate runs one round of the gatekeeper exchange over a pause plea.
func (c *Client) Interrogate(ctx context.Context, taskTitle, plea string, history []string) GatekeeperResult {
	h, _ := json.Marshal(history)
	fallback := GatekeeperResult{Verdict: VerdictPress, Response: FallbackGatekeeper}

	text, err := c.generate(ctx,
		"ROLE: Gatekeeper judging a request to abandon the active task. Rule on the "+
			"plea. Return JSON: { \"verdict\": \"ALLOW\"|\"DENY\"|\"PRESS\", "+
			"\"response\": string }. PRESS means ask a harder follow-up question.",
		"TASK: \""+taskTitle+"\". PLEA: \""+plea+"\". HISTORY: "+string(h), true)
	if err != nil {
		return fallback
	}
	var result GatekeeperResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return fallback
	}
	switch result.Verdict {
	case VerdictAllow, VerdictDeny, VerdictPress:
		return result
	}
	return fallback
}

// InquisitionQuestions produces three forensic questions from recent logs.
func (c *Client) InquisitionQuestions(ctx context.Context, logs []model.LogEntry) []string {
	text, err := c.generate(ctx,
		"Generate 3 forensic questions based on these logs. Target the pattern of "+
			"intellectual procrastination. Return ONLY a JSON array of 3 strings.",
		"REGISTRY_AUDIT: "+logDigest(logs, 30), true)
	if err != nil {
		return FallbackInquisition
	}
	var questions []string
	if err := json.Unmarshal([]byte(text), &questions); err != nil || len(questions) == 0 {
		return FallbackInquisition
	}
	return questions
}

// AnalyzeBehavior produces the free-text forensic report over the ledger.
func (c *Client) AnalyzeBehavior(ctx context.Context, logs []model.LogEntry, answers []string) string {
	a, _ := json.Marshal(answers)
	text, err := c.generate(ctx,
		"ROLE: Behavioral pathologist performing the weekly forensic autopsy. "+
			"Name: 1. The Pattern. 2. The Lie. 3. The Three Commands for Execution.",
		"FULL REGISTRY: "+logDigest(logs, 50)+". ANSWERS: "+string(a), false)
	if err != nil || strings.TrimSpace(text) == "" {
		return FallbackBehaviorReport
	}
	return strings.TrimSpace(text)
}

// ReflectOnJournal punctures the rationalization in a journal entry with one
// sharp sentence.
func (c *Client) ReflectOnJournal(ctx context.Context, entry string) string {
	text, err := c.generate(ctx,
		"Analyze this dump. Find the rationalization and puncture it with one sharp sentence.",
		"NEURAL DUMP: \""+entry+"\"", false)
	if err != nil || strings.TrimSpace(text) == "" {
		return FallbackJournalReflect
	}
	return strings.TrimSpace(text)
}

// PatternReport produces the structured weekly pattern analysis.
func (c *Client) PatternReport(ctx context.Context, tasks []model.Task, logs []model.LogEntry, journals []model.JournalEntry) PatternAnalysis {
	fallback := PatternAnalysis{
		PrimaryPattern: "UNKNOWN",
		HonestTruth:    FallbackPatternTruth,
	}

	t, _ := json.Marshal(tasks)
	text, err := c.generate(ctx,
		"Produce the weekly behaviour pattern report as JSON with keys: overallScore "+
			"(0-100), primaryPattern, escapePatterns[{pattern,frequency,triggerTime}], "+
			"productivityInsights{peakHours,worstHours,bestCategory,worstCategory}, "+
			"excusePatterns[], selfDeceptionFlags[], strengths[], "+
			"urgentRecommendations[{recommendation,reason}], honestTruth.",
		"TASKS: "+string(t)+". LOGS: "+logDigest(logs, 50)+
			". JOURNAL_COUNT: "+strconv.Itoa(len(journals)), true)
	if err != nil {
		return fallback
	}
	var report PatternAnalysis
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return fallback
	}
	return report
}
