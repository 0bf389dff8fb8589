// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "strings"

// Fact is a stored question/answer pair.
// Facts are immutable once stored.
type Fact struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// KnowledgeBase is the ordered set of known facts.
// Its JSON form is the persisted knowledge document.
type KnowledgeBase struct {
	Questions []Fact `json:"questions"`
}

// NewKnowledgeBase returns an empty knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{Questions: []Fact{}}
}

// AnswerFor returns the answer of the first fact whose question equals
// question exactly.
func (kb *KnowledgeBase) AnswerFor(question string) (string, bool) {
	for _, f := range kb.Questions {
		if f.Question == question {
			return f.Answer, true
		}
	}
	return "", false
}

// AddFact appends a fact. Duplicate questions are allowed; lookups are
// first-match-wins.
func (kb *KnowledgeBase) AddFact(question, answer string) {
	kb.Questions = append(kb.Questions, Fact{Question: question, Answer: answer})
}

// KnownQuestions returns the stored questions in store order.
func (kb *KnowledgeBase) KnownQuestions() []string {
	questions := make([]string, len(kb.Questions))
	for i, f := range kb.Questions {
		questions[i] = f.Question
	}
	return questions
}

// Clone returns a deep copy, so callers can persist a snapshot without
// sharing the backing array.
func (kb *KnowledgeBase) Clone() *KnowledgeBase {
	facts := make([]Fact, len(kb.Questions))
	copy(facts, kb.Questions)
	return &KnowledgeBase{Questions: facts}
}

// QuotaState is the persisted fallback usage counter.
type QuotaState struct {
	QueryCount int `json:"query_count"`
}

// CanQuery reports whether another fallback query is allowed under limit.
func (q QuotaState) CanQuery(limit int) bool {
	return q.QueryCount < limit
}

// Record returns the state after one more fallback query.
func (q QuotaState) Record() QuotaState {
	return QuotaState{QueryCount: q.QueryCount + 1}
}

// NormalizeQuestion is the canonical form used for questions recorded by
// this process: trimmed, inner whitespace collapsed, lower-cased.
func NormalizeQuestion(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
