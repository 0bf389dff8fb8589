package entities

// Source tells where an answer came from.
type Source int

const (
	SourceCached Source = iota
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceCached:
		return "cached"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// OutcomeKind is the terminal state of a resolution.
type OutcomeKind int

const (
	OutcomeAnswered OutcomeKind = iota
	OutcomeQuotaExceeded
	OutcomeNoAnswer
	OutcomeFallbackError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAnswered:
		return "answered"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	case OutcomeNoAnswer:
		return "no_answer"
	case OutcomeFallbackError:
		return "fallback_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving a question.
// Answer and Source are set only for OutcomeAnswered, Reason only for
// OutcomeFallbackError.
type Outcome struct {
	Kind   OutcomeKind
	Answer string
	Source Source
	Reason string
}

// Answered builds an OutcomeAnswered.
func Answered(answer string, source Source) Outcome {
	return Outcome{Kind: OutcomeAnswered, Answer: answer, Source: source}
}

// QuotaExceeded builds an OutcomeQuotaExceeded.
func QuotaExceeded() Outcome {
	return Outcome{Kind: OutcomeQuotaExceeded}
}

// NoAnswer builds an OutcomeNoAnswer.
func NoAnswer() Outcome {
	return Outcome{Kind: OutcomeNoAnswer}
}

// FallbackFailed builds an OutcomeFallbackError.
func FallbackFailed(reason string) Outcome {
	return Outcome{Kind: OutcomeFallbackError, Reason: reason}
}
