package classify

import (
	"fmt"

	"github.com/mailtriage/mailtriage/internal/keywords"
)

// Evaluator derives one field of a classification from a message.
// Implementations must be pure and safe for concurrent use.
type Evaluator[T any] interface {
	Evaluate(msg *RawMessage) T
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc[T any] func(msg *RawMessage) T

// Evaluate calls f(msg).
func (f EvaluatorFunc[T]) Evaluate(msg *RawMessage) T {
	return f(msg)
}

// Classifier assembles a Result from independent evaluators.
type Classifier struct {
	Priority Evaluator[Priority]
	DueDate  Evaluator[*Date]
	Pending  Evaluator[bool]
}

// New builds a classifier backed by dict. A nil dict means keywords.Default().
func New(dict *keywords.Dictionary, opts Options) (*Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier options: %w", err)
	}
	if dict == nil {
		dict = keywords.Default()
	} else {
		dict = keywords.Merge(dict)
	}
	if err := dict.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dictionary: %w", err)
	}

	return &Classifier{
		Priority: NewPriorityClassifier(dict, opts.Thresholds),
		DueDate:  NewDueDateExtractor(dict, opts),
		Pending:  NewPendingDetector(dict, opts.QuestionMarks),
	}, nil
}

// Classify returns the classification of msg. It never fails; a message with
// no usable content classifies as Normal, no due date, not pending.
func (c *Classifier) Classify(msg *RawMessage) Result {
	if msg == nil {
		return Result{Priority: Normal}
	}
	return Result{
		UID:       msg.UID,
		Priority:  c.Priority.Evaluate(msg),
		DueDate:   c.DueDate.Evaluate(msg),
		IsPending: c.Pending.Evaluate(msg),
	}
}
