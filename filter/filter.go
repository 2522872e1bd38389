package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/xerrors"
)

// ConditionPattern is matched against every condition segment. The property group is
// greedy, so it extends to the last comparator character of the segment.
const ConditionPattern = `^(.+)([<>=])(.*)$`

var conditionRegex = regexp.MustCompile(ConditionPattern)

// Separator between the conditions of an expression.
const Separator = ","

// Comparator is how a condition compares a property with its value. Its string value
// is its symbol.
type Comparator string

const (
	Equals      Comparator = "="
	GreaterThan Comparator = ">"
	LessThan    Comparator = "<"
)

// Comparators lists every supported comparator.
var Comparators = []Comparator{Equals, GreaterThan, LessThan}

func (comparator Comparator) String() string {
	return string(comparator)
}

// ParseError is returned for a condition segment that cannot be parsed. Token is set
// when the comparator itself was not recognized.
type ParseError struct {
	Segment string
	Token   string
}

func (parseErr *ParseError) Error() string {
	if parseErr.Token != "" {
		return fmt.Sprintf(
			"Condition comparator not supported: '%v'", parseErr.Token,
		)
	}
	return fmt.Sprintf(
		"The filter condition must match '%v' but is '%v'",
		ConditionPattern,
		parseErr.Segment,
	)
}

// ParseComparator returns the comparator for symbol.
func ParseComparator(symbol string) (Comparator, error) {
	comparator, ok := lo.Find(Comparators, func(comparator Comparator) bool {
		return string(comparator) == symbol
	})
	if !ok {
		return "", &ParseError{Segment: symbol, Token: symbol}
	}
	return comparator, nil
}

// Condition is a single property comparison.
type Condition struct {
	PropertyName string
	Comparator   Comparator
	Value        string
}

// ParseCondition parses one condition segment.
func ParseCondition(segment string) (Condition, error) {
	groups := conditionRegex.FindStringSubmatch(segment)
	if groups == nil {
		return Condition{}, &ParseError{Segment: segment}
	}

	// The regex only captures known symbols. This guards comparators added to the
	// regex before the lookup.
	comparator, err := ParseComparator(groups[2])
	if err != nil {
		return Condition{}, &ParseError{Segment: segment, Token: groups[2]}
	}

	return Condition{
		PropertyName: groups[1],
		Comparator:   comparator,
		Value:        groups[3],
	}, nil
}

func (condition Condition) String() string {
	return condition.PropertyName + condition.Comparator.String() + condition.Value
}

/*
Matches reports whether actual satisfies the condition. Equals compares strings. The
ordering comparators compare numerically when both actual and the condition value are
numbers, and lexically otherwise.
*/
func (condition Condition) Matches(actual string) bool {
	if condition.Comparator == Equals {
		return actual == condition.Value
	}

	ordering := compare(actual, condition.Value)
	switch condition.Comparator {
	case GreaterThan:
		return ordering > 0
	case LessThan:
		return ordering < 0
	}
	return false
}

func compare(actual string, expected string) int {
	actualNumber, actualErr := strconv.ParseFloat(actual, 64)
	expectedNumber, expectedErr := strconv.ParseFloat(expected, 64)

	if actualErr != nil || expectedErr != nil {
		return strings.Compare(actual, expected)
	}

	switch {
	case actualNumber > expectedNumber:
		return 1
	case actualNumber < expectedNumber:
		return -1
	}
	return 0
}

// Expression is an ordered list of conditions. The zero value is the empty
// expression.
type Expression struct {
	Conditions []Condition
}

// Empty is the expression of an absent or empty Filter header.
var Empty = Expression{}

/*
Parse parses a Filter header value. An empty value is the Empty expression. Empty
trailing segments are dropped, so "a=1," is the single condition "a=1". Parsing is
atomic: any bad segment fails the whole expression with a *ParseError.
*/
func Parse(value string) (Expression, error) {
	if value == "" {
		return Empty, nil
	}

	segments := strings.Split(value, Separator)
	for len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return Empty, nil
	}

	conditions := make([]Condition, 0, len(segments))
	for _, segment := range segments {
		condition, err := ParseCondition(segment)
		if err != nil {
			return Empty, err
		}
		conditions = append(conditions, condition)
	}

	return Expression{Conditions: conditions}, nil
}

// MustParse is like Parse but panics on error. For expressions known at compile time.
func MustParse(value string) Expression {
	expression, err := Parse(value)
	if err != nil {
		panic(xerrors.Errorf("bad filter expression: %w", err))
	}
	return expression
}

func (expression Expression) IsEmpty() bool {
	return len(expression.Conditions) == 0
}

// Equal reports whether both expressions hold the same conditions in the same order.
// All empty expressions are equal.
func (expression Expression) Equal(other Expression) bool {
	if len(expression.Conditions) != len(other.Conditions) {
		return false
	}
	for index, condition := range expression.Conditions {
		if condition != other.Conditions[index] {
			return false
		}
	}
	return true
}

func (expression Expression) String() string {
	return strings.Join(
		lo.Map(expression.Conditions, func(condition Condition, _ int) string {
			return condition.String()
		}),
		Separator,
	)
}

// Matches reports whether every condition holds for the properties returned by
// fields. A condition on a missing property does not hold.
func (expression Expression) Matches(fields func(property string) (string, bool)) bool {
	return lo.EveryBy(expression.Conditions, func(condition Condition) bool {
		actual, ok := fields(condition.PropertyName)
		return ok && condition.Matches(actual)
	})
}

func (expression Expression) MarshalText() ([]byte, error) {
	return []byte(expression.String()), nil
}

func (expression *Expression) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*expression = parsed
	return nil
}
