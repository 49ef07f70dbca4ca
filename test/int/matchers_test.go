package int

import (
	"fmt"
	"strings"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

func toError(x interface{}) (error, bool) {
	err, ok := x.(error)
	if !ok {
		return nil, false
	}

	return err, true
}

type MatchBotErrorMatcher struct {
	Error error
}

func (matcher *MatchBotErrorMatcher) Match(actual interface{}) (success bool, err error) {
	err, ok := toError(actual)

	if !ok {
		return false, fmt.Errorf("MatchBotError matcher required an error, Got:\n%s", format.Object(actual, 1))
	}

	return strings.Contains(err.Error(), matcher.Error.Error()), nil
}

func (matcher *MatchBotErrorMatcher) FailureMessage(actual interface{}) (message string) {
	return format.Message(actual, "to be", matcher.Error.Error())
}

func (matcher *MatchBotErrorMatcher) NegatedFailureMessage(actual interface{}) (message string) {
	return format.Message(actual, "not to be", matcher.Error.Error())
}

func MatchBotError(error error) types.GomegaMatcher {
	return &MatchBotErrorMatcher{
		Error: error,
	}
}
