package extractor

import "fmt"

// Result is the outcome of one field cascade. Source names the rule that
// matched, which tests use to verify cascade ordering.
type Result struct {
	Value  string
	Found  bool
	Source string
}

// Rule is one extraction strategy: either structural (a DOM locator) or
// textual (a pattern over the rendered markup). Extract returns the value and
// whether the rule is confident in it; an error means the rule could not be
// evaluated at all, which aborts the whole cascade as an engine fault.
type Rule struct {
	Name    string
	Extract func() (string, bool, error)
}

// firstMatch evaluates rules in priority order and stops at the first
// confident match; lower-priority rules are never invoked after a match.
func firstMatch(rules []Rule) (Result, error) {
	for _, r := range rules {
		value, ok, err := r.Extract()
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", r.Name, err)
		}
		if ok {
			return Result{Value: value, Found: true, Source: r.Name}, nil
		}
	}
	return Result{}, nil
}
