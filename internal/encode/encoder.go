package encode

import (
	"fmt"
	"sort"
)

// ErrUnseenRoute is returned when a key was not part of the fitted
// vocabulary. The serving side must keep encoder parity with training.
var ErrUnseenRoute = fmt.Errorf("route key not seen during fit")

// Encoder maps route-key strings to integer codes in [0, distinct).
// Encoded integers are meaningless without the mapping, so the mapping is
// persisted verbatim alongside the model.
type Encoder struct {
	Classes map[string]int `json:"classes"`
}

// Fit assigns each distinct key a unique integer. Keys are sorted first so
// the assignment is deterministic regardless of input order.
func Fit(keys []string) *Encoder {
	distinct := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		distinct[k] = struct{}{}
	}
	ordered := make([]string, 0, len(distinct))
	for k := range distinct {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)
	classes := make(map[string]int, len(ordered))
	for i, k := range ordered {
		classes[k] = i
	}
	return &Encoder{Classes: classes}
}

// Transform returns the integer code for key, or ErrUnseenRoute.
func (e *Encoder) Transform(key string) (int, error) {
	code, ok := e.Classes[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnseenRoute, key)
	}
	return code, nil
}

// Len reports the vocabulary size.
func (e *Encoder) Len() int { return len(e.Classes) }
