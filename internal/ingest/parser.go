package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

const (
	// DefaultSets is used when an exercise's "sets" is absent, unparsable or
	// outside 1..MaxSets.
	DefaultSets = 3
	// MaxSets is the largest set count a template may carry.
	MaxSets = 100
	// DefaultTargetReps is used when an exercise's "reps" is absent.
	DefaultTargetReps = "8-10"
	// DefaultWorkoutName names a workout pasted without its outer name key.
	DefaultWorkoutName = "Imported Workout"
)

// entry is one key/value pair of a JSON object, in source order.
type entry struct {
	key   string
	value []byte
	typ   jsonparser.ValueType
}

// ParseAndValidate decodes cleaned text holding one workout:
//
//	{"Workout name": {"Exercise": {"sets": "4", "reps": "6-8"}, ...}}
//
// Only the first top-level key is used; the rest are ignored. Exercise order
// follows the source. Per-exercise problems are absorbed by defaults; only
// empty input, malformed syntax and a wrong overall shape fail the call.
func ParseAndValidate(text string) (*Candidate, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}
	data := []byte(trimmed)

	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSyntax, err)
	}

	if _, typ, _, err := jsonparser.Get(data); err != nil || typ != jsonparser.Object {
		return nil, fmt.Errorf("%w: expected an object with a workout name", ErrInvalidShape)
	}

	top, err := objectEntries(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSyntax, err)
	}
	if len(top) == 0 {
		return nil, fmt.Errorf("%w: no workout found", ErrInvalidShape)
	}

	first := top[0]
	name := strings.TrimSpace(first.key)
	exercises := top

	if !isExerciseDescriptor(first) {
		if name == "" {
			return nil, fmt.Errorf("%w: workout name is empty", ErrInvalidShape)
		}
		if first.typ != jsonparser.Object {
			return nil, fmt.Errorf("%w: workout %q is not a mapping of exercises", ErrInvalidShape, name)
		}
		exercises, err = objectEntries(first.value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSyntax, err)
		}
	} else {
		name = DefaultWorkoutName
	}

	c := &Candidate{Name: name, Exercises: make([]CandidateExercise, 0, len(exercises))}
	for i, e := range exercises {
		c.Exercises = append(c.Exercises, exerciseFrom(i, e))
	}
	return c, nil
}

// objectEntries lists the members of a JSON object in source order.
// A repeated key keeps its first position and takes the last value.
func objectEntries(data []byte) ([]entry, error) {
	var out []entry
	index := make(map[string]int)
	err := jsonparser.ObjectEach(data, func(key, value []byte, typ jsonparser.ValueType, _ int) error {
		e := entry{key: string(key), value: value, typ: typ}
		if i, ok := index[e.key]; ok {
			out[i] = e
			return nil
		}
		index[e.key] = len(out)
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isExerciseDescriptor reports whether e's value looks like a single
// exercise ({"sets": ..., "reps": ...}) rather than a map of exercises,
// which happens when the workout name wrapper was left out.
func isExerciseDescriptor(e entry) bool {
	if e.typ != jsonparser.Object {
		return false
	}
	fields, err := objectEntries(e.value)
	if err != nil {
		return false
	}
	for _, f := range fields {
		if (f.key == "sets" || f.key == "reps") && f.typ != jsonparser.Object {
			return true
		}
	}
	return false
}

func exerciseFrom(pos int, e entry) CandidateExercise {
	ex := CandidateExercise{
		Name:       strings.TrimSpace(e.key),
		Sets:       DefaultSets,
		TargetReps: DefaultTargetReps,
	}
	if ex.Name == "" {
		ex.Name = fmt.Sprintf("Exercise %d", pos+1)
	}
	if e.typ != jsonparser.Object {
		return ex
	}
	fields, err := objectEntries(e.value)
	if err != nil {
		return ex
	}
	for _, f := range fields {
		switch f.key {
		case "sets":
			if n, ok := coerceSets(f); ok {
				ex.Sets = n
			}
		case "reps":
			if s, ok := coerceReps(f); ok {
				ex.TargetReps = s
			}
		}
	}
	return ex
}

func coerceSets(f entry) (int, bool) {
	var raw string
	switch f.typ {
	case jsonparser.String:
		s, err := jsonparser.ParseString(f.value)
		if err != nil {
			return 0, false
		}
		raw = s
	case jsonparser.Number:
		raw = string(f.value)
	default:
		return 0, false
	}
	n, ok := LeadingInt(raw)
	if !ok || n < 1 || n > MaxSets {
		return 0, false
	}
	return n, true
}

// coerceReps keeps any present value as text. Only null and blank strings
// count as absent.
func coerceReps(f entry) (string, bool) {
	switch f.typ {
	case jsonparser.Null, jsonparser.NotExist:
		return "", false
	case jsonparser.String:
		s, err := jsonparser.ParseString(f.value)
		if err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	default:
		return strings.TrimSpace(string(f.value)), true
	}
}
