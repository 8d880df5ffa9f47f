package models

import (
	"encoding/json"
	"fmt"
)

// decodeID accepts an identifier written as a JSON string or number.
// Older browser-side records used numeric exercise ids.
func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decoding id %s: %w", raw, err)
	}
	return n.String(), nil
}

func (e *Exercise) UnmarshalJSON(data []byte) error {
	type plain Exercise
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (c *CompletedExercise) UnmarshalJSON(data []byte) error {
	type plain CompletedExercise
	aux := struct {
		*plain
		ExerciseID json.RawMessage `json:"exercise_id"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ExerciseID)
	if err != nil {
		return err
	}
	c.ExerciseID = id
	return nil
}
