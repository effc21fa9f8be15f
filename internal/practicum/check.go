package practicum

import (
	"fmt"
	"math"
)

// Check validates a decoded status response and extracts the most recent
// homework, if any.
//
// Rules:
//   - the value must be a JSON object
//   - current_date must be present and numeric (it becomes the next cursor)
//   - homeworks, when present, must be an array; its first element is the
//     most recent record
//
// An empty or absent homeworks array yields a Snapshot with a nil Homework:
// "nothing changed" is a normal outcome, distinct from a malformed response.
// Check is pure; the same input always yields the same result.
func Check(payload any) (Snapshot, error) {
	m, ok := payload.(map[string]any)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: response is not an object", ErrInvalidShape)
	}

	cur, err := cursorFrom(m)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{CurrentDate: cur}

	raw, present := m["homeworks"]
	if !present {
		return snap, nil
	}
	// A present-but-null homeworks is a shape violation, not "no new work";
	// the nil fails the array assertion below.
	list, ok := raw.([]any)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: homeworks is not an array", ErrInvalidShape)
	}
	if len(list) == 0 {
		return snap, nil
	}

	rec, ok := list[0].(map[string]any)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: homework record is not an object", ErrInvalidShape)
	}
	name, _ := rec["homework_name"].(string)
	status, _ := rec["status"].(string)
	snap.Homework = &Homework{Name: name, Status: status}
	return snap, nil
}

func cursorFrom(m map[string]any) (int64, error) {
	raw, present := m["current_date"]
	if !present {
		return 0, ErrMissingCursor
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: current_date is not a number", ErrMissingCursor)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: current_date is not an integer", ErrMissingCursor)
	}
	return int64(f), nil
}
