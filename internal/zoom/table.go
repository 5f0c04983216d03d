// internal/zoom/table.go
package zoom

import (
	"errors"
	"fmt"
)

// Table maps a zoom stage to the Q16 scale factor written to hardware.
type Table []uint32

// DefaultTable is 1x..8x in 31 stages.
var DefaultTable = Table{
	65536, 70124,
	75366, 80609,
	86508, 92406,
	99615, 106168,
	114033, 122552,
	131072, 140247,
	150733, 161219,
	173015, 185467,
	198574, 212992,
	228065, 244449,
	262144, 281149,
	300810, 322437,
	346030, 370934,
	397148, 425984,
	456131, 488899,
	524288,
}

var ErrEmptyTable = errors.New("zoom: empty stage table")

// NewTable copies stages into a table, falling back to DefaultTable when
// stages is empty.
func NewTable(stages []uint32) (Table, error) {
	if len(stages) == 0 {
		return append(Table(nil), DefaultTable...), nil
	}
	t := append(Table(nil), stages...)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the table is non-empty and strictly increasing.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return fmt.Errorf("zoom: stage %d (%d) not above stage %d (%d)", i, t[i], i-1, t[i-1])
		}
	}
	return nil
}

// Stages is the number of valid stage indices.
func (t Table) Stages() int {
	return len(t)
}

// Valid reports whether stage is a table index.
func (t Table) Valid(stage int) bool {
	return stage >= 0 && stage < len(t)
}
