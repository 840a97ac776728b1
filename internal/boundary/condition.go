package boundary

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/dynamo"
)

type Condition uint8

const (
	Outflow Condition = iota
	Reflecting
	Periodic
)

func (c Condition) String() string {
	switch c {
	case Outflow:
		return "outflow"
	case Reflecting:
		return "reflecting"
	case Periodic:
		return "periodic"
	}
	return "unknown"
}

func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outflow", "open", "":
		return Outflow, nil
	case "reflecting", "reflect", "wall":
		return Reflecting, nil
	case "periodic":
		return Periodic, nil
	}
	return 0, fmt.Errorf("%w: unknown condition %q", dynamo.ErrInvalidBoundary, s)
}

func (c *Condition) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseCondition(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

func (c Condition) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// Conditions holds one condition per face, indexed by [cells.Face].
type Conditions [cells.NumFaces]Condition

func Uniform(c Condition) Conditions {
	var cs Conditions
	for i := range cs {
		cs[i] = c
	}
	return cs
}

func (cs Conditions) Face(f cells.Face) Condition { return cs[f] }

// Periodic reports whether the axis wraps. Only meaningful after Validate.
func (cs Conditions) Periodic(axis int) bool {
	return cs[cells.FaceOf(axis, false)] == Periodic
}

// Validate rejects periodic axes with only one periodic face. Faces of
// inactive axes are ignored.
func (cs Conditions) Validate(dims int) error {
	for d := 0; d < dims; d++ {
		lo, hi := cs[cells.FaceOf(d, false)], cs[cells.FaceOf(d, true)]
		if (lo == Periodic) != (hi == Periodic) {
			return fmt.Errorf("%w: axis %d is periodic on one side only (%s/%s)",
				dynamo.ErrInvalidBoundary, d, lo, hi)
		}
	}
	return nil
}

// Has reports whether any active face uses c.
func (cs Conditions) Has(c Condition, dims int) bool {
	for f := cells.Face(0); f < cells.Face(2*dims); f++ {
		if cs[f] == c {
			return true
		}
	}
	return false
}

func (cs Conditions) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = cells.Face(i).String() + "=" + c.String()
	}
	return strings.Join(parts, " ")
}
