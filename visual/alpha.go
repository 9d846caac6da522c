package visual

import (
	"fmt"
	"strings"
)

// AlphaFunction selects the easing curve of an animation.
type AlphaFunction int

const (
	AlphaDefault AlphaFunction = iota
	AlphaLinear
	AlphaReverse
	AlphaEaseInSquare
	AlphaEaseOutSquare
	AlphaEaseIn
	AlphaEaseOut
	AlphaEaseInOut
	AlphaEaseInSine
	AlphaEaseOutSine
	AlphaEaseInOutSine
	AlphaBounce
	AlphaSin
	AlphaEaseOutBack
)

var alphaNames = [...]string{
	AlphaDefault:       "DEFAULT",
	AlphaLinear:        "LINEAR",
	AlphaReverse:       "REVERSE",
	AlphaEaseInSquare:  "EASE_IN_SQUARE",
	AlphaEaseOutSquare: "EASE_OUT_SQUARE",
	AlphaEaseIn:        "EASE_IN",
	AlphaEaseOut:       "EASE_OUT",
	AlphaEaseInOut:     "EASE_IN_OUT",
	AlphaEaseInSine:    "EASE_IN_SINE",
	AlphaEaseOutSine:   "EASE_OUT_SINE",
	AlphaEaseInOutSine: "EASE_IN_OUT_SINE",
	AlphaBounce:        "BOUNCE",
	AlphaSin:           "SIN",
	AlphaEaseOutBack:   "EASE_OUT_BACK",
}

// String returns the name the native toolkit expects. Values outside the
// enumeration are rendered numerically.
func (a AlphaFunction) String() string {
	if a >= 0 && int(a) < len(alphaNames) {
		return alphaNames[a]
	}
	return fmt.Sprintf("AlphaFunction(%d)", int(a))
}

// ParseAlphaFunction accepts native names ("EASE_IN_OUT") as well as
// camel case ("EaseInOut").
func ParseAlphaFunction(s string) (AlphaFunction, error) {
	norm := normalizeAlpha(s)
	for i, name := range alphaNames {
		if normalizeAlpha(name) == norm {
			return AlphaFunction(i), nil
		}
	}
	return AlphaDefault, fmt.Errorf("visual: alpha function %q: %w", s, ErrInvalidArgument)
}

func normalizeAlpha(s string) string {
	return strings.ToUpper(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
}

func (a AlphaFunction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AlphaFunction) UnmarshalText(b []byte) error {
	v, err := ParseAlphaFunction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
