package visual

import (
	"unicode"
	"unicode/utf8"
)

// Animator describes one property animation of a visual. Fields are stored
// as given; Compose does not validate them.
type Animator struct {
	AlphaFunction AlphaFunction `yaml:"alphaFunction"`
	// StartTime and EndTime are in milliseconds.
	StartTime   int    `yaml:"startTime"`
	EndTime     int    `yaml:"endTime"`
	Target      string `yaml:"target"`
	Property    string `yaml:"property"`
	TargetValue Value  `yaml:"targetValue"`
}

// Compose builds the property map the native toolkit consumes:
//
//	{target, property, targetValue,
//	 animator: {alphaFunction, timePeriod: {duration, delay}}}
//
// with times converted to seconds.
func (a *Animator) Compose() *Map {
	period := NewMap().
		Set("duration", Float(float32(a.EndTime-a.StartTime)/1000)).
		Set("delay", Float(float32(a.StartTime)/1000))

	anim := NewMap().
		Set("alphaFunction", String(a.AlphaFunction.String())).
		Set("timePeriod", MapValue(period))

	return NewMap().
		Set("target", String(a.Target)).
		Set("property", String(lowerFirst(a.Property))).
		Set("targetValue", a.TargetValue).
		Set("animator", MapValue(anim))
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// Transition composes each animator into an array of transition data.
func Transition(animators ...*Animator) Value {
	vs := make([]Value, len(animators))
	for i, a := range animators {
		vs[i] = MapValue(a.Compose())
	}
	return Array(vs...)
}
