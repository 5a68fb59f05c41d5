package reveal

import (
	"fmt"
	"math"
	"strings"
)

// EaseOut is the timing curve every entrance uses.
const EaseOut = "ease-out"

// Keyframe is one set of visual targets. Scale 0 is treated as 1.
type Keyframe struct {
	Opacity float64
	X, Y    float64
	Scale   float64
}

// Shown is the resting keyframe every entrance animates to.
var Shown = Keyframe{Opacity: 1, Scale: 1}

func (k Keyframe) scale() float64 {
	if k.Scale == 0 {
		return 1
	}
	return k.Scale
}

// Transition timing, in seconds.
type Transition struct {
	Duration float64
	Delay    float64
	Ease     string
}

// Motion describes an entrance: where an element starts and where it ends.
type Motion struct {
	Initial    Keyframe
	Animate    Keyframe
	Transition Transition
}

// Rise returns the common "fade in while sliding up by dy" entrance.
func Rise(dy, duration float64) Motion {
	return Motion{
		Initial:    Keyframe{Opacity: 0, Y: dy},
		Animate:    Shown,
		Transition: Transition{Duration: duration, Ease: EaseOut},
	}
}

// Slide fades in while moving horizontally from dx.
func Slide(dx, duration float64) Motion {
	return Motion{
		Initial:    Keyframe{Opacity: 0, X: dx},
		Animate:    Shown,
		Transition: Transition{Duration: duration, Ease: EaseOut},
	}
}

// Fade only changes opacity.
func Fade(duration float64) Motion {
	return Motion{
		Initial:    Keyframe{Opacity: 0},
		Animate:    Shown,
		Transition: Transition{Duration: duration, Ease: EaseOut},
	}
}

// Delayed returns a copy of m starting extra seconds later.
func (m Motion) Delayed(extra float64) Motion {
	m.Transition.Delay = round(m.Transition.Delay + extra)
	return m
}

// Frame is what the rendering layer applies for a given visibility.
type Frame struct {
	Keyframe
	Transition Transition
}

// At recomputes the visual parameters for the given visibility.
func (m Motion) At(visible bool) Frame {
	if visible {
		return Frame{Keyframe: m.Animate, Transition: m.Transition}
	}
	return Frame{Keyframe: m.Initial, Transition: m.Transition}
}

// Style renders the frame as an inline CSS declaration list.
func (f Frame) Style() string {
	var b strings.Builder
	fmt.Fprintf(&b, "opacity:%s;", num(f.Opacity))
	fmt.Fprintf(&b, "transform:translate(%spx,%spx) scale(%s);", num(f.X), num(f.Y), num(f.scale()))
	if f.Transition.Duration > 0 {
		ease := f.Transition.Ease
		if ease == "" {
			ease = EaseOut
		}
		d, delay := num(f.Transition.Duration), num(f.Transition.Delay)
		fmt.Fprintf(&b, "transition:opacity %ss %s %ss,transform %ss %s %ss;", d, ease, delay, d, ease, delay)
	}
	return b.String()
}

// Stagger returns the start offset for the item at index in a list animated
// step seconds apart.
func Stagger(index int, step float64) float64 {
	if index <= 0 {
		return 0
	}
	return round(float64(index) * step)
}

// Staggers returns the offsets for n siblings.
func Staggers(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Stagger(i, step)
	}
	return out
}

// round trims float noise so 3*0.1 prints as 0.3.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
