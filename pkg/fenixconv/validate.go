package fenixconv

import (
	"fmt"
	"unicode/utf8"

	"github.com/dyuri/fenixconv/internal/binary"
	"github.com/elliotwutingfeng/asciiset"
)

// Validation levels
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// ValidationError represents a validation issue found in a graphic
type ValidationError struct {
	Field   string // Field name or location
	Message string // Error description
	Level   string // LevelError or LevelWarning
}

func (v ValidationError) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

var printable = func() asciiset.ASCIISet {
	chars := make([]byte, 0, 0x7F-0x20)
	for c := byte(0x20); c < 0x7F; c++ {
		chars = append(chars, c)
	}
	set, _ := asciiset.MakeASCIISet(string(chars))
	return set
}()

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if !printable.Contains(s[i]) {
			return false
		}
	}
	return true
}

// Validate checks a graphic for problems that would be lost or rejected
// when it is written.
//
// Returns a list of validation errors/warnings. An empty list means
// the graphic is clean.
func Validate(g *Graphic) []ValidationError {
	v := &validator{}
	v.name("Name", g.Name, binary.FBMNameSize)
	if g.NumFrames() == 1 && utf8.RuneCountInString(g.Name) > binary.MapNameSize {
		v.warning("Name", "longer than %d characters, truncated when saved as MAP", binary.MapNameSize)
	}

	if g.NumFrames() == 0 {
		v.warning("Frames", "graphic has no frames")
	}

	used := make([]bool, g.NumFrames())
	for i, seq := range g.Sequences() {
		field := fmt.Sprintf("Sequence %d", i)
		v.name(field, seq.Name, binary.SequenceNameSize)
		if len(seq.KeyFrames) == 0 {
			v.warning(field, "has no keyframes")
		}
		if seq.Next == i && len(seq.KeyFrames) == 1 {
			v.warning(field, "loops on a single keyframe")
		}
		for _, kf := range seq.KeyFrames {
			used[kf.Frame] = true
		}
	}
	if g.NumSequences() > 0 {
		for i, ok := range used {
			if !ok {
				v.warning(fmt.Sprintf("Frame %d", i), "not shown by any sequence")
			}
		}
	}

	for _, cp := range g.ControlPoints.All() {
		field := fmt.Sprintf("Control point %d", cp.Index)
		switch {
		case !fitsInt16(cp.X) || !fitsInt16(cp.Y):
			v.warning(field, "(%d,%d) cannot be saved as MAP", cp.X, cp.Y)
		case cp.X == -1 && cp.Y == -1:
			v.warning(field, "(-1,-1) means unset in MAP files and cannot be saved as MAP")
		}
	}

	return v.issues
}

// validator collects issues
type validator struct {
	issues []ValidationError
}

func (v *validator) error(field, msg string, args ...any) {
	v.issues = append(v.issues, ValidationError{Field: field, Message: fmt.Sprintf(msg, args...), Level: LevelError})
}

func (v *validator) warning(field, msg string, args ...any) {
	v.issues = append(v.issues, ValidationError{Field: field, Message: fmt.Sprintf(msg, args...), Level: LevelWarning})
}

func (v *validator) name(field, s string, size int) {
	if !utf8.ValidString(s) {
		v.error(field, "name is not valid UTF-8")
		return
	}
	if !isPrintableASCII(s) {
		v.warning(field, "name %q has non-ASCII characters", s)
	}
	if n := utf8.RuneCountInString(s); n > size {
		v.warning(field, "name is %d characters, only %d are stored", n, size)
	}
}

func fitsInt16(v int) bool {
	return v >= -1<<15 && v < 1<<15
}
