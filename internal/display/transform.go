package display

import "fmt"

// Transform is a monitor rotation/flip variant. The zero value is the
// untransformed orientation.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// transformNames maps each variant to the compositor's output command
// vocabulary. Index order must match the wire codes above; the codes are
// what crosses the D-Bus boundary and the names are what sway and kanshi
// understand.
var transformNames = [...]string{
	TransformNormal:     "normal",
	Transform90:         "90",
	Transform180:        "180",
	Transform270:        "270",
	TransformFlipped:    "flipped",
	TransformFlipped90:  "flipped-90",
	TransformFlipped180: "flipped-180",
	TransformFlipped270: "flipped-270",
}

// TransformFromCode decodes the wire integer used by the display-config
// protocol. Codes outside the eight defined variants are rejected.
func TransformFromCode(code uint32) (Transform, error) {
	if code >= uint32(len(transformNames)) {
		return TransformNormal, fmt.Errorf("%w: code %d", ErrInvalidTransform, code)
	}
	return Transform(code), nil
}

// Code returns the wire integer for the transform.
func (t Transform) Code() uint32 {
	return uint32(t)
}

// CompositorName returns the transform name used in sway output commands
// and kanshi profiles.
func (t Transform) CompositorName() string {
	if t < 0 || int(t) >= len(transformNames) {
		return transformNames[TransformNormal]
	}
	return transformNames[t]
}

// String returns the compositor-facing name.
func (t Transform) String() string {
	return t.CompositorName()
}

// ParseCompositorTransform maps a transform name reported by the
// compositor back to a variant. Unknown or empty names are reported as
// the untransformed orientation, matching how sway reports outputs that
// were never rotated.
func ParseCompositorTransform(name string) Transform {
	for t, n := range transformNames {
		if n == name {
			return Transform(t)
		}
	}
	return TransformNormal
}
