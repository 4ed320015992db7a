package kanshi

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// EnabledOutput is one enabled display directive in a profile.
type EnabledOutput struct {
	// Name is the display name (vendor product serial), never the raw
	// connector, so profiles survive connector renumbering.
	Name      string
	Mode      string
	X, Y      int
	Transform string
	Scale     string
}

// Profile is one monitor arrangement: explicit directives for every
// enabled display plus explicit disable directives for every other
// display present at apply time.
type Profile struct {
	Enabled  []EnabledOutput
	Disabled []string
}

// FileName derives the profile's file name from the sorted display
// names, so the same hardware combination always lands in the same file
// regardless of request ordering.
func (p Profile) FileName() string {
	names := make([]string, len(p.Enabled))
	for i, o := range p.Enabled {
		names[i] = strings.ReplaceAll(o.Name, " ", "_")
	}
	sort.Strings(names)
	return strings.Join(names, "__")
}

// Render produces the profile document. Output order is canonical
// (sorted by display name) so identical layouts render byte-identical.
func (p Profile) Render() []byte {
	enabled := make([]EnabledOutput, len(p.Enabled))
	copy(enabled, p.Enabled)
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Name < enabled[j].Name })

	disabled := make([]string, len(p.Disabled))
	copy(disabled, p.Disabled)
	sort.Strings(disabled)

	var buf bytes.Buffer
	buf.WriteString("profile {\n")
	for _, o := range enabled {
		fmt.Fprintf(&buf, "\toutput \"%s\" mode %s position %d,%d transform %s scale %s enable\n",
			o.Name, o.Mode, o.X, o.Y, o.Transform, o.Scale)
	}
	for _, name := range disabled {
		fmt.Fprintf(&buf, "\toutput \"%s\" disable\n", name)
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}
