package mesh

import (
	"sort"
	"strings"
)

// mirrorAffixes are the left/right naming conventions recognised by MirrorName.
var mirrorAffixes = []struct {
	left, right string
	prefix      bool
}{
	{"L_", "R_", true},
	{"l_", "r_", true},
	{".L", ".R", false},
	{".l", ".r", false},
	{"_L", "_R", false},
}

// MirrorName returns the opposite-side name for a left/right group or joint
// name ("L_eye" ↔ "R_eye", "hand.L" ↔ "hand.R"). ok is false when name
// carries no side marker.
func MirrorName(name string) (mirrored string, ok bool) {
	for _, a := range mirrorAffixes {
		if a.prefix {
			if rest, found := strings.CutPrefix(name, a.left); found {
				return a.right + rest, true
			}
			if rest, found := strings.CutPrefix(name, a.right); found {
				return a.left + rest, true
			}
			continue
		}
		if rest, found := strings.CutSuffix(name, a.left); found {
			return rest + a.right, true
		}
		if rest, found := strings.CutSuffix(name, a.right); found {
			return rest + a.left, true
		}
	}
	return "", false
}

// MissingAttributes returns, sorted, the attribute names of src that dst lacks.
func MissingAttributes(src, dst AttributeLister) []string {
	have := make(map[string]bool)
	for _, name := range dst.AttributeNames() {
		have[name] = true
	}
	var missing []string
	for _, name := range src.AttributeNames() {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// EnsureMirrored creates an empty counterpart for every left-side group of m
// whose right-side mirror is missing, and returns the names it added.
func EnsureMirrored(m *Mesh) ([]string, error) {
	var added []string
	for _, name := range m.AttributeNames() {
		if !isLeft(name) {
			continue
		}
		mirrored, ok := MirrorName(name)
		if !ok || m.HasAttribute(mirrored) {
			continue
		}
		if err := m.AddAttribute(mirrored); err != nil {
			return added, err
		}
		added = append(added, mirrored)
	}
	return added, nil
}

func isLeft(name string) bool {
	for _, a := range mirrorAffixes {
		if a.prefix && strings.HasPrefix(name, a.left) {
			return true
		}
		if !a.prefix && strings.HasSuffix(name, a.left) {
			return true
		}
	}
	return false
}
