package renderers

// ElaLevels is the canonical RISE ELA proficiency order.
var ElaLevels = []string{
	"Below Proficient",
	"Approaching Proficient",
	"Proficient",
	"Highly Proficient",
	"N/A (Grade not in ELA 3-8)",
	"N/A (Score out of ELA range)",
}

// MathLevels is the canonical Math proficiency order.
var MathLevels = []string{
	"Below Proficient",
	"Approaching Proficient",
	"Proficient",
	"Highly Proficient",
	"N/A (Math Grade not in 3-8)",
	"N/A (Score out of Math range)",
}

// LevelSet resolves a named ordering used by layout files.
func LevelSet(name string) ([]string, bool) {
	switch name {
	case "ela":
		return ElaLevels, true
	case "math":
		return MathLevels, true
	default:
		return nil, false
	}
}
