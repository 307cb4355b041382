package analysis

import (
	"math"
	"strings"
)

// Proficiency band names shared by ELA and Math.
const (
	BelowProficient       = "Below Proficient"
	ApproachingProficient = "Approaching Proficient"
	Proficient            = "Proficient"
	HighlyProficient      = "Highly Proficient"
)

const (
	ElaGradeNA  = "N/A (Grade not in ELA 3-8)"
	ElaScoreNA  = "N/A (Score out of ELA range)"
	MathGradeNA = "N/A (Math Grade not in 3-8)"
	MathScoreNA = "N/A (Score out of Math range)"
)

type band struct {
	name   string
	lo, hi float64
}

// cutScores maps a grade to its four bands, lowest first. The inner bounds
// are the published inclusive integer cut points.
type cutScores map[string][]band

func bands(bp, ap, p int) []band {
	return []band{
		{BelowProficient, math.Inf(-1), float64(bp)},
		{ApproachingProficient, float64(bp + 1), float64(ap)},
		{Proficient, float64(ap + 1), float64(p)},
		{HighlyProficient, float64(p + 1), math.Inf(1)},
	}
}

var riseEla = cutScores{
	"3": bands(290, 333, 405),
	"4": bands(322, 377, 441),
	"5": bands(360, 409, 464),
	"6": bands(393, 433, 492),
	"7": bands(403, 449, 513),
	"8": bands(415, 470, 532),
}

var riseMath = cutScores{
	"3": bands(296, 316, 336),
	"4": bands(325, 348, 375),
	"5": bands(359, 383, 415),
	"6": bands(396, 431, 463),
	"7": bands(414, 449, 498),
	"8": bands(446, 498, 553),
}

// gradeKey strips leading zeros but keeps a lone "0".
func gradeKey(grade string) string {
	g := strings.TrimLeft(grade, "0")
	if g == "" && grade != "" {
		return "0"
	}
	return g
}

func (c cutScores) classify(grade string, score float64, gradeNA, scoreNA string) string {
	table, ok := c[gradeKey(grade)]
	if !ok {
		return gradeNA
	}
	for _, b := range table {
		if score >= b.lo && score <= b.hi {
			return b.name
		}
	}
	return scoreNA
}

// ElaProficiency derives the RISE ELA band for a grade and scale score.
func ElaProficiency(grade string, score float64) string {
	return riseEla.classify(grade, score, ElaGradeNA, ElaScoreNA)
}

// MathProficiency derives the Math band for a grade and scale score.
func MathProficiency(grade string, score float64) string {
	return riseMath.classify(grade, score, MathGradeNA, MathScoreNA)
}

// ElaPassing counts Proficient and Highly Proficient as passing.
func ElaPassing(level string) bool {
	return level == Proficient || level == HighlyProficient
}
