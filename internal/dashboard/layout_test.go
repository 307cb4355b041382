package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLayoutIsValid(t *testing.T) {
	l := DefaultLayout()
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if l.DefaultTab() != "riseElaProficiency" {
		t.Fatalf("default tab = %q", l.DefaultTab())
	}
	tab, ok := l.FilterTab()
	if !ok || tab.ID != "specialEdComparison" {
		t.Fatalf("filter tab = %v, %v", tab, ok)
	}
}

func TestValidateRejects(t *testing.T) {
	chart := func(slot, kind string) ChartDef { return ChartDef{Slot: slot, Kind: kind, Metric: "m"} }
	tests := []struct {
		name   string
		layout Layout
		want   string
	}{
		{"empty", Layout{}, "no tabs"},
		{"duplicate tab", Layout{Tabs: []TabDef{{ID: "a"}, {ID: "a"}}}, "duplicate tab id"},
		{"duplicate slot", Layout{Tabs: []TabDef{
			{ID: "a", Charts: []ChartDef{chart("s", "scalar")}},
			{ID: "b", Charts: []ChartDef{chart("s", "scalar")}},
		}}, "duplicate slot id"},
		{"unknown kind", Layout{Tabs: []TabDef{{ID: "a", Charts: []ChartDef{chart("s", "radar")}}}}, "unknown renderer kind"},
		{"unknown levels", Layout{Tabs: []TabDef{{ID: "a", Charts: []ChartDef{{Slot: "s", Kind: "groupedBars", Levels: "science"}}}}}, "unknown level set"},
		{"filter elsewhere", Layout{Tabs: []TabDef{
			{ID: "a", Charts: []ChartDef{chart("s", "specialEdComparison")}},
			{ID: "b", Filter: &FilterDef{Slot: "s"}},
		}}, "not on this tab"},
		{"filter on plain chart", Layout{Tabs: []TabDef{
			{ID: "a", Charts: []ChartDef{chart("s", "scalar")}, Filter: &FilterDef{Slot: "s"}},
		}}, "takes no filter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadLayoutYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	body := `tabs:
  - id: overview
    title: Overview
    charts:
      - slot: avgScore
        kind: scalar
        metric: averageOverallScaleScoreByYear
        title: Average Score
  - id: sped
    title: Special Ed
    charts:
      - slot: spedChart
        kind: specialEdComparison
        metric: averageOverallScaleScoreBySpecialEdAndSubjectAreaByYear
        title: By status
    filter:
      slot: spedChart
      label: Subject
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	l, err := ResolveLayout(path)
	if err != nil {
		t.Fatalf("ResolveLayout: %v", err)
	}
	if len(l.Tabs) != 2 || l.Tabs[1].Filter == nil || l.Tabs[1].Filter.Label != "Subject" {
		t.Fatalf("unexpected layout %+v", l)
	}

	if err := os.WriteFile(path, []byte("tabs:\n  - id: x\n    charts:\n      - slot: s\n        kind: nope\n"), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	if _, err := LoadLayout(path); err == nil {
		t.Fatal("invalid layout accepted")
	}
}

func TestResolveLayoutDefault(t *testing.T) {
	l, err := ResolveLayout("")
	if err != nil || len(l.Tabs) != len(DefaultLayout().Tabs) {
		t.Fatalf("ResolveLayout(\"\") = %d tabs, %v", len(l.Tabs), err)
	}
}
