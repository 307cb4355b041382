package charts

import (
	"fmt"
	"testing"
)

type fakeHandle struct {
	slot      string
	drawable  Drawable
	destroyed bool
}

type fakeLibrary struct {
	missing   map[string]bool
	failing   map[string]bool
	created   []*fakeHandle
	destroyed int
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{missing: map[string]bool{}, failing: map[string]bool{}}
}

func (l *fakeLibrary) Create(slotID string, d Drawable) (Handle, error) {
	if l.missing[slotID] {
		return nil, ErrNoSurface
	}
	if l.failing[slotID] {
		return nil, fmt.Errorf("boom")
	}
	h := &fakeHandle{slot: slotID, drawable: d}
	l.created = append(l.created, h)
	return h, nil
}

func (l *fakeLibrary) Destroy(_ string, h Handle) {
	h.(*fakeHandle).destroyed = true
	l.destroyed++
}

func (l *fakeLibrary) alive() int {
	n := 0
	for _, h := range l.created {
		if !h.destroyed {
			n++
		}
	}
	return n
}

func TestRenderReplacesExistingHandle(t *testing.T) {
	lib := newFakeLibrary()
	m := NewManager(lib)
	specA := &Spec{Kind: KindBar, Title: "A"}
	specB := &Spec{Kind: KindBar, Title: "B"}

	if !m.Render("slot", specA) {
		t.Fatal("expected first render to bind")
	}
	if !m.Render("slot", specB) {
		t.Fatal("expected second render to bind")
	}

	if m.Live() != 1 || lib.alive() != 1 {
		t.Fatalf("expected exactly one live handle, manager=%d library=%d", m.Live(), lib.alive())
	}
	h, ok := m.Handle("slot")
	if !ok || h.(*fakeHandle).drawable != Drawable(specB) {
		t.Fatalf("expected slot bound to spec B, got %+v", h)
	}
	if !lib.created[0].destroyed {
		t.Fatal("expected first handle destroyed before the second was created")
	}
}

func TestRenderSameSpecTwiceDoesNotLeak(t *testing.T) {
	lib := newFakeLibrary()
	m := NewManager(lib)
	spec := &Spec{Kind: KindPie}
	for i := 0; i < 5; i++ {
		m.Render("slot", spec)
	}
	if lib.alive() != 1 || lib.destroyed != 4 {
		t.Fatalf("expected 1 alive and 4 destroyed, got %d alive %d destroyed", lib.alive(), lib.destroyed)
	}
}

func TestRenderMissingSurfaceClearsStaleBinding(t *testing.T) {
	lib := newFakeLibrary()
	m := NewManager(lib)
	m.Render("slot", &Spec{Kind: KindBar})

	lib.missing["slot"] = true
	if m.Render("slot", &Spec{Kind: KindBar}) {
		t.Fatal("expected render without surface to report false")
	}
	if _, ok := m.Handle("slot"); ok {
		t.Fatal("expected stale binding cleared")
	}
	if lib.alive() != 0 {
		t.Fatalf("expected no live handles, got %d", lib.alive())
	}
}

func TestRenderLibraryFailureIsSwallowed(t *testing.T) {
	lib := newFakeLibrary()
	lib.failing["bad"] = true
	m := NewManager(lib)
	if m.Render("bad", Placeholder{Text: "x"}) {
		t.Fatal("expected failure to report false")
	}
	if !m.Render("good", Placeholder{Text: "y"}) {
		t.Fatal("expected sibling slot to still render")
	}
}

func TestClearAllDestroysEverything(t *testing.T) {
	lib := newFakeLibrary()
	m := NewManager(lib)
	for _, id := range []string{"a", "b", "c"} {
		m.Render(id, &Spec{Kind: KindBar})
	}
	m.Clear("b")
	if got := m.Slots(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected slots after Clear: %v", got)
	}
	m.ClearAll()
	if m.Live() != 0 || lib.alive() != 0 || lib.destroyed != 3 {
		t.Fatalf("expected all handles destroyed, live=%d alive=%d destroyed=%d", m.Live(), lib.alive(), lib.destroyed)
	}
	m.Clear("unknown")
}

func TestColors(t *testing.T) {
	if Colors(0) != nil {
		t.Fatal("expected nil for zero colors")
	}
	got := Colors(PaletteSize() + 5)
	for i := 0; i < PaletteSize(); i++ {
		if got[i] != palette[i] {
			t.Fatalf("color %d not taken from palette", i)
		}
	}
	for i, c := range got {
		if c.A != 0.7 {
			t.Fatalf("color %d alpha %v, want 0.7", i, c.A)
		}
	}
	if palette[0].RGBA() != "rgba(54, 162, 235, 0.7)" {
		t.Fatalf("unexpected rgba: %s", palette[0].RGBA())
	}
	if palette[0].Opaque().RGBA() != "rgba(54, 162, 235, 1)" {
		t.Fatalf("unexpected opaque rgba: %s", palette[0].Opaque().RGBA())
	}
	if palette[1].Hex() != "#ff6384" {
		t.Fatalf("unexpected hex: %s", palette[1].Hex())
	}
}

func TestSeriesColorFallbacks(t *testing.T) {
	if (Series{}).Color(3) != palette[0] {
		t.Fatal("expected palette fallback")
	}
	single := Series{Colors: []Color{palette[2]}}
	if single.Color(5) != palette[2] {
		t.Fatal("expected single color reused")
	}
	multi := Series{Colors: Colors(2)}
	if multi.Color(1) != palette[1] {
		t.Fatal("expected per-value color")
	}
}
