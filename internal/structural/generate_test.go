package structural

import (
	"testing"

	"hifcore/internal/tree"
)

func TestExpandGeneratesUnrollsForGenerateSubstitutingIndex(t *testing.T) {
	a := tree.NewArena()

	sig := a.New(tree.KindSignal, tree.SignalPayload{})
	{
		sp := a.Get(sig).Payload.(tree.SignalPayload)
		sp.Name = "sig"
		a.Get(sig).Payload = sp
	}

	target := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "out"})
	source := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "i"})
	assign := a.New(tree.KindAssign, tree.AssignPayload{Target: target, Source: source})
	a.Attach(assign, target)
	a.Attach(assign, source)
	ga := a.New(tree.KindGlobalAction, tree.GlobalActionPayload{Actions: tree.BList{assign}})
	a.Attach(ga, assign)

	body := a.New(tree.KindContents, tree.ContentsPayload{
		Declarations:  tree.BList{sig},
		GlobalActions: tree.BList{ga},
	})
	a.Attach(body, sig)
	a.Attach(body, ga)

	left := intLit(a, 0)
	right := intLit(a, 1)
	gen := a.New(tree.KindForGenerate, tree.ForGeneratePayload{
		Name: "g", Index: "i",
		Span: tree.Range{Dir: tree.Upto, Left: left, Right: right},
		Body: body,
	})
	a.Attach(gen, left)
	a.Attach(gen, right)
	a.Attach(gen, body)

	parent := a.New(tree.KindContents, tree.ContentsPayload{Generates: tree.BList{gen}})
	a.Attach(parent, gen)

	p := newPass(t, a)
	p.ExpandGenerates(parent)

	cp := a.Get(parent).Payload.(tree.ContentsPayload)
	if len(cp.Generates) != 0 {
		t.Fatalf("Generates after expansion = %d, want 0", len(cp.Generates))
	}
	if len(cp.Declarations) != 2 {
		t.Fatalf("Declarations after expansion = %d, want 2 (one per iteration)", len(cp.Declarations))
	}
	wantNames := map[string]bool{"sig_0": false, "sig_1": false}
	for _, d := range cp.Declarations {
		name := a.Get(d).Payload.(tree.SignalPayload).Name
		if _, ok := wantNames[name]; !ok {
			t.Fatalf("unexpected declaration name %q", name)
		}
		wantNames[name] = true
	}
	for name, seen := range wantNames {
		if !seen {
			t.Fatalf("missing suffixed declaration %q", name)
		}
	}

	if len(cp.GlobalActions) != 2 {
		t.Fatalf("GlobalActions after expansion = %d, want 2", len(cp.GlobalActions))
	}
	wantValues := map[int64]bool{0: false, 1: false}
	for _, ga := range cp.GlobalActions {
		gap := a.Get(ga).Payload.(tree.GlobalActionPayload)
		ap := a.Get(gap.Actions[0]).Payload.(tree.AssignPayload)
		iv, ok := a.Get(ap.Source).Payload.(tree.IntValuePayload)
		if !ok {
			t.Fatalf("unrolled assign source is not an int literal: %+v", a.Get(ap.Source))
		}
		if _, known := wantValues[iv.Value]; !known {
			t.Fatalf("unexpected substituted index value %d", iv.Value)
		}
		wantValues[iv.Value] = true
	}
	for v, seen := range wantValues {
		if !seen {
			t.Fatalf("missing substituted index value %d", v)
		}
	}
}

func TestExpandGeneratesDropsFalseIfGenerate(t *testing.T) {
	a := tree.NewArena()

	sig := a.New(tree.KindSignal, tree.SignalPayload{})
	{
		sp := a.Get(sig).Payload.(tree.SignalPayload)
		sp.Name = "never"
		a.Get(sig).Payload = sp
	}
	body := a.New(tree.KindContents, tree.ContentsPayload{Declarations: tree.BList{sig}})
	a.Attach(body, sig)

	cond := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: false})
	gen := a.New(tree.KindIfGenerate, tree.IfGeneratePayload{Name: "g", Condition: cond, Body: body})
	a.Attach(gen, cond)
	a.Attach(gen, body)

	parent := a.New(tree.KindContents, tree.ContentsPayload{Generates: tree.BList{gen}})
	a.Attach(parent, gen)

	p := newPass(t, a)
	p.ExpandGenerates(parent)

	cp := a.Get(parent).Payload.(tree.ContentsPayload)
	if len(cp.Generates) != 0 {
		t.Fatalf("Generates after expansion = %d, want 0", len(cp.Generates))
	}
	if len(cp.Declarations) != 0 {
		t.Fatalf("Declarations after expansion = %d, want 0 (condition was false)", len(cp.Declarations))
	}
}
