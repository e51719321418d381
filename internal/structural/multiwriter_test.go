package structural

import (
	"strings"
	"testing"

	"hifcore/internal/tree"
)

func TestFixSubrangeSensitivityLiftsToWholeSignal(t *testing.T) {
	a := tree.NewArena()
	prefix := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: "s"})
	idx := intLit(a, 2)
	member := a.New(tree.KindMember, tree.MemberPayload{Prefix: prefix, Index: idx})
	a.Attach(member, prefix)
	a.Attach(member, idx)

	st := a.New(tree.KindStateTable, tree.StateTablePayload{Name: "st", Sensitivity: []tree.NodeID{member}})
	a.Attach(st, member)

	p := newPass(t, a)
	p.fixSubrangeSensitivity([]tree.NodeID{st})

	stp := a.Get(st).Payload.(tree.StateTablePayload)
	if len(stp.Sensitivity) != 1 {
		t.Fatalf("sensitivity list length = %d, want 1", len(stp.Sensitivity))
	}
	ip, ok := a.Get(stp.Sensitivity[0]).Payload.(tree.IdentifierPayload)
	if !ok || ip.Name != "s" {
		t.Fatalf("sensitivity[0] = %+v, want whole-signal identifier %q", stp.Sensitivity[0], "s")
	}
}

// buildWriter creates one state table assigning a bare identifier named
// sigName, wired under contents.
func buildWriter(a *tree.Arena, name, sigName string) tree.NodeID {
	target := a.New(tree.KindIdentifier, tree.IdentifierPayload{Name: sigName})
	source := a.New(tree.KindBoolValue, tree.BoolValuePayload{Value: true})
	assign := a.New(tree.KindAssign, tree.AssignPayload{Target: target, Source: source})
	a.Attach(assign, target)
	a.Attach(assign, source)
	state := a.New(tree.KindState, tree.StatePayload{Name: "s0", Actions: tree.BList{assign}})
	a.Attach(state, assign)
	st := a.New(tree.KindStateTable, tree.StateTablePayload{Name: name, States: tree.BList{state}})
	a.Attach(st, state)
	return st
}

func TestFixCrossProcessMultiWriteSplitsOntoMSPWSignals(t *testing.T) {
	a := tree.NewArena()
	sig := a.New(tree.KindSignal, tree.SignalPayload{})
	{
		sp := a.Get(sig).Payload.(tree.SignalPayload)
		sp.Name = "sig"
		a.Get(sig).Payload = sp
	}

	st1 := buildWriter(a, "writer1", "sig")
	st2 := buildWriter(a, "writer2", "sig")

	contents := a.New(tree.KindContents, tree.ContentsPayload{
		Declarations: tree.BList{sig},
		StateTables:  tree.BList{st1, st2},
	})
	a.Attach(contents, sig)
	a.Attach(contents, st1)
	a.Attach(contents, st2)

	p := newPass(t, a)
	p.fixCrossProcessMultiWrite([]tree.NodeID{st1, st2})

	cp := a.Get(contents).Payload.(tree.ContentsPayload)
	if len(cp.StateTables) != 3 {
		t.Fatalf("state tables after split = %d, want 3 (2 writers + 1 composing updater)", len(cp.StateTables))
	}
	if len(cp.Declarations) != 3 {
		t.Fatalf("declarations after split = %d, want 3 (original signal + 2 mspw signals)", len(cp.Declarations))
	}

	for _, st := range []tree.NodeID{st1, st2} {
		stp := a.Get(st).Payload.(tree.StateTablePayload)
		state := a.Get(stp.States[0]).Payload.(tree.StatePayload)
		assign := a.Get(state.Actions[0]).Payload.(tree.AssignPayload)
		ip := a.Get(assign.Target).Payload.(tree.IdentifierPayload)
		if !strings.Contains(ip.Name, "_mspw_") {
			t.Fatalf("writer target name = %q, want it to contain _mspw_", ip.Name)
		}
	}
}
