package structural

import (
	"testing"

	"hifcore/internal/tree"
)

// buildView creates a View with an empty Entity and a Contents holding one
// declaration (so it isn't treated as an empty "component shell"), attached
// under a fresh DesignUnit of the same name.
func buildView(a *tree.Arena, name string) (du, view tree.NodeID) {
	decl := a.New(tree.KindVariable, tree.VariablePayload{})
	{
		vp := a.Get(decl).Payload.(tree.VariablePayload)
		vp.Name = name + "_v"
		a.Get(decl).Payload = vp
	}
	contents := a.New(tree.KindContents, tree.ContentsPayload{Declarations: tree.BList{decl}})
	a.Attach(contents, decl)
	entity := a.New(tree.KindEntity, tree.EntityPayload{})

	vpay := tree.ViewPayload{Entity: entity, Contents: contents}
	vpay.Name = name
	view = a.New(tree.KindView, vpay)
	a.Attach(view, entity)
	a.Attach(view, contents)

	dup := tree.DesignUnitPayload{Name: name, Views: tree.BList{view}}
	du = a.New(tree.KindDesignUnit, dup)
	a.Attach(du, view)
	return du, view
}

func TestFindTopLevelModulesSingleCandidate(t *testing.T) {
	a := tree.NewArena()
	du, view := buildView(a, "Top")
	root := a.New(tree.KindSystem, tree.SystemPayload{DesignUnits: tree.BList{du}})
	a.Attach(root, du)

	p := newPass(t, a)
	got, ok := p.FindTopLevelModules(root, FindTopOptions{CheckAtLeastOne: true, CheckAtMostOne: true})
	if !ok {
		t.Fatalf("FindTopLevelModules failed")
	}
	if len(got) != 1 || got[0] != view {
		t.Fatalf("FindTopLevelModules = %v, want [%d]", got, view)
	}
}

func TestFindTopLevelModulesExcludesInstantiatedView(t *testing.T) {
	a := tree.NewArena()
	topDU, topView := buildView(a, "Top")
	leafDU, _ := buildView(a, "Leaf")

	ref := a.New(tree.KindTypeViewReference, tree.TypeViewReferencePayload{DesignUnitName: "Leaf", ViewName: "Leaf"})
	inst := a.New(tree.KindInstance, tree.InstancePayload{Name: "u0", Referenced: ref})
	a.Attach(inst, ref)

	topCP := a.Get(a.Get(topView).Payload.(tree.ViewPayload).Contents).Payload.(tree.ContentsPayload)
	topCP.Instances = tree.BList{inst}
	a.Get(a.Get(topView).Payload.(tree.ViewPayload).Contents).Payload = topCP
	a.Attach(a.Get(topView).Payload.(tree.ViewPayload).Contents, inst)

	root := a.New(tree.KindSystem, tree.SystemPayload{DesignUnits: tree.BList{topDU, leafDU}})
	a.Attach(root, topDU)
	a.Attach(root, leafDU)

	p := newPass(t, a)
	got, ok := p.FindTopLevelModules(root, FindTopOptions{})
	if !ok {
		t.Fatalf("FindTopLevelModules failed")
	}
	if len(got) != 1 || got[0] != topView {
		t.Fatalf("FindTopLevelModules = %v, want [%d] (Top only, Leaf is instantiated)", got, topView)
	}
}

func TestFindTopLevelModulesResolvesByName(t *testing.T) {
	a := tree.NewArena()
	du1, view1 := buildView(a, "A")
	du2, _ := buildView(a, "B")
	root := a.New(tree.KindSystem, tree.SystemPayload{DesignUnits: tree.BList{du1, du2}})
	a.Attach(root, du1)
	a.Attach(root, du2)

	p := newPass(t, a)
	got, ok := p.FindTopLevelModules(root, FindTopOptions{TopLevelName: "A"})
	if !ok || len(got) != 1 || got[0] != view1 {
		t.Fatalf("FindTopLevelModules(name=A) = %v, ok=%v, want [%d] true", got, ok, view1)
	}
}
