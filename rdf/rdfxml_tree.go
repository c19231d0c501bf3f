package rdf

import "slices"

type elemKind uint8

const (
	elemRoot elemKind = iota
	elemNode
	elemProp
)

const (
	rootElem   = 0
	noParent   = -1
	descrQName = "rdf:Description"

	attrAbout     = "rdf:about"
	attrNodeID    = "rdf:nodeID"
	attrResource  = "rdf:resource"
	attrDatatype  = "rdf:datatype"
	attrParseType = "rdf:parseType"
	attrLang      = "xml:lang"
)

type xmlAttr struct {
	name  string
	value string
}

// xmlElem is one element of the document arena. Elements refer to each
// other by index; a detached element keeps its slot with parent noParent.
type xmlElem struct {
	kind     elemKind
	name     string
	attrs    []xmlAttr
	text     string
	literal  bool
	markup   bool
	parent   int
	children []int
}

// xmlTree is an arena-indexed RDF/XML document. Index 0 is rdf:RDF.
type xmlTree struct {
	elems []xmlElem
}

func newXMLTree() xmlTree {
	return xmlTree{elems: []xmlElem{{kind: elemRoot, name: "rdf:RDF", parent: noParent}}}
}

// clone returns a deep copy; compaction passes never share slices with
// their input.
func (t xmlTree) clone() xmlTree {
	out := xmlTree{elems: make([]xmlElem, len(t.elems))}
	for i, e := range t.elems {
		e.attrs = slices.Clone(e.attrs)
		e.children = slices.Clone(e.children)
		out.elems[i] = e
	}
	return out
}

func (t *xmlTree) add(parent int, kind elemKind, name string) int {
	idx := len(t.elems)
	t.elems = append(t.elems, xmlElem{kind: kind, name: name, parent: parent})
	t.elems[parent].children = append(t.elems[parent].children, idx)
	return idx
}

func (t *xmlTree) detach(idx int) {
	parent := t.elems[idx].parent
	if parent == noParent {
		return
	}
	p := &t.elems[parent]
	if i := slices.Index(p.children, idx); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	t.elems[idx].parent = noParent
}

func (t *xmlTree) appendChild(parent, idx int) {
	t.detach(idx)
	t.elems[idx].parent = parent
	t.elems[parent].children = append(t.elems[parent].children, idx)
}

func (t *xmlTree) attr(idx int, name string) (string, bool) {
	for _, a := range t.elems[idx].attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

func (t *xmlTree) setAttr(idx int, name, value string) {
	e := &t.elems[idx]
	for i := range e.attrs {
		if e.attrs[i].name == name {
			e.attrs[i].value = value
			return
		}
	}
	e.attrs = append(e.attrs, xmlAttr{name: name, value: value})
}

func (t *xmlTree) removeAttr(idx int, name string) {
	e := &t.elems[idx]
	e.attrs = slices.DeleteFunc(e.attrs, func(a xmlAttr) bool { return a.name == name })
}

// isAncestor reports whether anc is a proper ancestor of idx.
func (t *xmlTree) isAncestor(anc, idx int) bool {
	for p := t.elems[idx].parent; p != noParent; p = t.elems[p].parent {
		if p == anc {
			return true
		}
	}
	return false
}

// preorder lists the elements reachable from the root.
func (t *xmlTree) preorder() []int {
	var out []int
	var walk func(int)
	walk = func(idx int) {
		out = append(out, idx)
		for _, c := range t.elems[idx].children {
			walk(c)
		}
	}
	walk(rootElem)
	return out
}

// nodeRef counts the predicate elements that reference a node element by
// rdf:resource or rdf:nodeID.
type nodeRef struct {
	count int
	prop  int
}

// inlineNodes moves every top-level node referenced by exactly one
// predicate under that predicate, unless the node is an ancestor of it,
// and drops the reference attributes that became redundant. It returns the
// rewritten tree and the number of nodes moved.
func inlineNodes(in xmlTree, refs map[int]nodeRef) (xmlTree, int) {
	t := in.clone()
	candidates := make([]int, 0, len(refs))
	for idx, ref := range refs {
		if ref.count == 1 {
			candidates = append(candidates, idx)
		}
	}
	slices.Sort(candidates)

	moved := 0
	for _, idx := range candidates {
		prop := refs[idx].prop
		if t.elems[idx].parent != rootElem || idx == prop || t.isAncestor(idx, prop) {
			continue
		}
		t.appendChild(prop, idx)
		t.removeAttr(prop, attrResource)
		t.removeAttr(prop, attrNodeID)
		t.removeAttr(idx, attrNodeID)
		moved++
	}
	return t, moved
}

// condense rewrites predicate elements whose only child is a plain
// rdf:Description. When the description holds only simple literal
// properties, its rdf:about and literals become attributes of the
// predicate; otherwise an anonymous description is unwrapped with
// rdf:parseType="Resource". It returns the rewritten tree and the number
// of descriptions removed.
func condense(in xmlTree) (xmlTree, int) {
	t := in.clone()
	removed := 0
	for _, prop := range t.preorder() {
		p := t.elems[prop]
		if p.kind != elemProp || len(p.children) != 1 || len(p.attrs) != 0 {
			continue
		}
		descr := p.children[0]
		about, hasAbout, ok := plainDescription(&t, descr)
		if !ok {
			continue
		}
		grandchildren := slices.Clone(t.elems[descr].children)
		switch {
		case (hasAbout || len(grandchildren) > 0) && allSimpleLiterals(&t, grandchildren):
			t.detach(descr)
			if hasAbout {
				t.setAttr(prop, attrResource, about)
			}
			for _, gc := range grandchildren {
				t.setAttr(prop, t.elems[gc].name, t.elems[gc].text)
				t.detach(gc)
			}
			removed++
		case !hasAbout:
			t.detach(descr)
			for _, gc := range grandchildren {
				t.appendChild(prop, gc)
			}
			t.setAttr(prop, attrParseType, "Resource")
			removed++
		}
	}
	return t, removed
}

// plainDescription reports whether idx is an untyped description carrying
// no attribute other than rdf:about.
func plainDescription(t *xmlTree, idx int) (about string, hasAbout, ok bool) {
	e := t.elems[idx]
	if e.kind != elemNode || e.name != descrQName || e.text != "" {
		return "", false, false
	}
	switch len(e.attrs) {
	case 0:
		return "", false, true
	case 1:
		if e.attrs[0].name == attrAbout {
			return e.attrs[0].value, true, true
		}
	}
	return "", false, false
}

// allSimpleLiterals reports whether every element is an attribute-free
// literal property, with no name used twice.
func allSimpleLiterals(t *xmlTree, idxs []int) bool {
	seen := make(map[string]struct{}, len(idxs))
	for _, idx := range idxs {
		e := t.elems[idx]
		if e.kind != elemProp || !e.literal || e.markup || len(e.attrs) != 0 {
			return false
		}
		if e.name == "rdf:type" {
			return false
		}
		if _, dup := seen[e.name]; dup {
			return false
		}
		seen[e.name] = struct{}{}
	}
	return true
}
