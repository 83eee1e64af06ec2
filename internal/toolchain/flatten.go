package toolchain

// node is a declaration that may extend another one by name.
type node interface {
	comparable
	nodeName() string
	extendsName() string
	location() Location
}

// visit is the state of one flatten walk.
type visit[T node] struct {
	kind  string
	stack []T
	on    map[string]bool
	out   []T
}

// flatten walks the extends chain of start and returns it base-first:
// the node without extends comes first and start comes last.
// lookup resolves an extends name; a miss is an UnresolvedReferenceError.
func flatten[T node](kind string, start T, lookup func(name string) (T, bool)) ([]T, error) {
	v := &visit[T]{kind: kind, on: make(map[string]bool)}
	var zero T
	if err := collect(v, start, zero, lookup); err != nil {
		return nil, err
	}
	return v.out, nil
}

// collect pushes cur on the visiting stack, visits its base and pops it.
// Finding a node that is still on the stack means the chain loops.
func collect[T node](v *visit[T], cur, parent T, lookup func(string) (T, bool)) error {
	var zero T
	if v.on[cur.nodeName()] {
		e := &CyclicExtendsError{Kind: v.kind, Node: cur.nodeName()}
		if parent != zero {
			e.Parent = parent.nodeName()
		}
		for _, n := range v.stack {
			e.Stack = append(e.Stack, n.nodeName())
		}
		return e
	}
	v.on[cur.nodeName()] = true
	v.stack = append(v.stack, cur)

	if base := cur.extendsName(); base != "" {
		next, ok := lookup(base)
		if !ok {
			return &UnresolvedReferenceError{
				Kind:     v.kind,
				Name:     base,
				Referrer: v.kind + " '" + cur.nodeName() + "'",
				Loc:      cur.location(),
			}
		}
		if err := collect(v, next, cur, lookup); err != nil {
			return err
		}
	}

	v.stack = v.stack[:len(v.stack)-1]
	delete(v.on, cur.nodeName())
	v.out = append(v.out, cur)
	return nil
}
