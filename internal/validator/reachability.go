package validator

import (
	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/flow"
)

// checkReachability walks the control graph from the first step and
// notes every step no path reaches. Edges are fall-through to the next
// step in document order, goto and call targets, and branch guard and
// merge targets. A step with gotos, or one a branch exits from, does
// not fall through. Purely advisory: dead steps are often drafts.
func checkReachability(f *flow.Flow) diag.List {
	steps := f.Steps()
	if len(steps) == 0 {
		return nil
	}

	pos := make(map[string]int, len(steps))
	for i, st := range steps {
		// First occurrence wins when keys collide; duplicates are
		// checkStructure's finding.
		if _, ok := pos[st.ID.Normal()]; !ok {
			pos[st.ID.Normal()] = i
		}
	}

	branched := make(map[string]bool, len(f.Branches))
	edges := make([][]int, len(steps))
	addEdge := func(from int, to string) {
		if ti, ok := pos[to]; ok {
			edges[from] = append(edges[from], ti)
		}
	}
	for bi := range f.Branches {
		br := &f.Branches[bi]
		from, ok := pos[br.From.Normal()]
		if !ok || len(br.Guards) == 0 {
			// A guardless branch transfers nothing; control falls
			// through as if it were absent.
			continue
		}
		branched[br.From.Normal()] = true
		for gi := range br.Guards {
			addEdge(from, br.Guards[gi].To.Normal())
		}
		if br.MergeTo != nil {
			addEdge(from, br.MergeTo.Normal())
		}
	}
	for i, st := range steps {
		for _, to := range st.Gotos {
			addEdge(i, to.Normal())
		}
		for _, to := range st.Calls {
			addEdge(i, to.Normal())
		}
		if len(st.Gotos) == 0 && !branched[st.ID.Normal()] && i+1 < len(steps) {
			edges[i] = append(edges[i], i+1)
		}
	}

	visited := make([]bool, len(steps))
	stack := []int{0}
	visited[0] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range edges[n] {
			if !visited[to] {
				visited[to] = true
				stack = append(stack, to)
			}
		}
	}

	var out diag.List
	for i, st := range steps {
		if !visited[i] {
			out = append(out, diag.Infof(diag.UnreachableStep,
				&diag.Location{Section: st.ID.Major(), Step: st.ID.String()},
				"no path from step %s reaches %s", steps[0].ID, st.ID))
		}
	}
	return out
}
