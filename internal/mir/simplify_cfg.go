package mir

import "slices"

// SimplifyCFG removes empty goto blocks and blocks unreachable from the
// entry, then renumbers the rest in their original order. The entry block
// stays bb0.
func SimplifyCFG(proc *Procedure) {
	if proc == nil || len(proc.Blocks) == 0 {
		return
	}
	redirects := buildRedirectMap(proc)
	applyRedirects(proc, redirects)
	reachable := computeReachability(proc)
	compactBlocks(proc, reachable)
}

// SimplifyProject runs SimplifyCFG over every procedure.
func SimplifyProject(p *Project) {
	if p == nil {
		return
	}
	for _, proc := range p.Procs {
		SimplifyCFG(proc)
	}
}

// buildRedirectMap maps every trivial goto block to the end of its goto
// chain. The entry block is never redirected.
func buildRedirectMap(proc *Procedure) map[BlockID]BlockID {
	redirects := make(map[BlockID]BlockID)
	for i := range proc.Blocks {
		bb := &proc.Blocks[i]
		if bb.ID == EntryBlock || !isTrivialGotoBlock(proc, bb.ID) {
			continue
		}
		target := bb.Term.Target
		visited := map[BlockID]bool{bb.ID: true}
		for !visited[target] {
			visited[target] = true
			if next, ok := redirects[target]; ok {
				target = next
				continue
			}
			if target != EntryBlock && isTrivialGotoBlock(proc, target) {
				target = proc.Blocks[target].Term.Target
				continue
			}
			break
		}
		// петля из пустых блоков остаётся как есть
		if target == bb.ID {
			continue
		}
		redirects[bb.ID] = target
	}
	return redirects
}

func isTrivialGotoBlock(proc *Procedure, id BlockID) bool {
	if id < 0 || int(id) >= len(proc.Blocks) {
		return false
	}
	bb := &proc.Blocks[id]
	return len(bb.Stmts) == 0 && bb.Term.Kind == TermGoTo
}

func applyRedirects(proc *Procedure, redirects map[BlockID]BlockID) {
	if len(redirects) == 0 {
		return
	}
	remapTerm(proc.Blocks, func(id BlockID) BlockID {
		if newID, ok := redirects[id]; ok {
			return newID
		}
		return id
	})
}

func remapTerm(blocks []BasicBlock, remap func(BlockID) BlockID) {
	for i := range blocks {
		term := &blocks[i].Term
		switch term.Kind {
		case TermGoTo:
			term.Target = remap(term.Target)
		case TermCondGoTo:
			term.True = remap(term.True)
			term.False = remap(term.False)
		case TermCallFn:
			call := *term.Call
			call.Reentry = remap(call.Reentry)
			term.Call = &call
		}
	}
}

// computeReachability marks every block reachable from the entry.
func computeReachability(proc *Procedure) []bool {
	reachable := make([]bool, len(proc.Blocks))
	stack := []BlockID{EntryBlock}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id < 0 || int(id) >= len(proc.Blocks) || reachable[id] {
			continue
		}
		reachable[id] = true
		stack = append(stack, proc.Blocks[id].Term.Successors()...)
	}
	return reachable
}

// pruneUnreachable drops every block the entry cannot reach.
func pruneUnreachable(proc *Procedure) {
	reachable := computeReachability(proc)
	if slices.Contains(reachable, false) {
		compactBlocks(proc, reachable)
	}
}

func compactBlocks(proc *Procedure, reachable []bool) {
	oldToNew := make(map[BlockID]BlockID, len(proc.Blocks))
	kept := make([]BasicBlock, 0, len(proc.Blocks))
	for i, keep := range reachable {
		if keep {
			oldToNew[BlockID(i)] = BlockID(len(kept)) //nolint:gosec // bounded by block count
			kept = append(kept, proc.Blocks[i])
		}
	}
	for i := range kept {
		kept[i].ID = BlockID(i) //nolint:gosec // bounded by block count
	}
	remapTerm(kept, func(id BlockID) BlockID {
		if newID, ok := oldToNew[id]; ok {
			return newID
		}
		return id
	})
	proc.Blocks = kept
}
