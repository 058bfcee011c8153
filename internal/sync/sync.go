// Package sync plans the replacement of a nested collection. Owned members
// that disappear from the desired list are destroyed, shared members are only
// detached. Plans are pure so the diff can be inspected before it is applied.
package sync

// Line describes one owned ingredient line. ID is zero for lines that do not
// exist yet.
type Line struct {
	ID           uint
	IngredientID uint
	UnitID       uint
	Amount       float64
	Note         string
}

func (l Line) sameContent(other Line) bool {
	return l.IngredientID == other.IngredientID &&
		l.UnitID == other.UnitID &&
		l.Amount == other.Amount &&
		l.Note == other.Note
}

// LinePlan is the outcome of diffing owned lines.
type LinePlan struct {
	// Keep maps a desired position to the persisted line it reuses.
	Keep map[int]uint
	// Create lists the desired positions that need a new row.
	Create []int
	// Delete lists persisted line ids that are no longer wanted.
	Delete []uint
}

// PlanLines matches desired lines against the persisted ones. A desired line
// carrying the id of a persisted line reuses that row; otherwise the first
// unused persisted line with identical content is reused. Everything else is
// created, and persisted lines left over are deleted.
func PlanLines(current, desired []Line) LinePlan {
	plan := LinePlan{Keep: make(map[int]uint)}
	used := make(map[uint]bool, len(current))
	byID := make(map[uint]Line, len(current))
	for _, line := range current {
		byID[line.ID] = line
	}

	pending := make([]int, 0, len(desired))
	for pos, line := range desired {
		if line.ID != 0 {
			if _, ok := byID[line.ID]; ok && !used[line.ID] {
				used[line.ID] = true
				plan.Keep[pos] = line.ID
				continue
			}
		}
		pending = append(pending, pos)
	}

	for _, pos := range pending {
		matched := false
		for _, line := range current {
			if used[line.ID] || !line.sameContent(desired[pos]) {
				continue
			}
			used[line.ID] = true
			plan.Keep[pos] = line.ID
			matched = true
			break
		}
		if !matched {
			plan.Create = append(plan.Create, pos)
		}
	}

	for _, line := range current {
		if !used[line.ID] {
			plan.Delete = append(plan.Delete, line.ID)
		}
	}
	return plan
}

// LinkPlan is the outcome of diffing shared references.
type LinkPlan struct {
	Attach []uint
	Detach []uint
}

// Empty reports whether applying the plan would change anything.
func (p LinkPlan) Empty() bool {
	return len(p.Attach) == 0 && len(p.Detach) == 0
}

// PlanLinks diffs two id sets. Duplicates in desired are attached once.
func PlanLinks(current, desired []uint) LinkPlan {
	var plan LinkPlan
	have := make(map[uint]bool, len(current))
	for _, id := range current {
		have[id] = true
	}
	want := make(map[uint]bool, len(desired))
	for _, id := range desired {
		if want[id] {
			continue
		}
		want[id] = true
		if !have[id] {
			plan.Attach = append(plan.Attach, id)
		}
	}
	for _, id := range current {
		if !want[id] {
			plan.Detach = append(plan.Detach, id)
		}
	}
	return plan
}
