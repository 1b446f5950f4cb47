package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"finstruct/pkg/core/audit"
	"finstruct/pkg/core/columns"
	"finstruct/pkg/core/oracle"
)

// Resolver decides a divergence when the engine cannot. Implementations
// must be safe to call sequentially from a single stream.
type Resolver interface {
	Resolve(cmp *Comparison, op *oracle.Opinion) (audit.Resolution, error)
}

// ConsoleResolver prompts an operator on a terminal. It blocks until a
// choice is read, so it must only be wired in interactive runs; automated
// environments leave manual resolution disabled and take the default
// policy instead.
type ConsoleResolver struct {
	In  io.Reader
	Out io.Writer
}

var _ Resolver = (*ConsoleResolver)(nil)

// Resolve displays both results and their differences, then reads a choice.
// EOF or a read error resolves to skip, matching an operator interrupt.
func (r *ConsoleResolver) Resolve(cmp *Comparison, op *oracle.Opinion) (audit.Resolution, error) {
	w := r.Out
	fmt.Fprintln(w, "rule and oracle classifications disagree; a decision is needed")
	fmt.Fprintf(w, "\nrow (%d columns):\n", len(cmp.Row))
	for idx, cell := range cmp.Row {
		fmt.Fprintf(w, "  col %d: %q\n", idx, cell)
	}

	fmt.Fprintf(w, "\nrule result:\n")
	printRoleMap(w, cmp.RuleMap, cmp.Row)
	fmt.Fprintf(w, "\noracle result (confidence %.2f):\n", op.Confidence)
	printRoleMap(w, op.Roles, cmp.Row)
	if op.Reasoning != "" {
		fmt.Fprintf(w, "\noracle reasoning: %s\n", op.Reasoning)
	}

	fmt.Fprintf(w, "\ndifferences (%d):\n", len(cmp.Differences))
	for _, d := range cmp.Differences {
		fmt.Fprintf(w, "  - %s\n", d.Description)
	}

	fmt.Fprintln(w, "\nchoose: [1] keep rule result  [2] use oracle result  [3] skip this row")

	scanner := bufio.NewScanner(r.In)
	for {
		fmt.Fprint(w, "choice (1/2/3): ")
		if !scanner.Scan() {
			fmt.Fprintln(w, "\ninput closed, skipping row")
			return audit.ResolutionSkip, scanner.Err()
		}
		switch scanner.Text() {
		case "1":
			return audit.ResolutionRule, nil
		case "2":
			return audit.ResolutionOracle, nil
		case "3":
			return audit.ResolutionSkip, nil
		default:
			fmt.Fprintln(w, "invalid choice, enter 1, 2 or 3")
		}
	}
}

func printRoleMap(w io.Writer, m columns.RoleMap, row []string) {
	if len(m) == 0 {
		fmt.Fprintln(w, "  (no roles assigned)")
		return
	}
	type entry struct {
		role columns.ColumnRole
		idx  int
	}
	entries := make([]entry, 0, len(m))
	for role, idx := range m {
		entries = append(entries, entry{role, idx})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	for _, e := range entries {
		fmt.Fprintf(w, "  - %-16s col %d = %q\n", e.role, e.idx, cellAt(row, e.idx))
	}
}
