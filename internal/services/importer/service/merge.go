package service

import "github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"

// MergeIDs is an ordered set union keyed on the id: base keeps its order and
// its JSON tokens minus repeats, new ids go last
func MergeIDs(base []crm.Entry, add ...crm.ID) []crm.Entry {
	out := make([]crm.Entry, 0, len(base)+len(add))
	seen := make(map[crm.ID]struct{}, len(base)+len(add))
	keep := func(e crm.Entry) {
		if _, dup := seen[e.ID]; dup {
			return
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	for _, e := range base {
		keep(e)
	}
	for _, id := range add {
		keep(crm.NewEntry(id))
	}
	return out
}
