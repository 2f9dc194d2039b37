package windows

// Reconcile merges the previous MRU order with a fresh snapshot.
//
// The focused window (if present in current) goes first, then every window
// of previous that still exists in its previous order, then windows that are
// new in current in snapshot order. Entries always carry current data, and
// windows missing from current are dropped.
func Reconcile(previous, current []Window, focused int64) []Window {
	byID := make(map[int64]Window, len(current))
	for _, w := range current {
		byID[w.ID] = w
	}

	result := make([]Window, 0, len(byID))
	placed := make(map[int64]struct{}, len(byID))
	place := func(id int64) {
		if _, done := placed[id]; done {
			return
		}
		w, ok := byID[id]
		if !ok {
			return
		}
		placed[id] = struct{}{}
		result = append(result, w)
	}

	if focused != NoWindow {
		place(focused)
	}
	for _, w := range previous {
		place(w.ID)
	}
	for _, w := range current {
		place(w.ID)
	}
	return result
}
