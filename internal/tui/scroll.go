package tui

// scroller tracks the selected row and the first visible row of a list.
// After clamp, 0 <= offset <= max(0, n-visible) and the cursor is inside
// the window.
type scroller struct {
	cursor int
	offset int
}

func (s *scroller) clamp(n, visible int) {
	if visible < 1 {
		visible = 1
	}
	if n <= 0 {
		s.cursor, s.offset = 0, 0
		return
	}

	s.cursor = clampInt(s.cursor, 0, n-1)
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+visible {
		s.offset = s.cursor - visible + 1
	}
	s.offset = clampInt(s.offset, 0, max(0, n-visible))
}

func (s *scroller) move(delta, n, visible int) {
	s.cursor += delta
	s.clamp(n, visible)
}

func (s *scroller) top(n, visible int) {
	s.cursor = 0
	s.clamp(n, visible)
}

func (s *scroller) bottom(n, visible int) {
	s.cursor = n - 1
	s.clamp(n, visible)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
