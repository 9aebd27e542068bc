package completion

// State 是补全弹窗的状态。
// 不变式：Visible 等价于 len(Items) > 0；可见时 0 <= Selected < len(Items)。
type State struct {
	Items    []Item
	Selected int
	Visible  bool
	Type     Type
	Token    Token
}

func (s *State) set(res Result) {
	s.Items = res.Items
	s.Selected = 0
	s.Visible = len(res.Items) > 0
	s.Token = res.Token
	if s.Visible {
		s.Type = res.Type
	} else {
		s.Items = nil
		s.Type = TypeNone
	}
}

// Hide 清空候选并重置选中项。
func (s *State) Hide() {
	*s = State{}
}

func (s *State) Move(delta int) {
	if !s.Visible {
		return
	}
	next := s.Selected + delta
	if next < 0 {
		next = 0
	}
	if next >= len(s.Items) {
		next = len(s.Items) - 1
	}
	s.Selected = next
}

func (s State) Current() (Item, bool) {
	if !s.Visible || s.Selected < 0 || s.Selected >= len(s.Items) {
		return Item{}, false
	}
	return s.Items[s.Selected], true
}
