package order

// Line 参与重复判断的最小信息
type Line struct {
	BookID   string
	Quantity int
}

// LinesOf 提取订单明细的(图书, 数量)
func LinesOf(items []Item) []Line {
	lines := make([]Line, len(items))
	for i, it := range items {
		lines[i] = Line{BookID: it.BookID, Quantity: it.Quantity}
	}
	return lines
}

// SameLines 两组明细的(图书, 数量)多重集合是否相同
// 价格、书名等其它字段不参与比较。
func SameLines(a, b []Line) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[Line]int, len(a))
	for _, l := range a {
		counts[l]++
	}
	for _, l := range b {
		if counts[l] == 0 {
			return false
		}
		counts[l]--
	}
	return true
}

// FindDuplicate 在近期订单中查找与lines相同的订单
// recent应按创建时间倒序，返回第一个匹配的订单
func FindDuplicate(recent []*Order, lines []Line) *Order {
	for _, o := range recent {
		if SameLines(LinesOf(o.Items), lines) {
			return o
		}
	}
	return nil
}

// IsDuplicate recent中是否存在与lines相同的订单
func IsDuplicate(recent []*Order, lines []Line) bool {
	return FindDuplicate(recent, lines) != nil
}
