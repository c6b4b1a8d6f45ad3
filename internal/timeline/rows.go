package timeline

// Row pairs the buyer and seller steps rendered at one vertical position.
type Row struct {
	Buyer  Step `json:"buyer"`
	Seller Step `json:"seller"`
}

// Rows zips the two derived tracks into renderable rows. Tracks derived
// through DeriveTracks always have equal length; a shorter track is padded
// with placeholders as a guard against hand-built inputs.
func Rows(buyer, seller []Step) []Row {
	length := len(buyer)
	if len(seller) > length {
		length = len(seller)
	}
	rows := make([]Row, 0, length)
	for i := 0; i < length; i++ {
		row := Row{Buyer: placeholder(), Seller: placeholder()}
		if i < len(buyer) {
			row.Buyer = buyer[i]
		}
		if i < len(seller) {
			row.Seller = seller[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// DotStatus is the shared center-dot status for the row: completed when
// either side is completed, current when either side is current, otherwise
// pending.
func (r Row) DotStatus() Status {
	if r.Buyer.Status == StatusCompleted || r.Seller.Status == StatusCompleted {
		return StatusCompleted
	}
	if r.Buyer.Status == StatusCurrent || r.Seller.Status == StatusCurrent {
		return StatusCurrent
	}
	return StatusPending
}

// CanClick reports whether the step at index i on the viewer's own track
// opens its form. Completed steps and placeholders are inert. The closing
// steps unlock sequentially: every earlier step on the track must be a
// placeholder or completed first.
func CanClick(track []Step, i int) bool {
	if i < 0 || i >= len(track) {
		return false
	}
	step := track[i]
	if step.Placeholder || step.Status == StatusCompleted {
		return false
	}
	if closingTitles[step.Title] {
		for j := 0; j < i; j++ {
			if track[j].Placeholder {
				continue
			}
			if track[j].Status != StatusCompleted {
				return false
			}
		}
	}
	return true
}
