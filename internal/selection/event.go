package selection

// Event is one user interaction consumed by Reduce.
type Event interface {
	// Name identifies the event kind in logs and analytics messages.
	Name() string
	event()
}

type (
	// SelectAll resets the selection to All.
	SelectAll struct{}

	// Toggle is a plain click on the entity Key shown at position Index.
	Toggle struct {
		Key   string
		Index int
	}

	// RangeSelect is a click made while the modifier is held. It falls back
	// to Toggle when no range can be formed.
	RangeSelect struct {
		Key   string
		Index int
	}

	// SetModifier records whether the range modifier is held.
	SetModifier struct {
		Active bool
	}
)

const (
	NameSelectAll   = "select_all"
	NameToggle      = "toggle"
	NameRangeSelect = "range"
	NameModifier    = "modifier"
)

func (SelectAll) Name() string   { return NameSelectAll }
func (Toggle) Name() string      { return NameToggle }
func (RangeSelect) Name() string { return NameRangeSelect }
func (SetModifier) Name() string { return NameModifier }

func (SelectAll) event()   {}
func (Toggle) event()      {}
func (RangeSelect) event() {}
func (SetModifier) event() {}
