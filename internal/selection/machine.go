package selection

// Machine owns the selection of one dashboard view.
type Machine struct {
	model Model
	index Index
}

// NewMachine starts in All with the modifier released.
func NewMachine(index Index) *Machine {
	return &Machine{index: index}
}

// Dispatch applies ev and returns the resulting state. A rejected event
// leaves the machine untouched.
func (m *Machine) Dispatch(ev Event) (State, error) {
	next, err := Reduce(m.model, ev, m.index)
	if err != nil {
		return m.model.State, err
	}
	m.model = next
	return m.model.State, nil
}

// State returns the current selection.
func (m *Machine) State() State { return m.model.State }

// Modifier reports whether the range modifier is held.
func (m *Machine) Modifier() bool { return m.model.Modifier }
