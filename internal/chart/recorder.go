package chart

import (
	"slices"
	"sync"
)

const (
	OpInitialize = "initialize"
	OpUpdate     = "update"
)

// Command is one instruction for a remote surface, such as Chart.js in the
// browser: initialize means new Chart, update means replace data and redraw.
type Command struct {
	Op      string    `json:"op"`
	Kind    Kind      `json:"kind"`
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"values"`
	Colors  []string  `json:"colors,omitempty"`
	Options *Options  `json:"options,omitempty"`
}

// Recorder is a Surface that queues commands until Drain is called.
type Recorder struct {
	mu       sync.Mutex
	kind     Kind
	palette  []string
	commands []Command
}

// NewRecorder returns a recorder for kind.
func NewRecorder(kind Kind) *Recorder {
	return &Recorder{kind: kind}
}

func (r *Recorder) Initialize(kind Kind, labels []string, values []float64, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kind = kind
	r.palette = opts.Palette
	r.commands = append(r.commands, Command{
		Op:      OpInitialize,
		Kind:    kind,
		Labels:  slices.Clone(labels),
		Values:  slices.Clone(values),
		Colors:  Colors(r.palette, len(labels)),
		Options: &opts,
	})
	return nil
}

func (r *Recorder) Update(labels []string, values []float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, Command{
		Op:     OpUpdate,
		Kind:   r.kind,
		Labels: slices.Clone(labels),
		Values: slices.Clone(values),
		Colors: Colors(r.palette, len(labels)),
	})
	return nil
}

// Drain returns the queued commands and clears the queue.
func (r *Recorder) Drain() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.commands
	r.commands = nil
	return out
}

// Pending is the number of queued commands.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}
