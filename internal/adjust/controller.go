package adjust

// Direction is a quarter-turn rotation direction.
type Direction int

const (
	RotateRight Direction = iota
	RotateLeft
)

// Controller holds the canonical adjustment state and publishes every change
// to a single subscriber, normally the render scheduler.
type Controller struct {
	state    State
	listener func(State)
}

// NewController creates a Controller in the default state.
func NewController() *Controller {
	return &Controller{state: Default()}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Subscribe registers fn as the change listener, replacing any previous one.
func (c *Controller) Subscribe(fn func(State)) {
	c.listener = fn
}

func (c *Controller) set(s State) {
	c.state = s
	if c.listener != nil {
		c.listener(s)
	}
}

// SetSlider sets the named slider. Out of range values are clamped.
func (c *Controller) SetSlider(name string, v float64) error {
	s, err := c.state.With(name, v)
	if err != nil {
		return err
	}
	c.set(s)
	return nil
}

// ApplyPreset merges the named preset into the current state.
func (c *Controller) ApplyPreset(name PresetName) error {
	s, err := c.state.ApplyPreset(name)
	if err != nil {
		return err
	}
	c.set(s)
	return nil
}

// Rotate turns the image a quarter turn. Four turns in one direction return
// to the starting rotation.
func (c *Controller) Rotate(d Direction) {
	s := c.state
	if d == RotateLeft {
		s.Rotation = normalizeRotation(s.Rotation - 90)
	} else {
		s.Rotation = normalizeRotation(s.Rotation + 90)
	}
	c.set(s)
}

func (c *Controller) FlipHorizontal() {
	s := c.state
	s.FlipH = !s.FlipH
	c.set(s)
}

func (c *Controller) FlipVertical() {
	s := c.state
	s.FlipV = !s.FlipV
	c.set(s)
}

// ResetAll returns every slider, the transform and the preset to their no-op
// values. The working bitmap is not touched.
func (c *Controller) ResetAll() {
	c.set(Default())
}

// Restore replaces the state wholesale, clamping it first.
func (c *Controller) Restore(s State) {
	c.set(s.Clamp())
}
