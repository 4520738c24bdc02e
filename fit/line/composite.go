package line

// Composite is the sum of an ordered list of child models. Its parameter
// vector is the concatenation of the children's vectors in child order;
// no parameter is shared between children.
//
// Adding or removing a child changes NumParams and invalidates any fit in
// progress.
type Composite struct {
	models  []Model
	offsets []int
	n       int
}

// NewComposite returns a composite of the given children.
func NewComposite(models ...Model) *Composite {
	c := &Composite{}
	for _, m := range models {
		c.Add(m)
	}

	return c
}

// Add appends a child. Nil models are ignored.
func (c *Composite) Add(m Model) {
	if m == nil {
		return
	}

	c.models = append(c.models, m)
	c.reindex()
}

// Remove deletes the first child identical to m and reports whether one
// was found.
func (c *Composite) Remove(m Model) bool {
	for i, child := range c.models {
		if child == m {
			c.models = append(c.models[:i], c.models[i+1:]...)
			c.reindex()

			return true
		}
	}

	return false
}

func (c *Composite) reindex() {
	c.offsets = c.offsets[:0]
	c.n = 0

	for _, m := range c.models {
		c.offsets = append(c.offsets, c.n)
		c.n += m.NumParams()
	}
}

// Len returns the number of children.
func (c *Composite) Len() int { return len(c.models) }

// Models returns the children in order. The slice is a copy.
func (c *Composite) Models() []Model {
	return append([]Model(nil), c.models...)
}

// Offset returns the index of m's first parameter in the aggregate vector,
// or -1 if m is not a child.
func (c *Composite) Offset(m Model) int {
	for i, child := range c.models {
		if child == m {
			return c.offsets[i]
		}
	}

	return -1
}

// Owner maps an aggregate parameter index to the child owning it and the
// index within that child. It returns (nil, -1) if i is out of range.
func (c *Composite) Owner(i int) (Model, int) {
	if i < 0 || i >= c.n {
		return nil, -1
	}

	for k := len(c.models) - 1; k >= 0; k-- {
		if i >= c.offsets[k] {
			return c.models[k], i - c.offsets[k]
		}
	}

	return nil, -1
}

// NumParams returns the sum of the children's parameter counts.
func (c *Composite) NumParams() int { return c.n }

// Params returns the children's parameters, concatenated.
func (c *Composite) Params() []*Param {
	out := make([]*Param, 0, c.n)
	for _, m := range c.models {
		out = append(out, m.Params()...)
	}

	return out
}

// Eval returns the sum of the children's values.
func (c *Composite) Eval(x float64) float64 {
	sum := 0.0
	for _, m := range c.models {
		sum += m.Eval(x)
	}

	return sum
}

// EvalDeriv routes each child's slice of params and deriv to that child
// and returns the summed value.
func (c *Composite) EvalDeriv(x float64, params, deriv []float64) float64 {
	sum := 0.0

	for i, m := range c.models {
		lo := c.offsets[i]
		hi := lo + m.NumParams()

		var d []float64
		if deriv != nil {
			d = deriv[lo:hi:hi]
		}

		sum += m.EvalDeriv(x, params[lo:hi:hi], d)
	}

	return sum
}

// ValidParams reports whether every child accepts its slice of params.
func (c *Composite) ValidParams(params []float64) bool {
	for i, m := range c.models {
		lo := c.offsets[i]
		if !m.ValidParams(params[lo : lo+m.NumParams()]) {
			return false
		}
	}

	return true
}

// Scale returns the mean scale of the children.
func (c *Composite) Scale() float64 {
	return c.mean(Model.Scale)
}

// Centre returns the mean centre of the children.
func (c *Composite) Centre() float64 {
	return c.mean(Model.Centre)
}

// Flux returns the total flux of the children.
func (c *Composite) Flux() float64 {
	sum := 0.0
	for _, m := range c.models {
		sum += m.Flux()
	}

	return sum
}

func (c *Composite) mean(f func(Model) float64) float64 {
	if len(c.models) == 0 {
		return 0
	}

	sum := 0.0
	for _, m := range c.models {
		sum += f(m)
	}

	return sum / float64(len(c.models))
}
