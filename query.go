package gfx

// QueryState is the state of an OcclusionQuery.
type QueryState int

const (
	QueryIdle QueryState = iota
	QueryQuerying
	QueryPending
	QueryComplete
)

func (s QueryState) String() string {
	switch s {
	case QueryIdle:
		return "Idle"
	case QueryQuerying:
		return "Querying"
	case QueryPending:
		return "Pending"
	case QueryComplete:
		return "Complete"
	}
	return "QueryState(?)"
}

// OcclusionQuery counts the samples that pass the depth and stencil tests
// between Begin and End.
//
// Begin moves the query to Querying, End to Pending, and the first
// IsComplete or PixelCount that finds the result available to Complete. End
// outside Querying, and IsComplete or PixelCount before End, fail with
// ErrInvalidOperation.
type OcclusionQuery struct {
	resource
	strategy QueryStrategy
	state    QueryState
	pixels   int
}

// NewOcclusionQuery creates a query. It fails with ErrNotSupported on
// devices without occlusion queries.
func NewOcclusionQuery(dev *GraphicsDevice) (*OcclusionQuery, error) {
	if dev == nil {
		return nil, argError("graphicsDevice", "must not be nil")
	}
	if err := dev.checkUsable(); err != nil {
		return nil, err
	}
	if !dev.caps.SupportsOcclusionQuery {
		return nil, notSupported("", "occlusion queries are not supported on this device")
	}
	q := &OcclusionQuery{}
	if err := q.create(dev); err != nil {
		return nil, err
	}
	q.attach(dev, q, "OcclusionQuery")
	return q, nil
}

func (q *OcclusionQuery) create(dev *GraphicsDevice) error {
	s, err := dev.strategy.CreateOcclusionQuery()
	if err != nil {
		return dev.wrap("create occlusion query", err)
	}
	q.strategy = s
	return nil
}

// State returns the query state.
func (q *OcclusionQuery) State() QueryState { return q.state }

func (q *OcclusionQuery) native() (QueryStrategy, error) {
	stale, err := q.check()
	if err != nil {
		return nil, err
	}
	if stale {
		if err := q.create(q.device); err != nil {
			return nil, err
		}
		q.recreated()
		q.state = QueryIdle
		q.pixels = 0
	}
	return q.strategy, nil
}

// Begin starts counting. Beginning a Pending or Complete query restarts it.
func (q *OcclusionQuery) Begin() error {
	n, err := q.native()
	if err != nil {
		return err
	}
	if q.state == QueryQuerying {
		return invalidOp("Begin cannot be called again until End has been called")
	}
	if err := n.Begin(); err != nil {
		return q.device.wrap("begin query", err)
	}
	q.state = QueryQuerying
	q.pixels = 0
	return nil
}

// End stops counting. The result becomes available asynchronously.
func (q *OcclusionQuery) End() error {
	n, err := q.native()
	if err != nil {
		return err
	}
	if q.state != QueryQuerying {
		return invalidOp("End must be preceded by Begin, the query is %s", q.state)
	}
	if err := n.End(); err != nil {
		return q.device.wrap("end query", err)
	}
	q.state = QueryPending
	return nil
}

// IsComplete reports whether the result is available. It never blocks.
func (q *OcclusionQuery) IsComplete() (bool, error) {
	if err := q.poll(); err != nil {
		return false, err
	}
	return q.state == QueryComplete, nil
}

// PixelCount returns the number of samples that passed. It fails with
// ErrInvalidOperation while the result is not available yet; poll
// IsComplete first.
func (q *OcclusionQuery) PixelCount() (int, error) {
	if err := q.poll(); err != nil {
		return 0, err
	}
	if q.state != QueryComplete {
		return 0, invalidOp("the query result is not available yet")
	}
	return q.pixels, nil
}

func (q *OcclusionQuery) poll() error {
	n, err := q.native()
	if err != nil {
		return err
	}
	switch q.state {
	case QueryIdle, QueryQuerying:
		return invalidOp("End must be called before the query result is read, the query is %s", q.state)
	case QueryComplete:
		return nil
	}
	pixels, ok, err := n.Result()
	if err != nil {
		return q.device.wrap("read query", err)
	}
	if ok {
		q.pixels = pixels
		q.state = QueryComplete
	}
	return nil
}

func (q *OcclusionQuery) release() {
	if q.strategy != nil && q.current() {
		q.strategy.Dispose()
	}
	q.strategy = nil
}
