package wgpu

import (
	"fmt"

	"github.com/gogpu/gfx"
)

// query stands in for an occlusion query. HAL render passes cannot begin
// occlusion queries, so a query completes as soon as it ends and counts
// zero samples.
type query struct {
	dev    *device
	gen    uint64
	active bool
	ended  bool
}

func (q *query) Begin() error {
	if err := q.dev.usable(q.gen); err != nil {
		return err
	}
	q.active, q.ended = true, false
	return nil
}

func (q *query) End() error {
	if err := q.dev.usable(q.gen); err != nil {
		return err
	}
	if !q.active {
		return fmt.Errorf("%w: wgpu: query ended without Begin", gfx.ErrInvalidOperation)
	}
	q.active, q.ended = false, true
	return nil
}

func (q *query) Result() (int, bool, error) {
	if err := q.dev.usable(q.gen); err != nil {
		return 0, false, err
	}
	return 0, q.ended, nil
}

func (*query) Dispose() {}
