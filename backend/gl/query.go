package gl

import "github.com/gogpu/gfx"

// query is an occlusion query counting samples that pass the depth test.
type query struct {
	dev *device
	gen uint64
	obj Object
}

func (q *query) Begin() error {
	d := q.dev
	if !d.alive(q.gen) {
		return gfx.ErrDeviceLost
	}
	d.f.BeginQuery(SAMPLES_PASSED, q.obj)
	return d.glError("begin query")
}

func (q *query) End() error {
	d := q.dev
	if !d.alive(q.gen) {
		return gfx.ErrDeviceLost
	}
	d.f.EndQuery(SAMPLES_PASSED)
	return d.glError("end query")
}

func (q *query) Result() (int, bool, error) {
	d := q.dev
	if !d.alive(q.gen) {
		return 0, false, gfx.ErrDeviceLost
	}
	if d.f.GetQueryObjectuiv(q.obj, QUERY_RESULT_AVAILABLE) == 0 {
		return 0, false, nil
	}
	n := d.f.GetQueryObjectuiv(q.obj, QUERY_RESULT)
	return int(n), true, d.glError("query result")
}

func (q *query) Dispose() {
	if !q.obj.Valid() {
		return
	}
	if q.dev.alive(q.gen) {
		q.dev.f.DeleteQuery(q.obj)
	}
	q.obj = 0
}
