package gfx

import "testing"

func TestOcclusionQueryLifecycle(t *testing.T) {
	dev, fd := newTestDevice(t)
	q, err := NewOcclusionQuery(dev)
	if err != nil {
		t.Fatal(err)
	}
	native := fd.queries[0]
	if q.State() != QueryIdle {
		t.Fatalf("State() = %v, want Idle", q.State())
	}

	_, err = q.PixelCount()
	errIs(t, err, ErrInvalidOperation)
	errIs(t, q.End(), ErrInvalidOperation)

	if err := q.Begin(); err != nil {
		t.Fatal(err)
	}
	errIs(t, q.Begin(), ErrInvalidOperation)
	_, err = q.IsComplete()
	errIs(t, err, ErrInvalidOperation)

	if err := q.End(); err != nil {
		t.Fatal(err)
	}
	if q.State() != QueryPending {
		t.Fatalf("State() = %v, want Pending", q.State())
	}
	errIs(t, q.End(), ErrInvalidOperation)

	native.pollsUntilReady = 3
	done, err := q.IsComplete()
	if err != nil || done {
		t.Fatalf("IsComplete() = %v, %v; want false", done, err)
	}
	_, err = q.PixelCount()
	errIs(t, err, ErrInvalidOperation)
	if done, _ := q.IsComplete(); !done || q.State() != QueryComplete {
		t.Fatalf("State() = %v, want Complete after the third poll", q.State())
	}
	n, err := q.PixelCount()
	if err != nil || n != 1234 {
		t.Fatalf("PixelCount() = %d, %v; want 1234", n, err)
	}
	polls := native.polls
	if done, _ := q.IsComplete(); !done || native.polls != polls {
		t.Error("a complete query should not poll the backend")
	}

	// Restarting resets the result.
	if err := q.Begin(); err != nil {
		t.Fatal(err)
	}
	if q.State() != QueryQuerying || native.begins != 2 {
		t.Errorf("restart: state %v begins %d", q.State(), native.begins)
	}
	q.Dispose()
	if !native.disposed {
		t.Error("native query not disposed")
	}
	errIs(t, q.Begin(), ErrDisposed)
}

func TestOcclusionQueryNotSupported(t *testing.T) {
	caps := fakeCaps()
	caps.SupportsOcclusionQuery = false
	dev, fd := newTestDeviceCaps(t, HiDef, caps)
	_, err := NewOcclusionQuery(dev)
	errIs(t, err, ErrNotSupported)
	if len(fd.queries) != 0 {
		t.Error("native query created on a device without support")
	}
	_, err = NewOcclusionQuery(nil)
	errIs(t, err, ErrInvalidArgument)
}

func TestOcclusionQueryAfterRecovery(t *testing.T) {
	dev, fd := newTestDevice(t)
	q, _ := NewOcclusionQuery(dev)
	_ = q.Begin()
	_ = q.End()

	fd.lose()
	_, err := q.IsComplete()
	errIs(t, err, ErrDeviceLost)
	if err := dev.Recover(); err != nil {
		t.Fatal(err)
	}
	// The pending result died with the old native query.
	_, err = q.PixelCount()
	errIs(t, err, ErrInvalidOperation)
	if q.State() != QueryIdle || len(fd.queries) != 2 {
		t.Errorf("after recovery: state %v, natives %d", q.State(), len(fd.queries))
	}
	if err := q.Begin(); err != nil {
		t.Fatal(err)
	}
}
