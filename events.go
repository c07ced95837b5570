package gfx

// event is a list of handlers. Subscribing returns a func that removes the
// handler again; removing twice is harmless.
type event[T any] struct {
	nextID   int
	handlers []eventHandler[T]
}

type eventHandler[T any] struct {
	id int
	fn func(T)
}

func (e *event[T]) add(fn func(T)) (remove func()) {
	if fn == nil {
		return func() {}
	}
	e.nextID++
	id := e.nextID
	e.handlers = append(e.handlers, eventHandler[T]{id: id, fn: fn})
	return func() {
		for i, h := range e.handlers {
			if h.id == id {
				e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
				return
			}
		}
	}
}

// emit calls every handler registered at the time of the call, in order.
func (e *event[T]) emit(v T) {
	hs := e.handlers
	for _, h := range hs {
		h.fn(v)
	}
}

func (e *event[T]) len() int { return len(e.handlers) }

// PresentationEventArgs accompanies PresentationChanged.
type PresentationEventArgs struct {
	Device *GraphicsDevice
	// Parameters are the parameters now in effect.
	Parameters PresentationParameters
	// Previous are the parameters replaced by the reset.
	Previous PresentationParameters
}
