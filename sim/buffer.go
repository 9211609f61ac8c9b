package sim

import "log"

// Hook positions of buffers. The item is the element pushed or popped, or
// the number of elements dropped by a clear.
var (
	HookPosBufPush  = &HookPos{Name: "Buffer Push"}
	HookPosBufPop   = &HookPos{Name: "Buffer Pop"}
	HookPosBufClear = &HookPos{Name: "Buffer Clear"}
)

// A Buffer is a bounded FIFO queue. Sockets keep the segments waiting for
// the link in one.
type Buffer interface {
	Named
	Hookable

	CanPush() bool
	Push(e any)
	Pop() any
	Peek() any
	Capacity() int
	Size() int
	Free() int

	// Clear drops all the elements.
	Clear()
}

// NewBuffer creates a buffer that holds up to capacity elements.
func NewBuffer(name string, capacity int) Buffer {
	NameMustBeValid(name)

	if capacity <= 0 {
		log.Panicf("buffer %s must have a positive capacity", name)
	}

	return &fifoBuffer{
		name:     name,
		capacity: capacity,
		elements: make([]any, 0, capacity),
	}
}

type fifoBuffer struct {
	HookableBase

	name     string
	capacity int
	elements []any
}

func (b *fifoBuffer) Name() string {
	return b.name
}

func (b *fifoBuffer) CanPush() bool {
	return b.Free() > 0
}

// Push panics when the buffer is full.
func (b *fifoBuffer) Push(e any) {
	if !b.CanPush() {
		log.Panicf("buffer %s overflow", b.name)
	}

	b.elements = append(b.elements, e)
	b.notify(HookPosBufPush, e)
}

// Pop returns nil when the buffer is empty.
func (b *fifoBuffer) Pop() any {
	if len(b.elements) == 0 {
		return nil
	}

	e := b.elements[0]
	b.elements[0] = nil
	b.elements = b.elements[1:]

	b.notify(HookPosBufPop, e)

	return e
}

func (b *fifoBuffer) Peek() any {
	if len(b.elements) == 0 {
		return nil
	}

	return b.elements[0]
}

func (b *fifoBuffer) Capacity() int {
	return b.capacity
}

func (b *fifoBuffer) Size() int {
	return len(b.elements)
}

func (b *fifoBuffer) Free() int {
	return b.capacity - len(b.elements)
}

func (b *fifoBuffer) Clear() {
	dropped := len(b.elements)
	if dropped == 0 {
		return
	}

	b.elements = make([]any, 0, b.capacity)
	b.notify(HookPosBufClear, dropped)
}

func (b *fifoBuffer) notify(pos *HookPos, item any) {
	if b.NumHooks() == 0 {
		return
	}

	b.InvokeHook(HookCtx{Domain: b, Pos: pos, Item: item})
}
