package dom

import "strings"

// Invoker is the stable listener registered with the host. Rebinding a
// handler swaps Handler instead of touching the host listener.
type Invoker struct {
	Handler func(event any)
}

// Invoke calls the current handler, if any
func (i *Invoker) Invoke(event any) {
	if i.Handler != nil {
		i.Handler(event)
	}
}

// EventTarget is an element able to hold event listeners. Invokers returns
// the element's own invoker table, keyed by prop name; it must return the same
// non-nil map on every call, so the table is released with the element.
type EventTarget interface {
	AddEventListener(name string, invoker *Invoker)
	RemoveEventListener(name string, invoker *Invoker)
	Invokers() map[string]*Invoker
}

// Events is an EventPatcher that keeps one invoker per element and key
type Events struct{}

// NewEvents creates an event patcher
func NewEvents() *Events {
	return &Events{}
}

// PatchEvent implements EventPatcher. el must be an EventTarget; value is a
// func(), a func(any) or nil to remove the listener.
func (e *Events) PatchEvent(el any, key string, value any) {
	target, ok := el.(EventTarget)
	if !ok {
		return
	}
	invokers := target.Invokers()
	if invokers == nil {
		return
	}

	existing := invokers[key]
	handler := toHandler(value)

	switch {
	case handler != nil && existing != nil:
		existing.Handler = handler
	case handler != nil:
		invoker := &Invoker{Handler: handler}
		invokers[key] = invoker
		target.AddEventListener(eventName(key), invoker)
	case existing != nil:
		target.RemoveEventListener(eventName(key), existing)
		delete(invokers, key)
	}
}

// eventName converts onClick to click
func eventName(key string) string {
	return strings.ToLower(key[2:])
}

// toHandler accepts the handler signatures generated code produces
func toHandler(value any) func(event any) {
	switch h := value.(type) {
	case func(any):
		return h
	case func():
		return func(any) { h() }
	default:
		return nil
	}
}
