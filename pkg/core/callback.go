package core

import "github.com/google/uuid"

// Callback receives a timer's id and payload when it fires. It is invoked on
// the dispatcher goroutine with no engine locks held; a callback that blocks
// delays every subsequent dispatch.
type Callback interface {
	Invoke(id uuid.UUID, payload string)
}

// CallbackFunc adapts a plain function to the Callback interface.
type CallbackFunc func(id uuid.UUID, payload string)

// Invoke calls f(id, payload).
func (f CallbackFunc) Invoke(id uuid.UUID, payload string) {
	f(id, payload)
}
