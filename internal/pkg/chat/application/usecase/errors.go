package usecase

import "fmt"

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = fmt.Errorf("chat use case persistence error")

// ErrValidation wraps rejected input. Surfaced explicitly on every entry
// point (websocket error frame, HTTP 400) rather than silently dropped.
var ErrValidation = fmt.Errorf("chat use case validation error")
