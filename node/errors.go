package node

import (
	"errors"
	"fmt"
)

var (
	ErrNodeStopped    = errors.New("node not started")
	ErrServiceUnknown = errors.New("unknown service")
)

// DuplicateServiceError is returned during Start if a registered service
// constructor clashes with the name of an already registered one.
type DuplicateServiceError struct {
	Kind string
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("duplicate service: %s", e.Kind)
}

// StopError is returned if a node fails to stop either any of its registered
// services or itself.
type StopError struct {
	Server   error
	Services map[string]error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("server: %v, services: %v", e.Server, e.Services)
}
