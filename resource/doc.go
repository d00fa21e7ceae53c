// Package resource bounds the memory, worker goroutines and IO throughput
// used by buffers that share a Controller.
//
// A nil *Controller is valid and imposes no limits, so callers can pass
// the controller through unconditionally.
package resource
