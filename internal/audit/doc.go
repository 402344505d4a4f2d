// Package audit defines the audit event model and the buffered dispatcher
// that forwards events to a host-provided sink without blocking session
// operations. Events may be dropped under backpressure; drops are counted,
// never silently lost.
package audit
