// Package report defines the sinks the driver reports errors to.
//
// Development errors flag API misuse and state violations. Production errors
// are pass/fail events raised by hardware operations. Both sinks are optional;
// the driver only calls them when the matching feature is enabled.
package report

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// EventStatus is the outcome of a production event.
type EventStatus uint8

// Event outcomes.
const (
	EventPassed EventStatus = iota
	EventFailed
)

func (s EventStatus) String() string {
	switch s {
	case EventPassed:
		return "passed"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("EventStatus(%d)", uint8(s))
	}
}

// A DevErrorReporter receives development errors.
type DevErrorReporter interface {
	ReportError(moduleID uint16, instanceID, apiID, errorID uint8)
}

// A ProductionErrorReporter receives production events.
type ProductionErrorReporter interface {
	ReportErrorStatus(eventID uint16, status EventStatus)
}

// A Reporter is a sink for both kinds of errors.
type Reporter interface {
	DevErrorReporter
	ProductionErrorReporter
}

// DevError is one reported development error.
type DevError struct {
	ModuleID   uint16 `json:"module_id"`
	InstanceID uint8  `json:"instance_id"`
	APIID      uint8  `json:"api_id"`
	ErrorID    uint8  `json:"error_id"`
}

// ProductionEvent is one reported production event.
type ProductionEvent struct {
	EventID uint16      `json:"event_id"`
	Status  EventStatus `json:"status"`
}

// Recorder keeps every report in memory.
type Recorder struct {
	lock       sync.Mutex
	devErrors  []DevError
	prodEvents []ProductionEvent
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ReportError records a development error.
func (r *Recorder) ReportError(moduleID uint16, instanceID, apiID, errorID uint8) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.devErrors = append(r.devErrors, DevError{
		ModuleID:   moduleID,
		InstanceID: instanceID,
		APIID:      apiID,
		ErrorID:    errorID,
	})
}

// ReportErrorStatus records a production event.
func (r *Recorder) ReportErrorStatus(eventID uint16, status EventStatus) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.prodEvents = append(r.prodEvents, ProductionEvent{
		EventID: eventID,
		Status:  status,
	})
}

// DevErrors returns a copy of the recorded development errors.
func (r *Recorder) DevErrors() []DevError {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]DevError(nil), r.devErrors...)
}

// ProductionEvents returns a copy of the recorded production events.
func (r *Recorder) ProductionEvents() []ProductionEvent {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]ProductionEvent(nil), r.prodEvents...)
}

// LastStatus returns the latest status reported for an event.
func (r *Recorder) LastStatus(eventID uint16) (EventStatus, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for i := len(r.prodEvents) - 1; i >= 0; i-- {
		if r.prodEvents[i].EventID == eventID {
			return r.prodEvents[i].Status, true
		}
	}

	return EventPassed, false
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.devErrors = nil
	r.prodEvents = nil
}

// Logger writes reports to a logr.Logger. Development errors are logged as
// errors; production events at verbosity 1, failures at verbosity 0.
type Logger struct {
	log logr.Logger
}

// NewLogger creates a Logger.
func NewLogger(log logr.Logger) *Logger {
	return &Logger{log: log.WithName("report")}
}

// ReportError logs a development error.
func (l *Logger) ReportError(moduleID uint16, instanceID, apiID, errorID uint8) {
	l.log.Info("development error",
		"module", moduleID,
		"instance", instanceID,
		"api", fmt.Sprintf("0x%02X", apiID),
		"error", fmt.Sprintf("0x%02X", errorID))
}

// ReportErrorStatus logs a production event.
func (l *Logger) ReportErrorStatus(eventID uint16, status EventStatus) {
	if status == EventFailed {
		l.log.Info("production event failed", "event", eventID)
		return
	}

	l.log.V(1).Info("production event passed", "event", eventID)
}

// Tee forwards every report to all of its reporters.
type Tee []Reporter

// ReportError forwards a development error.
func (t Tee) ReportError(moduleID uint16, instanceID, apiID, errorID uint8) {
	for _, r := range t {
		r.ReportError(moduleID, instanceID, apiID, errorID)
	}
}

// ReportErrorStatus forwards a production event.
func (t Tee) ReportErrorStatus(eventID uint16, status EventStatus) {
	for _, r := range t {
		r.ReportErrorStatus(eventID, status)
	}
}
