package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// An Engine keeps the simulation running. It is what the monitor drives.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes events until none is left or a handler fails.
	Run() error

	// Pause stops the engine before the next event until Continue is called.
	Pause()

	// Continue resumes a paused engine.
	Continue()
}
