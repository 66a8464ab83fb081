package eep

// Features is the capability set a driver is built with. It does not change
// after Build.
type Features struct {
	// AsyncWrites makes write and erase jobs issue one hardware page per
	// Tick instead of blocking until the whole chunk is programmed.
	AsyncWrites bool

	// QuickWrites enables the QuickWrite operation.
	QuickWrites bool

	// CancelSupported enables the Cancel operation.
	CancelSupported bool

	// TimeoutIterations bounds every wait on the controller, counted in
	// status polls. Zero disables timeout detection.
	TimeoutIterations uint32

	// DevErrorDetect reports development errors to the reporter.
	DevErrorDetect bool

	// ProductionErrorsEnabled reports production events to the reporter.
	ProductionErrorsEnabled bool

	// LoadOnJobStart keeps the access routine relocated for the whole job.
	// Otherwise the routine is relocated around every controller access.
	LoadOnJobStart bool
}

// DefaultFeatures returns a capability set with everything enabled.
func DefaultFeatures() Features {
	return Features{
		AsyncWrites:             true,
		QuickWrites:             true,
		CancelSupported:         true,
		TimeoutIterations:       10000,
		DevErrorDetect:          true,
		ProductionErrorsEnabled: true,
		LoadOnJobStart:          true,
	}
}
