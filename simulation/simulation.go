// Package simulation assembles a driver, the simulated controller it runs
// on, and the services around them.
package simulation

import (
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/flexee/config"
	"github.com/sarchlab/flexee/datarecording"
	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/ftfc"
	"github.com/sarchlab/flexee/monitoring"
	"github.com/sarchlab/flexee/sim"
	"github.com/sarchlab/flexee/tracing"
)

// A Simulation is one driver on one simulated controller, ticked by a serial
// engine.
type Simulation struct {
	id       string
	settings config.Settings
	log      logr.Logger

	engine   *sim.SerialEngine
	ticking  *sim.TickingComponent
	device   *ftfc.Device
	driver   *eep.Driver
	registry *prometheus.Registry

	totalTracer  *tracing.TotalTimeTracer
	busyTracer   *tracing.BusyTimeTracer
	stepTracer   *tracing.StepCountTracer
	outputPath   string
	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	visTracer    *tracing.DBTracer
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Settings returns the settings the simulation was built with.
func (s *Simulation) Settings() config.Settings {
	return s.settings
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() *sim.SerialEngine {
	return s.engine
}

// GetTicker returns the component that ticks the driver.
func (s *Simulation) GetTicker() *sim.TickingComponent {
	return s.ticking
}

// GetDevice returns the simulated controller.
func (s *Simulation) GetDevice() *ftfc.Device {
	return s.device
}

// GetDriver returns the driver.
func (s *Simulation) GetDriver() *eep.Driver {
	return s.driver
}

// GetRegistry returns the registry of the driver metrics.
func (s *Simulation) GetRegistry() *prometheus.Registry {
	return s.registry
}

// GetTotalTracer returns the tracer that sums up every job.
func (s *Simulation) GetTotalTracer() *tracing.TotalTimeTracer {
	return s.totalTracer
}

// GetBusyTracer returns the tracer that measures how long the driver has a
// job in flight.
func (s *Simulation) GetBusyTracer() *tracing.BusyTimeTracer {
	return s.busyTracer
}

// GetStepTracer returns the tracer that counts the transfers of the jobs.
func (s *Simulation) GetStepTracer() *tracing.StepCountTracer {
	return s.stepTracer
}

// GetDataRecorder returns the data recorder used in the simulation, or nil
// if jobs are not recorded.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// OutputPath returns the path of the recording file, or "" if jobs are not
// recorded.
func (s *Simulation) OutputPath() string {
	if s.outputPath == "" {
		return ""
	}

	return s.outputPath + ".sqlite3"
}

// InitDriver initializes the driver with the configuration set.
func (s *Simulation) InitDriver() error {
	return s.driver.Init(s.settings.Config)
}

// Run runs the engine until the driver has nothing left to do.
func (s *Simulation) Run() error {
	return s.engine.Run()
}

// PowerCycle cuts the supply while the controller does the given brown-out
// activity, powers it up again and initializes the driver.
func (s *Simulation) PowerCycle(brownOut uint8) error {
	s.device.BrownOut(brownOut)
	s.device.Reset()

	return s.InitDriver()
}

// NewMonitor creates a monitor that serves the engine, the driver, its
// metrics and, if jobs are recorded, the job history.
func (s *Simulation) NewMonitor() (*monitoring.Monitor, error) {
	m := monitoring.NewMonitor().WithLogger(s.log)

	m.RegisterEngine(s.engine)
	m.RegisterDriver(s.driver, s.device, s.ticking)
	m.RegisterGatherer(s.registry)

	if s.dataRecorder != nil && s.outputPath != "" {
		s.dataRecorder.Flush()

		reader, err := datarecording.NewReader(s.OutputPath())
		if err != nil {
			return nil, err
		}

		m.RegisterJobReader(reader)
	}

	return m, nil
}

// Terminate writes out the recorded jobs and the execution information.
// Later calls do nothing.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	s.visTracer.Terminate()
	s.execRecorder.End()
	err := s.dataRecorder.Close()
	s.dataRecorder = nil

	return err
}
