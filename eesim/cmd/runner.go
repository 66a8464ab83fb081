package cmd

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/simulation"
)

// outcome is what a step did.
type outcome struct {
	err  error
	job  eep.JobInfo
	data []byte
	ran  bool
}

func execStep(s *simulation.Simulation, st step) outcome {
	var (
		o   outcome
		buf []byte
	)

	d := s.GetDriver()

	switch st.verb {
	case "read":
		buf = make([]byte, st.length)
		o.err = d.Read(st.addr, buf, st.length)
	case "write":
		o.err = d.Write(st.addr, st.data, st.length)
	case "erase":
		o.err = d.Erase(st.addr, st.length)
	case "compare":
		o.err = d.Compare(st.addr, st.data, st.length)
	case "quick":
		o.err = d.QuickWrite(st.addr, st.data, st.length, st.window)
	case "mode":
		o.err = d.SetMode(st.mode)
		return o
	case "brownout":
		o.err = s.PowerCycle(st.code)
		return o
	case "init":
		o.err = s.InitDriver()
		return o
	default:
		o.err = errors.Errorf("unknown command %q", st.verb)
		return o
	}

	if o.err != nil {
		return o
	}

	if err := s.Run(); err != nil {
		o.err = err
		return o
	}

	o.ran = true
	o.job = d.LastJob()

	if st.verb == "read" && o.job.Result == eep.JobOK {
		o.data = buf
	}

	return o
}

// runSteps initializes the driver and runs the steps in order. A step that
// fails does not stop the script; a driver that cannot be initialized does.
func runSteps(w io.Writer, s *simulation.Simulation, steps []step) error {
	if err := s.InitDriver(); err != nil {
		return errors.Wrap(err, "cannot initialize the driver")
	}

	for _, st := range steps {
		printOutcome(w, st, execStep(s, st))
	}

	printSummary(w, s)

	return nil
}

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	failColor = color.New(color.FgRed).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
)

func resultText(res eep.JobResult) string {
	switch res {
	case eep.JobOK:
		return okColor(res.String())
	case eep.JobFailed:
		return failColor(res.String())
	default:
		return warnColor(res.String())
	}
}

func printOutcome(w io.Writer, st step, o outcome) {
	fmt.Fprintf(w, "%4d %-8s ", st.line, st.verb)

	if o.err != nil {
		fmt.Fprintf(w, "%s %v\n", failColor("error"), o.err)
		return
	}

	if !o.ran {
		fmt.Fprintln(w, okColor("done"))
		return
	}

	fmt.Fprintf(w, "0x%04x +%-5d %s", o.job.Address, o.job.Done,
		resultText(o.job.Result))

	switch {
	case o.data != nil:
		fmt.Fprintf(w, " %s", hex.EncodeToString(o.data))
	case o.job.Mismatch >= 0:
		fmt.Fprintf(w, " mismatch at +%d", o.job.Mismatch)
	}

	fmt.Fprintln(w)
}

func printSummary(w io.Writer, s *simulation.Simulation) {
	total := s.GetTotalTracer()
	stats := s.GetDevice().Stats()

	fmt.Fprintf(w, "jobs %d, bytes %d, transfers %d, "+
		"simulated time %.6fs, busy %.6fs\n",
		total.Count(), total.Bytes(),
		s.GetStepTracer().GetStepCount("transfer"),
		float64(s.GetEngine().CurrentTime()),
		float64(s.GetBusyTracer().BusyTime()))
	fmt.Fprintf(w, "controller: %d writes, %d quick writes, %d commands, "+
		"%d failed accesses, %d driver cycles\n",
		stats.EEPROMWrites, stats.QuickWrites, stats.Commands,
		stats.FailedAccesses,
		s.GetTicker().Freq.Cycle(s.GetEngine().CurrentTime()))
}
