package cmd

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/ftfc"
)

// A step is one line of a job script.
//
//	read ADDR LEN
//	write ADDR HEX
//	erase ADDR LEN
//	compare ADDR HEX
//	quick ADDR HEX [WINDOW]
//	mode slow|fast
//	brownout maintenance|quick|normal
//	init
//
// Numbers accept the 0x prefix. Everything after # is ignored.
type step struct {
	line   int
	verb   string
	addr   uint32
	length uint32
	data   []byte
	window uint16
	mode   eep.Mode
	code   uint8
}

var brownOutCodes = map[string]uint8{
	"maintenance": ftfc.BrownOutDuringMaintenance,
	"quick":       ftfc.BrownOutDuringQuickWrites,
	"normal":      ftfc.BrownOutDuringNormalWrites,
}

func parseScript(r io.Reader) ([]step, error) {
	var steps []step

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++

		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		s, err := parseStep(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		s.line = line
		steps = append(steps, s)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read script")
	}

	return steps, nil
}

func parseStep(fields []string) (step, error) {
	s := step{verb: strings.ToLower(fields[0])}
	args := fields[1:]

	var err error

	switch s.verb {
	case "read", "erase":
		if err = wantArgs(args, 2, 2); err != nil {
			return s, err
		}

		s.addr, err = parseUint32(args[0])
		if err == nil {
			s.length, err = parseUint32(args[1])
		}
	case "write", "compare", "quick":
		maxArgs := 2
		if s.verb == "quick" {
			maxArgs = 3
		}

		if err = wantArgs(args, 2, maxArgs); err != nil {
			return s, err
		}

		s.addr, err = parseUint32(args[0])
		if err == nil {
			s.data, err = hex.DecodeString(strings.TrimPrefix(args[1], "0x"))
			s.length = uint32(len(s.data))
		}

		s.window = eep.MinQuickWindow
		if err == nil && len(args) == 3 {
			var w uint64
			w, err = strconv.ParseUint(args[2], 0, 16)
			s.window = uint16(w)
		}
	case "mode":
		if err = wantArgs(args, 1, 1); err != nil {
			return s, err
		}

		switch strings.ToLower(args[0]) {
		case "slow":
			s.mode = eep.ModeSlow
		case "fast":
			s.mode = eep.ModeFast
		default:
			err = errors.Errorf("unknown mode %q", args[0])
		}
	case "brownout":
		if err = wantArgs(args, 1, 1); err != nil {
			return s, err
		}

		code, ok := brownOutCodes[strings.ToLower(args[0])]
		if !ok {
			err = errors.Errorf("unknown brown-out class %q", args[0])
		}

		s.code = code
	case "init":
		err = wantArgs(args, 0, 0)
	default:
		err = errors.Errorf("unknown command %q", fields[0])
	}

	return s, err
}

func wantArgs(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return errors.Errorf("expected %d to %d arguments, got %d",
			lo, hi, len(args))
	}

	return nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid number %q", s)
	}

	return uint32(v), nil
}
