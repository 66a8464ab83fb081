// Package config loads driver and simulator settings from .env files.
//
// Every key is optional and falls back to the defaults of the eep and ftfc
// packages. Keys are upper case and prefixed with FLEXEE_.
package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/ftfc"
	"github.com/sarchlab/flexee/routine"
)

// Keys understood by Parse.
const (
	KeyDeviceSize  = "FLEXEE_DEVICE_SIZE"
	KeyMode        = "FLEXEE_MODE"
	KeyFastRead    = "FLEXEE_FAST_READ"
	KeyFastWrite   = "FLEXEE_FAST_WRITE"
	KeySlowRead    = "FLEXEE_SLOW_READ"
	KeySlowWrite   = "FLEXEE_SLOW_WRITE"
	KeyErasedValue = "FLEXEE_ERASED_VALUE"
	KeyChecksum    = "FLEXEE_CHECKSUM"

	KeyAsyncWrites      = "FLEXEE_ASYNC_WRITES"
	KeyQuickWrites      = "FLEXEE_QUICK_WRITES"
	KeyCancel           = "FLEXEE_CANCEL"
	KeyTimeout          = "FLEXEE_TIMEOUT"
	KeyDevErrors        = "FLEXEE_DEV_ERRORS"
	KeyProductionErrors = "FLEXEE_PRODUCTION_ERRORS"
	KeyLoadOnJobStart   = "FLEXEE_LOAD_ON_JOB_START"

	KeyEEESize        = "FLEXEE_EEE_SIZE"
	KeyWriteLatency   = "FLEXEE_WRITE_LATENCY"
	KeyQuickLatency   = "FLEXEE_QUICK_LATENCY"
	KeyCommandLatency = "FLEXEE_COMMAND_LATENCY"
	KeyAutoEEE        = "FLEXEE_AUTO_EEE"

	KeyEventErase         = "FLEXEE_EVENT_ERASE"
	KeyEventWrite         = "FLEXEE_EVENT_WRITE"
	KeyEventRead          = "FLEXEE_EVENT_READ"
	KeyEventCompare       = "FLEXEE_EVENT_COMPARE"
	KeyEventBOMaintenance = "FLEXEE_EVENT_BROWNOUT_MAINTENANCE"
	KeyEventBOQuick       = "FLEXEE_EVENT_BROWNOUT_QUICK"
	KeyEventBONormal      = "FLEXEE_EVENT_BROWNOUT_NORMAL"
)

// Settings is everything needed to build a simulated driver.
type Settings struct {
	Config   *eep.Config
	Features eep.Features
	Device   ftfc.Spec
}

// Defaults returns the settings used when no key is given.
func Defaults() Settings {
	return Settings{
		Config:   eep.DefaultConfig(),
		Features: eep.DefaultFeatures(),
		Device:   ftfc.Defaults(),
	}
}

// Load reads the given .env files, later files winning, and parses them.
func Load(filenames ...string) (Settings, error) {
	env, err := godotenv.Read(filenames...)
	if err != nil {
		return Settings{}, errors.Wrap(err, "cannot read settings")
	}

	return Parse(env)
}

// Parse builds settings from key-value pairs. The configuration is sealed
// unless a checksum is given, in which case the given value is kept so that
// Init can verify it.
func Parse(env map[string]string) (Settings, error) {
	s := Defaults()
	p := parser{env: env}

	cfg := s.Config
	cfg.DeviceSize = p.uint32(KeyDeviceSize, cfg.DeviceSize)
	cfg.DefaultMode = p.mode(KeyMode, cfg.DefaultMode)
	cfg.Limits.FastRead = p.uint32(KeyFastRead, cfg.Limits.FastRead)
	cfg.Limits.FastWrite = p.uint32(KeyFastWrite, cfg.Limits.FastWrite)
	cfg.Limits.SlowRead = p.uint32(KeySlowRead, cfg.Limits.SlowRead)
	cfg.Limits.SlowWrite = p.uint32(KeySlowWrite, cfg.Limits.SlowWrite)
	cfg.ErasedValue = p.uint8(KeyErasedValue, cfg.ErasedValue)
	cfg.EraseRoutine = routine.NewEraseRoutine(cfg.ErasedValue)

	ids := &cfg.ProductionErrors
	ids.Erase = p.uint16(KeyEventErase, ids.Erase)
	ids.Write = p.uint16(KeyEventWrite, ids.Write)
	ids.Read = p.uint16(KeyEventRead, ids.Read)
	ids.Compare = p.uint16(KeyEventCompare, ids.Compare)
	ids.BrownOutMaintenance = p.uint16(KeyEventBOMaintenance, ids.BrownOutMaintenance)
	ids.BrownOutQuickWrites = p.uint16(KeyEventBOQuick, ids.BrownOutQuickWrites)
	ids.BrownOutNormalWrites = p.uint16(KeyEventBONormal, ids.BrownOutNormalWrites)

	cfg.Seal()
	cfg.Checksum = p.uint16(KeyChecksum, cfg.Checksum)

	f := &s.Features
	f.AsyncWrites = p.bool(KeyAsyncWrites, f.AsyncWrites)
	f.QuickWrites = p.bool(KeyQuickWrites, f.QuickWrites)
	f.CancelSupported = p.bool(KeyCancel, f.CancelSupported)
	f.TimeoutIterations = p.uint32(KeyTimeout, f.TimeoutIterations)
	f.DevErrorDetect = p.bool(KeyDevErrors, f.DevErrorDetect)
	f.ProductionErrorsEnabled = p.bool(KeyProductionErrors, f.ProductionErrorsEnabled)
	f.LoadOnJobStart = p.bool(KeyLoadOnJobStart, f.LoadOnJobStart)

	d := &s.Device
	d.EEESize = p.uint32(KeyEEESize, d.EEESize)
	d.WriteLatency = p.int(KeyWriteLatency, d.WriteLatency)
	d.QuickLatency = p.int(KeyQuickLatency, d.QuickLatency)
	d.CommandLatency = p.int(KeyCommandLatency, d.CommandLatency)
	d.AutoEEE = p.bool(KeyAutoEEE, d.AutoEEE)
	d.ErasedValue = cfg.ErasedValue

	if p.err != nil {
		return Settings{}, p.err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Validate checks that the device can be built and that the logical address
// space fits the emulated EEPROM partition.
func (s Settings) Validate() error {
	if err := s.Device.Validate(); err != nil {
		return errors.Wrap(err, "invalid device settings")
	}

	if s.Config != nil && s.Config.DeviceSize > s.Device.EEESize {
		return errors.Errorf("%s (%d) exceeds %s (%d)",
			KeyDeviceSize, s.Config.DeviceSize, KeyEEESize, s.Device.EEESize)
	}

	return nil
}

// Env renders settings as key-value pairs that Parse reads back.
func Env(s Settings) map[string]string {
	cfg := s.Config
	f := s.Features
	d := s.Device
	ids := cfg.ProductionErrors

	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	b := strconv.FormatBool

	return map[string]string{
		KeyDeviceSize:  u(uint64(cfg.DeviceSize)),
		KeyMode:        cfg.DefaultMode.String(),
		KeyFastRead:    u(uint64(cfg.Limits.FastRead)),
		KeyFastWrite:   u(uint64(cfg.Limits.FastWrite)),
		KeySlowRead:    u(uint64(cfg.Limits.SlowRead)),
		KeySlowWrite:   u(uint64(cfg.Limits.SlowWrite)),
		KeyErasedValue: "0x" + strings.ToUpper(strconv.FormatUint(uint64(cfg.ErasedValue), 16)),
		KeyChecksum:    "0x" + strings.ToUpper(strconv.FormatUint(uint64(cfg.Checksum), 16)),

		KeyAsyncWrites:      b(f.AsyncWrites),
		KeyQuickWrites:      b(f.QuickWrites),
		KeyCancel:           b(f.CancelSupported),
		KeyTimeout:          u(uint64(f.TimeoutIterations)),
		KeyDevErrors:        b(f.DevErrorDetect),
		KeyProductionErrors: b(f.ProductionErrorsEnabled),
		KeyLoadOnJobStart:   b(f.LoadOnJobStart),

		KeyEEESize:        u(uint64(d.EEESize)),
		KeyWriteLatency:   strconv.Itoa(d.WriteLatency),
		KeyQuickLatency:   strconv.Itoa(d.QuickLatency),
		KeyCommandLatency: strconv.Itoa(d.CommandLatency),
		KeyAutoEEE:        b(d.AutoEEE),

		KeyEventErase:         u(uint64(ids.Erase)),
		KeyEventWrite:         u(uint64(ids.Write)),
		KeyEventRead:          u(uint64(ids.Read)),
		KeyEventCompare:       u(uint64(ids.Compare)),
		KeyEventBOMaintenance: u(uint64(ids.BrownOutMaintenance)),
		KeyEventBOQuick:       u(uint64(ids.BrownOutQuickWrites)),
		KeyEventBONormal:      u(uint64(ids.BrownOutNormalWrites)),
	}
}

// Write stores settings in a .env file.
func Write(s Settings, filename string) error {
	return errors.Wrapf(godotenv.Write(Env(s), filename),
		"cannot write %s", filename)
}

// Keys returns every key understood by Parse, sorted.
func Keys() []string {
	env := Env(Defaults())

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// parser keeps the first error so that the fields can be parsed in a row.
type parser struct {
	env map[string]string
	err error
}

func (p *parser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}

	v, ok := p.env[key]
	v = strings.TrimSpace(v)

	return v, ok && v != ""
}

func (p *parser) unsigned(key string, bits int) (uint64, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseUint(v, 0, bits)
	if err != nil {
		p.err = errors.Wrapf(err, "%s", key)
		return 0, false
	}

	return n, true
}

func (p *parser) uint32(key string, def uint32) uint32 {
	if n, ok := p.unsigned(key, 32); ok {
		return uint32(n)
	}

	return def
}

func (p *parser) uint16(key string, def uint16) uint16 {
	if n, ok := p.unsigned(key, 16); ok {
		return uint16(n)
	}

	return def
}

func (p *parser) uint8(key string, def uint8) uint8 {
	if n, ok := p.unsigned(key, 8); ok {
		return uint8(n)
	}

	return def
}

func (p *parser) int(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = errors.Wrapf(err, "%s", key)
		return def
	}

	return n
}

func (p *parser) bool(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = errors.Wrapf(err, "%s", key)
		return def
	}

	return b
}

func (p *parser) mode(key string, def eep.Mode) eep.Mode {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}

	switch strings.ToLower(v) {
	case "slow":
		return eep.ModeSlow
	case "fast":
		return eep.ModeFast
	default:
		p.err = errors.Errorf("%s: unknown mode %q", key, v)
		return def
	}
}
