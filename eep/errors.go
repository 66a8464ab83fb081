package eep

import "fmt"

// ModuleID and InstanceID identify the driver towards the development error
// reporter.
const (
	ModuleID   uint16 = 90
	InstanceID uint8  = 0
)

// ServiceID identifies a driver operation.
type ServiceID uint8

// Service IDs.
const (
	ServiceInit           ServiceID = 0x00
	ServiceSetMode        ServiceID = 0x01
	ServiceRead           ServiceID = 0x02
	ServiceWrite          ServiceID = 0x03
	ServiceErase          ServiceID = 0x04
	ServiceCompare        ServiceID = 0x05
	ServiceCancel         ServiceID = 0x06
	ServiceGetStatus      ServiceID = 0x07
	ServiceGetJobResult   ServiceID = 0x08
	ServiceMainFunction   ServiceID = 0x09
	ServiceGetVersionInfo ServiceID = 0x0A
	ServiceQuickWrite     ServiceID = 0x0B

	serviceAny ServiceID = 0xFF
)

var serviceNames = map[ServiceID]string{
	ServiceInit:           "Init",
	ServiceSetMode:        "SetMode",
	ServiceRead:           "Read",
	ServiceWrite:          "Write",
	ServiceErase:          "Erase",
	ServiceCompare:        "Compare",
	ServiceCancel:         "Cancel",
	ServiceGetStatus:      "GetStatus",
	ServiceGetJobResult:   "GetJobResult",
	ServiceMainFunction:   "MainFunction",
	ServiceGetVersionInfo: "GetVersionInfo",
	ServiceQuickWrite:     "QuickWrite",
}

func (s ServiceID) String() string {
	if name, ok := serviceNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Service(0x%02X)", uint8(s))
}

// ErrorCode is a development error code.
type ErrorCode uint8

// Development error codes.
const (
	CodeInitFailed        ErrorCode = 0x10
	CodeParamAddress      ErrorCode = 0x11
	CodeParamData         ErrorCode = 0x12
	CodeParamLength       ErrorCode = 0x13
	CodeParamConfig       ErrorCode = 0x14
	CodeUninit            ErrorCode = 0x20
	CodeBusy              ErrorCode = 0x21
	CodeTimeout           ErrorCode = 0x22
	CodeParamPointer      ErrorCode = 0x23
	CodeQuickWritesActive ErrorCode = 0x24
	CodeNotSupported      ErrorCode = 0x25
)

var codeNames = map[ErrorCode]string{
	CodeInitFailed:        "initialization failed",
	CodeParamAddress:      "invalid address",
	CodeParamData:         "invalid data",
	CodeParamLength:       "invalid length",
	CodeParamConfig:       "invalid configuration",
	CodeUninit:            "driver not initialized",
	CodeBusy:              "driver busy",
	CodeTimeout:           "hardware timeout",
	CodeParamPointer:      "missing pointer",
	CodeQuickWritesActive: "quick writes active",
	CodeNotSupported:      "operation not supported",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("ErrorCode(0x%02X)", uint8(c))
}

// DevError is a development error returned by a driver operation.
type DevError struct {
	Service ServiceID
	Code    ErrorCode
}

func (e *DevError) Error() string {
	if e.Service == serviceAny {
		return "eep: " + e.Code.String()
	}

	return fmt.Sprintf("eep: %s: %s", e.Service, e.Code)
}

// Is matches another DevError with the same code. A target without a
// service matches any service.
func (e *DevError) Is(target error) bool {
	t, ok := target.(*DevError)
	if !ok {
		return false
	}

	return t.Code == e.Code && (t.Service == serviceAny || t.Service == e.Service)
}

// Sentinels to be used with errors.Is.
var (
	ErrInitFailed        = &DevError{Service: serviceAny, Code: CodeInitFailed}
	ErrParamAddress      = &DevError{Service: serviceAny, Code: CodeParamAddress}
	ErrParamData         = &DevError{Service: serviceAny, Code: CodeParamData}
	ErrParamLength       = &DevError{Service: serviceAny, Code: CodeParamLength}
	ErrParamConfig       = &DevError{Service: serviceAny, Code: CodeParamConfig}
	ErrUninit            = &DevError{Service: serviceAny, Code: CodeUninit}
	ErrBusy              = &DevError{Service: serviceAny, Code: CodeBusy}
	ErrTimeout           = &DevError{Service: serviceAny, Code: CodeTimeout}
	ErrParamPointer      = &DevError{Service: serviceAny, Code: CodeParamPointer}
	ErrQuickWritesActive = &DevError{Service: serviceAny, Code: CodeQuickWritesActive}
	ErrNotSupported      = &DevError{Service: serviceAny, Code: CodeNotSupported}
)
