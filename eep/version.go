package eep

// VendorID identifies the supplier of the driver.
const VendorID uint16 = 0x00B3

// Version of the driver software.
const (
	SWMajorVersion uint8 = 1
	SWMinorVersion uint8 = 4
	SWPatchVersion uint8 = 0
)

// VersionInfo describes the driver software.
type VersionInfo struct {
	VendorID uint16 `json:"vendor_id"`
	ModuleID uint16 `json:"module_id"`
	SWMajor  uint8  `json:"sw_major"`
	SWMinor  uint8  `json:"sw_minor"`
	SWPatch  uint8  `json:"sw_patch"`
}

// VersionInfo returns the version of the driver.
func (d *Driver) VersionInfo() VersionInfo {
	return VersionInfo{
		VendorID: VendorID,
		ModuleID: ModuleID,
		SWMajor:  SWMajorVersion,
		SWMinor:  SWMinorVersion,
		SWPatch:  SWPatchVersion,
	}
}
