// internal/status/constants.go
package status

// Link health codes for the hardware port.
// These values are exported as metrics and MUST NOT be renumbered.

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a responsive component.
const HealthOK uint16 = 1

// HealthError represents a failing link or a component rejecting requests.
const HealthError uint16 = 2

// GenericErrorCode is reported when an error carries no code of its own.
const GenericErrorCode uint16 = 1

// SecondsInErrorMax is the saturation value of the error duration counter.
const SecondsInErrorMax uint16 = 65535
