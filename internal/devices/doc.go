// Package devices holds the register profiles for the supported field
// devices: the Midnite Classic charge controller and the Schneider Conext
// XW6848 inverter/charger.
//
// Profiles are reference data, not logic. Addresses, scales, and
// enumeration member names follow the vendor register maps verbatim so
// field names in telemetry match the device documentation. Profiles are
// selected by configuration key via ProfileByName and validated at startup.
package devices
