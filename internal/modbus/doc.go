// Package modbus provides the register description, codec, and session
// layer for Modbus TCP field devices.
//
// # Architecture
//
// The package splits into three pieces:
//
//	Descriptor / Enum / Profile   static register metadata (built at startup)
//	Decode / Encode               pure word <-> typed value conversion
//	Session                       one device's connection + typed access
//
//	┌──────────┐  raw words   ┌────────────┐  typed value  ┌──────────┐
//	│ Transport│─────────────►│   Codec    │──────────────►│  Caller  │
//	│(goburrow)│◄─────────────│ (pure fns) │◄──────────────│          │
//	└──────────┘              └────────────┘               └──────────┘
//
// # Descriptors
//
// A Descriptor is immutable metadata for one holding register: address,
// logical type, word count, word order, scale/offset, and unit. A Profile
// groups the descriptors of one device model under field names. Both are
// validated eagerly at startup; a malformed descriptor (zero scale, word
// count inconsistent with the type) is a fatal configuration error.
//
// # Values
//
// Decoded values are strings for text and enum registers (enum members
// surface as their documented labels), int64 for unscaled numerics, and
// float64 for scaled numerics. Encode inverts the scaling and always emits
// words high word first: writes are big-endian word order in this protocol
// regardless of a register's read order.
//
// # Sessions
//
// A Session brackets register access with Open/Close around goburrow's
// TCP client. Sessions are single-threaded by design; each poll cycle and
// each control write batch opens, works, and closes within one bracket.
package modbus
