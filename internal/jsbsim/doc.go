// Package jsbsim renders vehicles and case files in the JSBSim XML dialect.
//
// The package provides:
//
//   - [Writer]: vehicle and engine serializer used by the case materializer
//   - [Initialize], [Nozzle], [Output], [RunScript]: the fixed case documents
//   - [Encode]: deterministic, indented XML with a declaration header
//
// Every document is rendered from structs through encoding/xml, so rendering
// the same value twice yields identical bytes.
package jsbsim
