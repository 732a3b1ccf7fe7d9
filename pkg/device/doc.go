// Package device defines the contract between the alert pipeline and an
// industrial device reader (OPC UA, Modbus, or any other tag-based source).
//
// The pipeline never talks to a wire protocol directly. It depends on the
// Reader interface and receives plain Sample values; protocol drivers live
// outside this module and implement Reader.
//
// # Quality status
//
// Every sample carries a StatusGood flag taken from the underlying protocol
// quality code. Samples with a bad status are carried through for logging
// purposes but must never be converted into alerts.
//
// # Usage
//
//	type opcReader struct{ /* driver state */ }
//
//	func (r *opcReader) Connect(ctx context.Context) error { ... }
//	func (r *opcReader) Read(ctx context.Context, tags []string) ([]device.Sample, error) { ... }
//	func (r *opcReader) Close() error { ... }
package device
