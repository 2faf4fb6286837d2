// Package linkprobe performs a stream-protocol handshake against the radio
// TCP interface.
//
// A probe opens one connection, writes the wake-up preamble and expects the
// reply to begin with the same two-byte sync marker. The radio firmware
// serves a single TCP client at a time, so a refused connection is read as
// "the BBS already holds the link" and reported as success.
//
// Probe results are diagnostic. Callers decide whether a failed probe is
// fatal; the health aggregator treats it as a soft stage.
package linkprobe
