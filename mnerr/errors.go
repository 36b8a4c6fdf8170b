// Package mnerr collects the sentinel error values shared by every
// layer of the M-net client: frame codec, channel driver, data-point
// codec and the client state machine.
package mnerr

import "errors"

var (
	// ErrTransport is returned when the underlying ByteChannel itself
	// fails (connection lost, write error). Not retried at the
	// protocol layer.
	ErrTransport = errors.New("mnet: transport error")

	// ErrTimeout is returned when a reply did not arrive before the
	// caller's deadline.
	ErrTimeout = errors.New("mnet: timeout waiting for reply")

	// ErrBadFraming is returned when a frame has no SOH/EOT where
	// expected, or was truncated.
	ErrBadFraming = errors.New("mnet: bad frame delimiters")

	// ErrBadCrc is returned when a frame is structurally well formed
	// but its CRC does not match.
	ErrBadCrc = errors.New("mnet: CRC mismatch")

	// ErrBadLength is returned when the LEN field disagrees with the
	// de-escaped payload length.
	ErrBadLength = errors.New("mnet: LEN field does not match payload")

	// ErrFrameTooLarge is returned by Build when the payload exceeds
	// 255 bytes.
	ErrFrameTooLarge = errors.New("mnet: payload exceeds 255 bytes")

	// ErrWrongReplyType is returned when a reply's packet type is not
	// the expected request+1 pair.
	ErrWrongReplyType = errors.New("mnet: reply type does not match request")

	// ErrUnauthenticatedOp is returned when an operation requiring a
	// prior login() is attempted from a client that has not
	// authenticated.
	ErrUnauthenticatedOp = errors.New("mnet: operation requires login")

	// ErrAuthFailed is returned when the controller rejects a login
	// attempt.
	ErrAuthFailed = errors.New("mnet: login rejected by controller")

	// ErrUnsupportedAveraging is returned when a DataID/averaging
	// combination is rejected by the controller.
	ErrUnsupportedAveraging = errors.New("mnet: averaging not supported for this data point")

	// ErrProtocol is a catch-all for any other server-side error
	// payload.
	ErrProtocol = errors.New("mnet: protocol error")

	// ErrCancelled is returned when a request's deadline or explicit
	// cancellation interrupted it.
	ErrCancelled = errors.New("mnet: cancelled")

	// ErrNotReady is returned by any operation attempted while the
	// client state machine is in the Broken state.
	ErrNotReady = errors.New("mnet: client not ready, call Reconnect")
)
