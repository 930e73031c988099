package utils

import (
	"context"
	"io"

	"go.einride.tech/can"
)

// CANReader defines the interface for reading CAN frames
type CANReader interface {
	ReadFrame(ctx context.Context) (can.Frame, error)
	Close() error
}

// ReadFrame blocks until a data frame arrives. Error frames are skipped.
// The call is only interrupted by Close; ctx is checked between frames.
func (c *SocketCANConn) ReadFrame(ctx context.Context) (can.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return can.Frame{}, err
		}
		if !c.recv.Receive() {
			if err := c.recv.Err(); err != nil {
				return can.Frame{}, err
			}
			return can.Frame{}, io.EOF
		}
		if c.recv.HasErrorFrame() {
			continue
		}
		return c.recv.Frame(), nil
	}
}
