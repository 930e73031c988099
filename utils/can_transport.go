package utils

import (
	"context"
	"fmt"
	"net"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

type CANWriter interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
	Close() error
}

// CANConn reads and writes on a single socket. A sender does not receive its
// own frames back, so one CANConn per bus keeps our transmissions out of RX.
type CANConn interface {
	CANReader
	CANWriter
}

// SocketCANConn shares one raw CAN socket between a transmitter and a receiver.
// The kernel default CAN_RAW_RECV_OWN_MSGS=0 suppresses the local echo.
type SocketCANConn struct {
	conn net.Conn
	tx   *socketcan.Transmitter
	recv *socketcan.Receiver
}

func DialSocketCAN(ctx context.Context, iface string) (*SocketCANConn, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &SocketCANConn{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
		recv: socketcan.NewReceiver(conn),
	}, nil
}

func (c *SocketCANConn) WriteFrame(ctx context.Context, frame can.Frame) error {
	return c.tx.TransmitFrame(ctx, frame)
}

// Close closes the CAN socket, unblocking a pending ReadFrame.
func (c *SocketCANConn) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
