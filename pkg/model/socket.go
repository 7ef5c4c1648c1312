package model

import "fmt"

// TCPState is the numeric connection state the kernel reports in /proc/net/tcp
// (see include/net/tcp_states.h).
type TCPState uint8

const (
	StateEstablished TCPState = iota + 1
	StateSynSent
	StateSynRecv
	StateFinWait1
	StateFinWait2
	StateTimeWait
	StateClose
	StateCloseWait
	StateLastAck
	StateListen
	StateClosing
)

var stateNames = map[TCPState]string{
	StateEstablished: "ESTABLISHED",
	StateSynSent:     "SYN_SENT",
	StateSynRecv:     "SYN_RECV",
	StateFinWait1:    "FIN_WAIT1",
	StateFinWait2:    "FIN_WAIT2",
	StateTimeWait:    "TIME_WAIT",
	StateClose:       "CLOSE",
	StateCloseWait:   "CLOSE_WAIT",
	StateLastAck:     "LAST_ACK",
	StateListen:      "LISTEN",
	StateClosing:     "CLOSING",
}

func (s TCPState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN (%02X)", uint8(s))
}

// Socket is one row of a kernel TCP socket table.
type Socket struct {
	Port    uint16   `json:"port"`
	IPv6    bool     `json:"ipv6"`
	Address string   `json:"address"` // 0.0.0.0, 127.0.0.1, ::
	State   TCPState `json:"state"`
	Inode   uint64   `json:"inode"`
}

// Listening reports whether the socket accepts incoming connections.
func (s Socket) Listening() bool {
	return s.State == StateListen
}
