package model

// PortInfo is a listening TCP port joined with the process that owns it.
// Empty strings mean the value could not be determined.
type PortInfo struct {
	Port       uint16 `json:"port"`
	Inode      uint64 `json:"inode"`
	IPv6       bool   `json:"is_ipv6"`
	Host       string `json:"host"`
	PID        int    `json:"pid"`
	Process    string `json:"process,omitempty"`
	Command    string `json:"full_command,omitempty"`
	Cwd        string `json:"cwd,omitempty"`
	Service    string `json:"service,omitempty"`
	Privileged bool   `json:"is_privileged"`
	User       string `json:"user,omitempty"`
}

// PortKey identifies a record within one scan.
type PortKey struct {
	Port uint16
	PID  int
}

func (p PortInfo) Key() PortKey {
	return PortKey{Port: p.Port, PID: p.PID}
}

// IsPrivileged reports whether binding port requires elevated rights.
func IsPrivileged(port uint16) bool {
	return port < 1024
}
