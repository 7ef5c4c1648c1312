//go:build linux

package proc

import (
	"fmt"
	"strconv"

	"github.com/pranshuparmar/lsport/pkg/model"
)

// parseState decodes the hex "st" column of /proc/net/tcp. Values outside
// include/net/tcp_states.h are kept and render as UNKNOWN.
func parseState(stateHex string) (model.TCPState, error) {
	v, err := strconv.ParseUint(stateHex, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid state %q", stateHex)
	}
	return model.TCPState(v), nil
}
