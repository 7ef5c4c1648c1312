package output

import (
	"encoding/json"
	"io"

	"github.com/pranshuparmar/lsport/pkg/model"
)

func ToJSON(ports []model.PortInfo) (string, error) {
	if ports == nil {
		ports = []model.PortInfo{}
	}
	data, err := json.MarshalIndent(ports, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func RenderJSON(w io.Writer, ports []model.PortInfo) error {
	s, err := ToJSON(ports)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s+"\n")
	return err
}
