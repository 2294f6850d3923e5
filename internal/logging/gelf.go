package logging

import (
	"fmt"
	"io"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGelfWriter opens a UDP GELF writer to a Graylog input at addr.
// Every Write becomes one GELF message.
func NewGelfWriter(addr, facility string) (io.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create GELF writer: %w", err)
	}
	w.Facility = facility
	return w, nil
}
