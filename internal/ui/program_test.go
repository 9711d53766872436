package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinterWritesComponentsToWriter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKeycode("Keycode issued", "*123 456#", map[string]string{"Device": "meter-0042"})
	p.PrintSuccess("Device registered", map[string]string{"Serial": "lamp-7"})
	p.PrintWarning("Device registry not saved", map[string]string{"Error": "disk full"})
	p.PrintHeader("Device registry", "paygo-gen device list", map[string]string{"Devices": "2"})

	out := buf.String()
	for _, want := range []string{
		"Keycode issued",
		"*123 456#",
		"Device registered",
		"Device registry not saved",
		"paygo-gen device list",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("printer output missing %q", want)
		}
	}
}
