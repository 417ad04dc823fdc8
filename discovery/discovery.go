// Package discovery locates a Removinator controller among the system's
// serial ports.
//
// The controller enumerates as a USB CDC serial device. Find scans the
// detailed port list and returns the first port whose USB identity matches
// one of the known controller signatures.
package discovery

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// ErrNotFound is returned when no port matches a controller signature.
var ErrNotFound = errors.New("no Removinator controller found")

// Signature identifies a controller by USB identity. Empty fields match
// anything; a signature with every field empty matches nothing.
type Signature struct {
	// VID is the USB vendor ID in hex, e.g. "2341"
	VID string

	// PID is the USB product ID in hex, e.g. "8037"
	PID string

	// Product is matched against the USB product string, ignoring case and
	// treating '_' as a space
	Product string
}

// DefaultSignatures match the Arduino Micro the controller firmware runs on,
// in application and bootloader mode.
var DefaultSignatures = []Signature{
	{VID: "2341", PID: "8037"},
	{VID: "2341", PID: "0037"},
	{Product: "Arduino Micro"},
}

// PortLister returns the serial ports present on the system.
type PortLister func() ([]*enumerator.PortDetails, error)

// Finder scans serial ports for a controller.
type Finder struct {
	// List enumerates ports; defaults to enumerator.GetDetailedPortsList
	List PortLister

	// Signatures to match; defaults to DefaultSignatures
	Signatures []Signature
}

// Find returns the address of the first controller found with the default
// Finder.
func Find() (string, error) {
	return (&Finder{}).Find()
}

// Find returns the address of the first matching port, in name order.
func (f *Finder) Find() (string, error) {
	list := f.List
	if list == nil {
		list = enumerator.GetDetailedPortsList
	}
	signatures := f.Signatures
	if signatures == nil {
		signatures = DefaultSignatures
	}

	ports, err := list()
	if err != nil {
		return "", fmt.Errorf("enumerate serial ports: %w", err)
	}

	usb := make([]*enumerator.PortDetails, 0, len(ports))
	for _, port := range ports {
		if port != nil && port.IsUSB {
			usb = append(usb, port)
		}
	}
	sort.Slice(usb, func(i, j int) bool { return usb[i].Name < usb[j].Name })

	for _, port := range usb {
		for _, sig := range signatures {
			if sig.Matches(port) {
				return port.Name, nil
			}
		}
	}

	return "", ErrNotFound
}

// Matches reports whether port carries this signature.
func (s Signature) Matches(port *enumerator.PortDetails) bool {
	if s.VID == "" && s.PID == "" && s.Product == "" {
		return false
	}
	if s.VID != "" && !strings.EqualFold(s.VID, port.VID) {
		return false
	}
	if s.PID != "" && !strings.EqualFold(s.PID, port.PID) {
		return false
	}
	if s.Product != "" && !strings.Contains(normalizeProduct(port.Product), normalizeProduct(s.Product)) {
		return false
	}
	return true
}

func normalizeProduct(p string) string {
	return strings.ToLower(strings.ReplaceAll(p, "_", " "))
}
