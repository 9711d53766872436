package tui

import (
	"github.com/oduya/paygo/internal/message"
)

// keySource says which key a command authenticates against
type keySource int

const (
	keyDevice  keySource = iota // operator-supplied device key
	keyFactory                  // well-known all-zeros factory key
	keyTest                     // well-known all-ones test key
)

// fieldPrompt describes one numeric field the operator fills in
type fieldPrompt struct {
	Label       string
	Placeholder string
	Min         uint64
	Max         uint64
}

// wizardCommand is one entry on the command screen. Build turns the
// operator's field values into an encodable message; vals arrives in the
// same order as Fields.
type wizardCommand struct {
	Name    string
	Family  string // section heading on the command screen
	Key     keySource
	NeedsID bool   // consumes a registry message id
	Warning string // shown on the fields screen for destructive commands
	Fields  []fieldPrompt
	Build   func(id uint32, vals []uint64) (message.Message, error)
}

// commandCatalog lists every operation the wizard can issue, grouped by the
// family headings the command screen renders.
var commandCatalog = []wizardCommand{
	{
		Name:    "Add Credit",
		Family:  "Full keypad",
		Key:     keyDevice,
		NeedsID: true,
		Fields:  []fieldPrompt{{Label: "Hours of credit", Placeholder: "168", Min: 0, Max: 99999}},
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.FullAddCredit(id, uint32(vals[0])), nil
		},
	},
	{
		Name:    "Set Credit",
		Family:  "Full keypad",
		Key:     keyDevice,
		NeedsID: true,
		Fields:  []fieldPrompt{{Label: "Hours of credit", Placeholder: "720", Min: 0, Max: 99999}},
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.FullSetCredit(id, uint32(vals[0])), nil
		},
	},
	{
		Name:    "Unlock",
		Family:  "Full keypad",
		Key:     keyDevice,
		NeedsID: true,
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.FullUnlock(id), nil
		},
	},
	{
		Name:    "Wipe State",
		Family:  "Full keypad",
		Key:     keyDevice,
		NeedsID: true,
		Warning: "Wiping device state is irreversible. Wiping message ids lets old keycodes be replayed.",
		Fields:  []fieldPrompt{{Label: "Wipe target (0=flags-0, 1=flags-1, 2=all ids, 3=restricted flag)", Placeholder: "2", Min: 0, Max: 3}},
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.FullWipeState(id, message.WipeFlags(vals[0])), nil
		},
	},

	{
		Name:    "Add Credit",
		Family:  "Small keypad",
		Key:     keyDevice,
		NeedsID: true,
		Fields:  []fieldPrompt{{Label: "Days of credit", Placeholder: "30", Min: 1, Max: 405}},
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallAddCredit(id, uint32(vals[0]))
		},
	},
	{
		Name:    "Set Credit",
		Family:  "Small keypad",
		Key:     keyDevice,
		NeedsID: true,
		Fields:  []fieldPrompt{{Label: "Days of credit", Placeholder: "90", Min: 1, Max: 960}},
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallSetCredit(id, uint32(vals[0]))
		},
	},
	{
		Name:    "Update Credit",
		Family:  "Small keypad",
		Key:     keyDevice,
		NeedsID: true,
		Fields:  []fieldPrompt{{Label: "Days of credit", Placeholder: "90", Min: 1, Max: 960}},
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallUpdateCredit(id, uint32(vals[0]))
		},
	},
	{
		Name:    "Unlock",
		Family:  "Small keypad",
		Key:     keyDevice,
		NeedsID: true,
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallUnlock(id), nil
		},
	},
	{
		Name:    "Lock",
		Family:  "Small keypad",
		Key:     keyDevice,
		NeedsID: true,
		Warning: "Locking zeroes the device's remaining credit.",
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallLock(id), nil
		},
	},
	{
		Name:    "Wipe Restricted Flag",
		Family:  "Small keypad",
		Key:     keyDevice,
		NeedsID: true,
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallWipeRestrictedFlag(id), nil
		},
	},

	{
		Name:   "Allow Test Mode",
		Family: "Factory",
		Key:    keyFactory,
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.FactoryAllowTest(), nil
		},
	},
	{
		Name:   "OQC Test",
		Family: "Factory",
		Key:    keyFactory,
		Fields: []fieldPrompt{{Label: "Test duration (minutes)", Placeholder: "60", Min: 1, Max: 99}},
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.FactoryOQCTest(uint32(vals[0])), nil
		},
	},
	{
		Name:   "Display Device ID",
		Family: "Factory",
		Key:    keyFactory,
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.FactoryDisplayID(), nil
		},
	},
	{
		Name:   "Short Test (small keypad)",
		Family: "Factory",
		Key:    keyTest,
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallTest(message.TestShort), nil
		},
	},
	{
		Name:   "OQC Test (small keypad)",
		Family: "Factory",
		Key:    keyTest,
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallTest(message.TestOQC), nil
		},
	},

	{
		Name:    "Wipe Flags (small keypad)",
		Family:  "Maintenance",
		Key:     keyDevice,
		Warning: "Maintenance wipes are irreversible.",
		Fields:  []fieldPrompt{{Label: "Wipe target (0=flags-0, 1=flags-1, 2=all ids)", Placeholder: "0", Min: 0, Max: 2}},
		Build: func(id uint32, vals []uint64) (message.Message, error) {
			return message.SmallMaintenance(message.MaintenanceType(vals[0])), nil
		},
	},
}
