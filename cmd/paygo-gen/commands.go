package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oduya/paygo/internal/config"
	"github.com/oduya/paygo/internal/message"
	"github.com/oduya/paygo/internal/ui"
)

// Shared command flags
var (
	serial    string
	msgID     int64
	keyFile   string
	retries   int
	assumeYes bool
)

// cliOut is where result boxes are written; nil means stdout. Tests point it
// at a buffer.
var cliOut io.Writer

func init() {
	rootCmd.PersistentFlags().StringVar(&serial, "serial", "", "Device serial in the local registry (tracks message ids)")
	rootCmd.PersistentFlags().Int64Var(&msgID, "id", -1, "Explicit message id (overrides registry tracking)")
	rootCmd.PersistentFlags().StringVar(&keyFile, "key-file", "", "Path to the device key file (16 raw bytes or 32 hex chars)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "Collision retry budget (0 = registry preference)")
	rootCmd.PersistentFlags().BoolVar(&assumeYes, "yes", false, "Skip confirmation prompts for destructive operations")

	rootCmd.AddCommand(fullCmd)
	rootCmd.AddCommand(smallCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(deviceCmd)
}

// loadRegistry loads the device registry, tolerating a missing config dir
func loadRegistry() (*config.Registry, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading device registry: %w", err)
	}
	return registry, nil
}

// resolveID picks the message id for an id-bearing command: an explicit --id
// wins, otherwise the registry's next id for --serial.
func resolveID(registry *config.Registry) (uint32, error) {
	if msgID >= 0 {
		return uint32(msgID), nil
	}
	if serial == "" {
		return 0, fmt.Errorf("provide --serial (registry-tracked ids) or --id (explicit)")
	}
	return registry.EnsureDevice(serial).NextID, nil
}

// resolveKey obtains the device secret key: --key-file first, then the
// registry's key file for --serial, then a hidden terminal prompt. The
// caller must zero the returned slice after use.
func resolveKey(registry *config.Registry) ([]byte, error) {
	path := keyFile
	if path == "" && serial != "" {
		if dev := registry.GetDevice(serial); dev != nil {
			path = dev.KeyFile
		}
	}
	if path != "" {
		return config.ReadKeyFile(path)
	}

	fmt.Fprint(os.Stderr, "Device key (32 hex chars, input hidden): ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}
	defer func() {
		for i := range raw {
			raw[i] = 0
		}
	}()

	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) != 2*config.KeyLen {
		return nil, fmt.Errorf("key must be %d hex characters", 2*config.KeyLen)
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("key is not valid hex")
	}
	return decoded, nil
}

// retryBudget resolves the collision retry bound: flag first, then the
// registry preference.
func retryBudget(registry *config.Registry) int {
	if retries > 0 {
		return retries
	}
	return registry.CollisionRetries()
}

// issueAndPrint encodes the message, records the consumed id for registry
// devices, and prints the token. zeroKey says whether key is operator
// material that must be wiped afterwards.
func issueAndPrint(registry *config.Registry, msg message.Message, key []byte, zeroKey, usesID bool, details map[string]string) error {
	if zeroKey {
		defer func() {
			for i := range key {
				key[i] = 0
			}
		}()
	}

	token, usedID, err := message.EncodeWithRetry(msg, key, retryBudget(registry))
	if err != nil {
		ui.NewPrinter(cliOut).PrintError("Keycode not issued", err, nil)
		return err
	}

	if usesID && msgID < 0 && serial != "" {
		registry.RecordIssued(serial, usedID)
		if err := registry.Save(); err != nil {
			ui.NewPrinter(os.Stderr).PrintWarning("Device registry not saved", map[string]string{
				"Device": serial,
				"Error":  err.Error(),
			})
		}
	}

	if details == nil {
		details = map[string]string{}
	}
	details["Type"] = msg.Type.String()
	if usesID {
		details["Message id"] = fmt.Sprintf("%d", usedID)
	}
	if serial != "" {
		details["Device"] = serial
	}

	ui.NewPrinter(cliOut).PrintKeycode("Keycode issued", token, details)
	return nil
}

// issueWithDeviceKey runs the common flow for commands that authenticate
// against the operator-supplied device key.
func issueWithDeviceKey(build func(id uint32) (message.Message, error), details map[string]string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	id, err := resolveID(registry)
	if err != nil {
		return err
	}
	msg, err := build(id)
	if err != nil {
		return err
	}
	key, err := resolveKey(registry)
	if err != nil {
		return err
	}
	return issueAndPrint(registry, msg, key, true, true, details)
}

// --- full family ---

var (
	fullHours  uint32
	wipeTarget uint8
	oqcMinutes uint32
)

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Issue full-family keycodes (15-key decimal keypads)",
	Long: `Issue keycodes for full-family devices.

Full keycodes are decimal digits framed as *DDD DDD ...# and carry a 20-bit
truncated digest. Credit is denominated in hours.`,
}

func init() {
	fullAddCreditCmd.Flags().Uint32Var(&fullHours, "hours", 0, "Hours of credit to add (0-99999)")
	fullSetCreditCmd.Flags().Uint32Var(&fullHours, "hours", 0, "Hours of credit to set (0-99999)")
	fullWipeStateCmd.Flags().Uint8Var(&wipeTarget, "target", 2, "Wipe target: 0=flags-0, 1=flags-1, 2=all ids, 3=restricted flag")
	fullFactoryOQCCmd.Flags().Uint32Var(&oqcMinutes, "minutes", 60, "Test duration in minutes (1-99)")

	fullCmd.AddCommand(fullAddCreditCmd)
	fullCmd.AddCommand(fullSetCreditCmd)
	fullCmd.AddCommand(fullUnlockCmd)
	fullCmd.AddCommand(fullWipeStateCmd)
	fullCmd.AddCommand(fullFactoryAllowTestCmd)
	fullCmd.AddCommand(fullFactoryOQCCmd)
	fullCmd.AddCommand(fullFactoryDisplayIDCmd)
}

var fullAddCreditCmd = &cobra.Command{
	Use:   "add-credit",
	Short: "Add hours of credit",
	Example: `  # Add a week of credit to a registry device
  paygo-gen full add-credit --serial meter-0042 --hours 168

  # Explicit message id, key from file
  paygo-gen full add-credit --id 72 --hours 168 --key-file meter.key`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.FullAddCredit(id, fullHours), nil
		}, map[string]string{"Hours": fmt.Sprintf("%d", fullHours)})
	},
}

var fullSetCreditCmd = &cobra.Command{
	Use:   "set-credit",
	Short: "Set remaining credit to an absolute hour count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.FullSetCredit(id, fullHours), nil
		}, map[string]string{"Hours": fmt.Sprintf("%d", fullHours)})
	},
}

var fullUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the device permanently",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.FullUnlock(id), nil
		}, nil)
	},
}

var fullWipeStateCmd = &cobra.Command{
	Use:   "wipe-state",
	Short: "Wipe device PAYG state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if wipeTarget > 3 {
			return fmt.Errorf("wipe target must be 0-3, got %d", wipeTarget)
		}
		if !assumeYes && !ui.WipeStateConfirmation() {
			return nil
		}
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.FullWipeState(id, message.WipeFlags(wipeTarget)), nil
		}, map[string]string{"Wipe target": fmt.Sprintf("%d", wipeTarget)})
	},
}

// issueFactory runs the common flow for factory and test commands, which use
// well-known keys and fixed id 0.
func issueFactory(msg message.Message, key []byte, details map[string]string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	if !assumeYes && !ui.FactoryConfirmation() {
		return nil
	}
	return issueAndPrint(registry, msg, key, false, false, details)
}

var fullFactoryAllowTestCmd = &cobra.Command{
	Use:   "factory-allow-test",
	Short: "Allow test mode on a factory-line device",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueFactory(message.FactoryAllowTest(), message.FactoryKey, nil)
	},
}

var fullFactoryOQCCmd = &cobra.Command{
	Use:   "factory-oqc",
	Short: "Run an outgoing quality control test",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueFactory(message.FactoryOQCTest(oqcMinutes), message.FactoryKey,
			map[string]string{"Minutes": fmt.Sprintf("%d", oqcMinutes)})
	},
}

var fullFactoryDisplayIDCmd = &cobra.Command{
	Use:   "factory-display-id",
	Short: "Make the device display its id",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueFactory(message.FactoryDisplayID(), message.FactoryKey, nil)
	},
}

// --- small family ---

var (
	smallDays   uint32
	maintTarget uint8
	oqcTest     bool
)

var smallCmd = &cobra.Command{
	Use:   "small",
	Short: "Issue small-family keycodes (5-key keypads)",
	Long: `Issue keycodes for small-family devices.

Small keycodes are fixed sequences of the keys 1-5 and carry a 12-bit
truncated digest. Credit is denominated in days and quantized to the
protocol's increment table; the issued code may round the requested days.`,
}

func init() {
	smallAddCreditCmd.Flags().Uint32Var(&smallDays, "days", 0, "Days of credit to add (1-405)")
	smallSetCreditCmd.Flags().Uint32Var(&smallDays, "days", 0, "Days of credit to set (1-960)")
	smallUpdateCreditCmd.Flags().Uint32Var(&smallDays, "days", 0, "Days of credit to set if newer (1-960)")
	smallExtendedSetCreditCmd.Flags().Uint32Var(&smallDays, "days", 0, "Days of credit (bucket values only)")
	smallMaintenanceCmd.Flags().Uint8Var(&maintTarget, "target", 0, "Wipe target: 0=flags-0, 1=flags-1, 2=all ids")
	smallTestCmd.Flags().BoolVar(&oqcTest, "oqc", false, "Run the OQC test instead of the short test")

	smallCmd.AddCommand(smallAddCreditCmd)
	smallCmd.AddCommand(smallSetCreditCmd)
	smallCmd.AddCommand(smallUpdateCreditCmd)
	smallCmd.AddCommand(smallExtendedSetCreditCmd)
	smallCmd.AddCommand(smallUnlockCmd)
	smallCmd.AddCommand(smallLockCmd)
	smallCmd.AddCommand(smallWipeRestrictedFlagCmd)
	smallCmd.AddCommand(smallMaintenanceCmd)
	smallCmd.AddCommand(smallTestCmd)
}

var smallAddCreditCmd = &cobra.Command{
	Use:   "add-credit",
	Short: "Add days of credit",
	Example: `  # Add 30 days to a registry device
  paygo-gen small add-credit --serial lamp-7 --days 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.SmallAddCredit(id, smallDays)
		}, map[string]string{"Days": fmt.Sprintf("%d", smallDays)})
	},
}

var smallSetCreditCmd = &cobra.Command{
	Use:   "set-credit",
	Short: "Set remaining credit to an absolute day count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.SmallSetCredit(id, smallDays)
		}, map[string]string{"Days": fmt.Sprintf("%d", smallDays)})
	},
}

var smallUpdateCreditCmd = &cobra.Command{
	Use:   "update-credit",
	Short: "Set credit only if this code is newer than the last applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.SmallUpdateCredit(id, smallDays)
		}, map[string]string{"Days": fmt.Sprintf("%d", smallDays)})
	},
}

var smallExtendedSetCreditCmd = &cobra.Command{
	Use:   "extended-set-credit",
	Short: "Set credit using the extended bucket encoding",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.SmallExtendedSetCredit(id, smallDays)
		}, map[string]string{"Days": fmt.Sprintf("%d", smallDays)})
	},
}

var smallUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the device permanently",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.SmallUnlock(id), nil
		}, nil)
	},
}

var smallLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the device, zeroing remaining credit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !assumeYes && !ui.ConfirmDangerousOperation(
			"LOCK KEYCODE",
			[]string{"This keycode zeroes the device's remaining credit"},
			"") {
			return nil
		}
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.SmallLock(id), nil
		}, nil)
	},
}

var smallWipeRestrictedFlagCmd = &cobra.Command{
	Use:   "wipe-restricted-flag",
	Short: "Clear the device's restricted flag",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueWithDeviceKey(func(id uint32) (message.Message, error) {
			return message.SmallWipeRestrictedFlag(id), nil
		}, nil)
	},
}

var smallMaintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Issue a maintenance wipe keycode",
	RunE: func(cmd *cobra.Command, args []string) error {
		if maintTarget > uint8(message.MaintenanceWipeIDsAll) {
			return fmt.Errorf("maintenance target must be 0-2, got %d", maintTarget)
		}
		if !assumeYes && !ui.WipeStateConfirmation() {
			return nil
		}
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		key, err := resolveKey(registry)
		if err != nil {
			return err
		}
		return issueAndPrint(registry, message.SmallMaintenance(message.MaintenanceType(maintTarget)),
			key, true, false, map[string]string{"Wipe target": fmt.Sprintf("%d", maintTarget)})
	},
}

var smallTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Issue a device test keycode (well-known test key)",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := message.TestShort
		if oqcTest {
			t = message.TestOQC
		}
		return issueFactory(message.SmallTest(t), message.TestKey, nil)
	},
}
