package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oduya/paygo/internal/ui"
)

// Device command flags
var (
	deviceAlias  string
	deviceFamily string
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage the local device registry",
	Long: `Inspect and edit the local device registry.

The registry tracks per-device message identifiers so issued keycodes never
reuse an id, plus optional aliases and key-file paths. Secret keys are never
stored in the registry; only paths to key files are.`,
}

func init() {
	deviceRegisterCmd.Flags().StringVar(&deviceAlias, "alias", "", "User-friendly device name")
	deviceRegisterCmd.Flags().StringVar(&deviceFamily, "family", "full", "Keypad family: full or small")

	deviceCmd.AddCommand(deviceRegisterCmd)
	deviceCmd.AddCommand(deviceListCmd)
}

var deviceRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a device or update its registry entry",
	Example: `  # Register a small-family lamp with a key file
  paygo-gen device register --serial lamp-7 --family small --alias "Demo lamp" --key-file /secure/keys/lamp-7.key`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serial == "" {
			return fmt.Errorf("--serial is required")
		}
		if deviceFamily != "full" && deviceFamily != "small" {
			return fmt.Errorf("family must be full or small, got %q", deviceFamily)
		}
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		dev := registry.EnsureDevice(serial)
		dev.Family = deviceFamily
		if deviceAlias != "" {
			registry.SetDeviceAlias(serial, deviceAlias)
		}
		if keyFile != "" {
			registry.SetDeviceKeyFile(serial, keyFile)
		}
		if err := registry.Save(); err != nil {
			return fmt.Errorf("saving device registry: %w", err)
		}

		details := map[string]string{
			"Serial":  serial,
			"Family":  dev.Family,
			"Next id": fmt.Sprintf("%d", dev.NextID),
		}
		if dev.Alias != "" {
			details["Alias"] = dev.Alias
		}
		if dev.KeyFile != "" {
			details["Key file"] = dev.KeyFile
		}
		ui.NewPrinter(cliOut).PrintSuccess("Device registered", details)
		return nil
	},
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		p := ui.NewPrinter(cliOut)
		p.PrintHeader("Device registry", "paygo-gen device list", map[string]string{
			"Devices": fmt.Sprintf("%d", len(registry.Devices)),
		})

		serials := make([]string, 0, len(registry.Devices))
		for s := range registry.Devices {
			serials = append(serials, s)
		}
		sort.Strings(serials)

		if len(serials) == 0 {
			p.Println("  no devices registered")
			return nil
		}
		for _, s := range serials {
			dev := registry.Devices[s]
			line := fmt.Sprintf("  %s  [%s family, next id %d]", s, dev.Family, dev.NextID)
			if dev.Alias != "" {
				line += "  (" + dev.Alias + ")"
			}
			p.Println(line)
		}
		return nil
	},
}
