package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oduya/paygo/internal/channel"
	"github.com/oduya/paygo/internal/config"
	"github.com/oduya/paygo/internal/message"
	"github.com/oduya/paygo/internal/protocol"
)

// Channel command flags
var (
	commandCount     uint32
	channelKeyFile   string
	accessoryID      uint64
	accessoryKeyFile string
	accessoryCount   uint32
	bearerDays       uint32
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Issue channel keycodes for linked controller/accessory pairs",
	Long: `Issue keycodes that a keypad controller relays to linked accessories.

Origin commands carry two authentications: the nested command is bound to the
controller's channel key with a per-command count, and the passthrough host
token that wraps it carries the usual keycode digest under the device key.
The count must match the controller's stored count or the command is
rejected; each issued command should use a fresh count.`,
}

func init() {
	channelCmd.PersistentFlags().Uint32Var(&commandCount, "count", 0, "Controller origin command count for this command")
	channelCmd.PersistentFlags().StringVar(&channelKeyFile, "channel-key-file", "", "Path to the controller's channel key file (authenticates the nested command)")

	channelUnlockAccessoryCmd.Flags().Uint64Var(&accessoryID, "accessory-id", 0, "Accessory identifier (truncated to 20 bits on the wire)")
	channelUnlinkAccessoryCmd.Flags().Uint64Var(&accessoryID, "accessory-id", 0, "Accessory identifier (truncated to 20 bits on the wire)")
	channelLinkMode3Cmd.Flags().StringVar(&accessoryKeyFile, "accessory-key-file", "", "Path to the accessory's key file")
	channelLinkMode3Cmd.Flags().Uint32Var(&accessoryCount, "accessory-count", 0, "Accessory challenge count")
	channelBearerSetCreditCmd.Flags().Uint32Var(&bearerDays, "days", 0, "Days of credit to set (1-960)")

	channelCmd.AddCommand(channelUnlockAllCmd)
	channelCmd.AddCommand(channelUnlinkAllCmd)
	channelCmd.AddCommand(channelUnlockAccessoryCmd)
	channelCmd.AddCommand(channelUnlinkAccessoryCmd)
	channelCmd.AddCommand(channelLinkMode3Cmd)
	channelCmd.AddCommand(channelBearerSetCreditCmd)
	channelCmd.AddCommand(channelSecurityKeyCmd)
}

// issueChannel runs the common flow for origin commands. The nested command
// authenticates under the controller's channel key; the full-keypad host
// token additionally carries a digest under the device key, resolved the
// usual way. Small-bearer hosts are digestless and need no device key. No
// registry id is consumed: passthrough hosts pin identifier 0 and replay
// protection lives in the command count.
func issueChannel(build func(channelKey []byte) (message.Message, error), details map[string]string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	if channelKeyFile == "" {
		return fmt.Errorf("--channel-key-file is required for origin commands")
	}
	channelKey, err := config.ReadKeyFile(channelKeyFile)
	if err != nil {
		return err
	}

	msg, err := build(channelKey)
	for i := range channelKey {
		channelKey[i] = 0
	}
	if err != nil {
		return err
	}

	var hostKey []byte
	zeroHost := false
	if protocol.Lookup(msg.Type).DigestBits > 0 {
		hostKey, err = resolveKey(registry)
		if err != nil {
			return err
		}
		zeroHost = true
	}

	if details == nil {
		details = map[string]string{}
	}
	details["Command count"] = fmt.Sprintf("%d", commandCount)

	return issueAndPrint(registry, msg, hostKey, zeroHost, false, details)
}

var channelUnlockAllCmd = &cobra.Command{
	Use:   "unlock-all",
	Short: "Unlock every linked accessory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueChannel(func(key []byte) (message.Message, error) {
			return channel.UnlockAllAccessories(commandCount, key)
		}, nil)
	},
}

var channelUnlinkAllCmd = &cobra.Command{
	Use:   "unlink-all",
	Short: "Unlink every linked accessory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueChannel(func(key []byte) (message.Message, error) {
			return channel.UnlinkAllAccessories(commandCount, key)
		}, nil)
	},
}

var channelUnlockAccessoryCmd = &cobra.Command{
	Use:   "unlock-accessory",
	Short: "Unlock one linked accessory",
	Example: `  # Unlock accessory 0x0ABCD linked to controller meter-0042
  paygo-gen channel unlock-accessory --serial meter-0042 --count 7 --accessory-id 43981`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueChannel(func(key []byte) (message.Message, error) {
			return channel.UnlockAccessory(accessoryID, commandCount, key)
		}, map[string]string{"Accessory": fmt.Sprintf("%d", accessoryID)})
	},
}

var channelUnlinkAccessoryCmd = &cobra.Command{
	Use:   "unlink-accessory",
	Short: "Unlink one linked accessory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueChannel(func(key []byte) (message.Message, error) {
			return channel.UnlinkAccessory(accessoryID, commandCount, key)
		}, map[string]string{"Accessory": fmt.Sprintf("%d", accessoryID)})
	},
}

var channelLinkMode3Cmd = &cobra.Command{
	Use:   "link-mode3",
	Short: "Link an accessory using a mode 3 challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		if accessoryKeyFile == "" {
			return fmt.Errorf("--accessory-key-file is required for linking")
		}
		accessoryKey, err := config.ReadKeyFile(accessoryKeyFile)
		if err != nil {
			return err
		}
		defer func() {
			for i := range accessoryKey {
				accessoryKey[i] = 0
			}
		}()

		return issueChannel(func(controllerKey []byte) (message.Message, error) {
			return channel.LinkAccessoryMode3(commandCount, accessoryCount, accessoryKey, controllerKey)
		}, map[string]string{"Accessory count": fmt.Sprintf("%d", accessoryCount)})
	},
}

var channelBearerSetCreditCmd = &cobra.Command{
	Use:   "bearer-set-credit",
	Short: "Set accessory credit via the small bearer channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueChannel(func(key []byte) (message.Message, error) {
			return channel.SetCreditWipeRestrictedFlag(bearerDays, commandCount, key)
		}, map[string]string{"Days": fmt.Sprintf("%d", bearerDays)})
	},
}

var channelSecurityKeyCmd = &cobra.Command{
	Use:   "security-key",
	Short: "Derive the UART security payload for a device secret",
	Long: `Derive the 48-bit UART security payload from a device secret and wrap
it in a passthrough keycode. Used when provisioning a device's channel
security over its UART console.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		secret, err := resolveKey(registry)
		if err != nil {
			return err
		}
		defer func() {
			for i := range secret {
				secret[i] = 0
			}
		}()

		msg, err := channel.SecurityKeyMessage(secret)
		if err != nil {
			return err
		}
		// The host token digest is keyed with the same device secret the
		// payload was derived from.
		return issueAndPrint(registry, msg, secret, false, false, nil)
	},
}
