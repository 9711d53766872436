package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oduya/paygo/internal/channel"
	"github.com/oduya/paygo/internal/config"
	"github.com/oduya/paygo/internal/message"
)

func writeKeyFile(t *testing.T, name string, fill byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	key := make([]byte, config.KeyLen)
	for i := range key {
		key[i] = fill
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetChannelFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		keyFile = ""
		channelKeyFile = ""
		commandCount = 0
		cliOut = nil
	})
	cliOut = io.Discard
}

// Origin commands authenticate twice: the nested body under the controller's
// channel key and the passthrough host under the device key. Encoding must
// succeed when both keys are supplied.
func TestIssueChannelEncodesUnderHostKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetChannelFlags(t)

	keyFile = writeKeyFile(t, "host.key", 0x42)
	channelKeyFile = writeKeyFile(t, "controller.key", 0x17)
	commandCount = 7

	err := issueChannel(func(channelKey []byte) (message.Message, error) {
		return channel.UnlinkAllAccessories(commandCount, channelKey)
	}, nil)
	if err != nil {
		t.Fatalf("issueChannel: %v", err)
	}
}

func TestIssueChannelRequiresChannelKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetChannelFlags(t)

	keyFile = writeKeyFile(t, "host.key", 0x42)

	err := issueChannel(func(channelKey []byte) (message.Message, error) {
		return channel.UnlockAllAccessories(commandCount, channelKey)
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "--channel-key-file") {
		t.Fatalf("issueChannel without channel key: %v, want flag hint", err)
	}
}

// The small-bearer host is digestless, so no device key is needed at all;
// only the channel key authenticates the command.
func TestIssueChannelBearerNeedsNoHostKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetChannelFlags(t)

	channelKeyFile = writeKeyFile(t, "controller.key", 0x17)
	commandCount = 3

	err := issueChannel(func(channelKey []byte) (message.Message, error) {
		return channel.SetCreditWipeRestrictedFlag(30, commandCount, channelKey)
	}, nil)
	if err != nil {
		t.Fatalf("issueChannel (bearer): %v", err)
	}
}
