package channel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oduya/paygo/internal/auth"
	"github.com/oduya/paygo/internal/message"
	"github.com/oduya/paygo/internal/protocol"
)

var (
	deviceKey     = bytes.Repeat([]byte{0x11}, 16)
	controllerKey = bytes.Repeat([]byte{0x22}, 16)
	accessoryKey  = bytes.Repeat([]byte{0x33}, 16)
)

func TestOriginCommandsEncodeAsFullTokens(t *testing.T) {
	cases := []struct {
		name string
		msg  func() (message.Message, error)
	}{
		{"unlink all", func() (message.Message, error) {
			return UnlinkAllAccessories(7, controllerKey)
		}},
		{"unlock all", func() (message.Message, error) {
			return UnlockAllAccessories(7, controllerKey)
		}},
		{"unlock accessory", func() (message.Message, error) {
			return UnlockAccessory(0x123456789A, 7, controllerKey)
		}},
		{"unlink accessory", func() (message.Message, error) {
			return UnlinkAccessory(0x123456789A, 7, controllerKey)
		}},
		{"link mode 3", func() (message.Message, error) {
			return LinkAccessoryMode3(7, 3, accessoryKey, controllerKey)
		}},
	}
	for _, tc := range cases {
		msg, err := tc.msg()
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if msg.Type != protocol.FullChannelPassthrough {
			t.Errorf("%s: host type %v", tc.name, msg.Type)
			continue
		}
		if msg.Values["app_id"] != AppIDOriginCommand {
			t.Errorf("%s: app id %d, want %d", tc.name, msg.Values["app_id"], AppIDOriginCommand)
		}
		code, err := message.Encode(msg, deviceKey)
		if err != nil {
			t.Errorf("%s: encode: %v", tc.name, err)
			continue
		}
		if code[0] != '*' || code[len(code)-1] != '#' {
			t.Errorf("%s: token %q not framed as *...#", tc.name, code)
		}
	}
}

func TestOriginCommandDeterminismAndCountBinding(t *testing.T) {
	a, err := UnlockAccessory(42, 7, controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	b, err := UnlockAccessory(42, 7, controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	if a.Values["payload"] != b.Values["payload"] {
		t.Fatal("same inputs built different nested bodies")
	}
	c, err := UnlockAccessory(42, 8, controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	if a.Values["payload"] == c.Values["payload"] {
		t.Fatal("command count does not affect the nested body")
	}
}

// Only the low 20 bits of the accessory identifier are transmitted, so
// identifiers that agree on them must build the same command.
func TestAccessoryIdentifierTruncation(t *testing.T) {
	a, err := UnlinkAccessory(0x000ABCDE, 5, controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	b, err := UnlinkAccessory(0xFF0ABCDE, 5, controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	if a.Values["payload"] != b.Values["payload"] {
		t.Fatal("identifiers equal modulo 2^20 built different commands")
	}
}

func TestLinkMode3KeyBinding(t *testing.T) {
	a, err := LinkAccessoryMode3(7, 3, accessoryKey, controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	otherKey := bytes.Repeat([]byte{0x44}, 16)
	b, err := LinkAccessoryMode3(7, 3, otherKey, controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	if a.Values["payload"] == b.Values["payload"] {
		t.Fatal("accessory key does not affect the challenge")
	}
	if _, err := LinkAccessoryMode3(7, 3, accessoryKey[:4], controllerKey); err != auth.ErrKeyTooShort {
		t.Fatalf("short accessory key: got %v, want ErrKeyTooShort", err)
	}
}

func TestSetCreditWipeRestrictedFlag(t *testing.T) {
	msg, err := SetCreditWipeRestrictedFlag(30, 12, controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != protocol.SmallPassthrough {
		t.Fatalf("host type %v, want small passthrough", msg.Type)
	}
	payload := msg.Values["payload"]
	if payload>>25 != 1 {
		t.Errorf("app id bit not set in payload %#x", payload)
	}
	if (payload>>20)&0x3 != smallBearerTag {
		t.Errorf("tag bits %#x, want %#x", (payload>>20)&0x3, smallBearerTag)
	}
	if inc := (payload >> 12) & 0xFF; inc != 29 {
		t.Errorf("increment %d, want 29 for 30 days", inc)
	}

	code, err := message.Encode(msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 16 {
		t.Errorf("token %q has length %d, want 16", code, len(code))
	}
	if strings.Trim(code, "12345") != "" {
		t.Errorf("token %q uses keys outside 1-5", code)
	}

	if _, err := SetCreditWipeRestrictedFlag(961, 12, controllerKey); !protocol.IsFieldRangeError(err) {
		t.Errorf("961 days: got %v", err)
	}
}

func TestDeriveSecurityPayload(t *testing.T) {
	p, err := DeriveSecurityPayload(deviceKey)
	if err != nil {
		t.Fatal(err)
	}
	if p>>48 != 0 {
		t.Fatalf("payload %#x wider than 48 bits", p)
	}
	again, err := DeriveSecurityPayload(deviceKey)
	if err != nil {
		t.Fatal(err)
	}
	if p != again {
		t.Fatal("derivation is not deterministic")
	}
	other, err := DeriveSecurityPayload(controllerKey)
	if err != nil {
		t.Fatal(err)
	}
	if p == other {
		t.Fatal("different keys derived the same payload")
	}
	if _, err := DeriveSecurityPayload(deviceKey[:10]); err != auth.ErrKeyTooShort {
		t.Fatalf("short key: got %v, want ErrKeyTooShort", err)
	}

	msg, err := SecurityKeyMessage(deviceKey)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Values["app_id"] != AppIDUARTSecurity {
		t.Fatalf("app id %d, want %d", msg.Values["app_id"], AppIDUARTSecurity)
	}
	if _, err := message.Encode(msg, deviceKey); err != nil {
		t.Fatalf("encode: %v", err)
	}
}
