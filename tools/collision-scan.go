//go:build ignore

// Collision-scan measures empirical id collision rates for the small-family
// message types whose digest bits double as a subtype discriminator.
//
// Custom command and extended set credit codes reuse the set credit wire
// format: the decoder dispatches on the low discriminator bits of the digest,
// and three of the 64 patterns belong to other interpretations. An id whose
// digest lands on a reserved pattern cannot be issued and the encoder skips
// to the next id. This tool scans an id range, reports the observed reserved
// hit rate against the theoretical 3/64, and histograms how many consecutive
// ids were skipped, which is what the retry budget has to cover.
//
// Usage: collision-scan [start-id] [count] [key-hex]
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/oduya/paygo/internal/auth"
	"github.com/oduya/paygo/internal/protocol"
)

func main() {
	startID := uint64(0)
	count := uint64(100000)
	keyHex := "a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5a5"

	if len(os.Args) > 1 {
		v, err := strconv.ParseUint(os.Args[1], 10, 32)
		if err != nil {
			fmt.Printf("bad start id %q: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		startID = v
	}
	if len(os.Args) > 2 {
		v, err := strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil {
			fmt.Printf("bad count %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		count = v
	}
	if len(os.Args) > 3 {
		keyHex = os.Args[3]
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) != auth.KeyLen {
		fmt.Printf("key must be %d hex bytes\n", auth.KeyLen)
		os.Exit(1)
	}

	fmt.Printf("=== Keycode Collision Scanner ===\n")
	fmt.Printf("Ids:   %d .. %d\n", startID, startID+count-1)
	fmt.Printf("Key:   %s...%s\n\n", keyHex[:4], keyHex[len(keyHex)-4:])

	for _, t := range []protocol.MessageType{
		protocol.SmallCustomCommand,
		protocol.SmallExtendedSetCredit,
	} {
		scanReservedBand(t, key, uint32(startID), uint32(count))
	}

	scanLegacyGuard(key, uint32(startID), uint32(count))
}

// scanReservedBand encodes one representative body per id and counts digests
// landing on reserved discriminator patterns.
func scanReservedBand(t protocol.MessageType, key []byte, startID, count uint32) {
	def := protocol.Lookup(t)
	if def.Collision == nil || len(def.Collision.Reserved) == 0 {
		fmt.Printf("%s: no reserved discriminator band\n\n", def.Name)
		return
	}

	// Any in-range increment works; the digest varies with the id.
	values := map[string]uint64{"increment": uint64(def.Fields[0].Min)}

	hits := 0
	maxRun := 0
	run := 0
	runs := make(map[int]int)

	for i := uint32(0); i < count; i++ {
		id := startID + i
		body, err := protocol.EncodeBody(t, id, values)
		if err != nil {
			fmt.Printf("encode failed at id %d: %v\n", id, err)
			os.Exit(1)
		}
		_, err = auth.Authenticate(t, id, body, key)
		if auth.IsIdCollisionError(err) {
			hits++
			run++
			if run > maxRun {
				maxRun = run
			}
			continue
		}
		if err != nil {
			fmt.Printf("authenticate failed at id %d: %v\n", id, err)
			os.Exit(1)
		}
		if run > 0 {
			runs[run]++
			run = 0
		}
	}
	if run > 0 {
		runs[run]++
	}

	expected := float64(len(def.Collision.Reserved)) / float64(int(1)<<def.Collision.DiscriminatorBits)
	observed := float64(hits) / float64(count)

	fmt.Printf("%s\n", def.Name)
	fmt.Printf("  reserved patterns:  %d of %d\n", len(def.Collision.Reserved), int(1)<<def.Collision.DiscriminatorBits)
	fmt.Printf("  expected hit rate:  %.4f\n", expected)
	fmt.Printf("  observed hit rate:  %.4f (%d of %d ids)\n", observed, hits, count)
	fmt.Printf("  longest skip chain: %d\n", maxRun)
	fmt.Printf("  skip chain histogram:\n")
	for length := 1; length <= maxRun; length++ {
		if n := runs[length]; n > 0 {
			fmt.Printf("    %2d consecutive: %d\n", length, n)
		}
	}
	fmt.Printf("  a retry budget of %d covers every chain in this range\n\n", maxRun)
}

// scanLegacyGuard counts ids refused by the legacy factory-test guard, which
// fires only on the exact transmitted id 63 with a zero increment body.
func scanLegacyGuard(key []byte, startID, count uint32) {
	t := protocol.SmallSetCredit
	def := protocol.Lookup(t)

	hits := 0
	for i := uint32(0); i < count; i++ {
		id := startID + i
		body, err := protocol.EncodeBody(t, id, map[string]uint64{"increment": 0})
		if err != nil {
			fmt.Printf("encode failed at id %d: %v\n", id, err)
			os.Exit(1)
		}
		_, err = auth.Authenticate(t, id, body, key)
		if auth.IsIdCollisionError(err) {
			hits++
		} else if err != nil {
			fmt.Printf("authenticate failed at id %d: %v\n", id, err)
			os.Exit(1)
		}
	}

	fmt.Printf("%s (legacy test guard, increment 0)\n", def.Name)
	fmt.Printf("  refused ids: %d of %d (deterministic: every 64th id)\n", hits, count)
}
