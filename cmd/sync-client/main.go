// Command sync-client tails the galleryhub event feed over TCP and prints
// one line per favorite or read-progress change.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"galleryhub/internal/sync"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "galleryhub sync feed address")
	pretty := flag.Bool("pretty", true, "pretty print frames that are not gallery events")
	flag.Parse()

	for {
		if err := tail(*addr, *pretty); err != nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func tail(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync-client] connected to galleryhub at %s", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		fmt.Println(render(sc.Bytes(), pretty))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

// render formats one line from the feed. Gallery events get a compact
// single-line summary; other frames (the welcome banner, unknown payloads)
// pass through as-is, indented when pretty is set.
func render(line []byte, pretty bool) string {
	var ev sync.GalleryEvent
	if err := json.Unmarshal(line, &ev); err == nil && knownEvent(ev.Type) {
		return formatEvent(ev)
	}

	if pretty {
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err == nil {
			b, _ := json.MarshalIndent(obj, "", "  ")
			return string(b)
		}
	}
	return string(line)
}

func knownEvent(typ string) bool {
	switch typ {
	case "favorite.update", "favorite.delete", "progress.update":
		return true
	}
	return false
}

func formatEvent(ev sync.GalleryEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-15s gallery=%d/%s user=%s", ev.At.Format(time.RFC3339), ev.Type, ev.GID, ev.Token, ev.UserID)
	if ev.Slot != nil {
		fmt.Fprintf(&b, " slot=%d", *ev.Slot)
	}
	if ev.Page > 0 {
		fmt.Fprintf(&b, " page=%d", ev.Page)
	}
	return b.String()
}
