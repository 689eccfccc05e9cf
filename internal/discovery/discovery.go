// Package discovery locates cast devices on the local network and resolves
// one of them into a connected device handle.
package discovery

import (
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/mdns"
	"github.com/pkg/errors"

	"castctl.app/castctl/internal/castdevice"
)

const (
	googlecastService = "_googlecast._tcp"

	// mDNS query timeout per request
	queryTimeout = 750 * time.Millisecond

	// capabilityVideoOut is the bitmask for video output capability (bit 0)
	capabilityVideoOut = 1
)

// ErrDeviceNotFound means no device on the network matched the given
// identifiers during one discovery sweep.
var ErrDeviceNotFound = errors.New("discovery: no matching cast device found")

// Entry is one cast device seen on the network.
type Entry struct {
	Name        string
	UUID        string // 32 hex digits, no dashes
	Host        string
	Port        int
	IsAudioOnly bool
}

// Addr returns the host:port address of the entry.
func (e Entry) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// swapped in tests
var (
	mdnsQuery = mdns.Query

	connectEntry = func(e Entry, retries int) (castdevice.Device, error) {
		dev := castdevice.New(castdevice.Config{
			Host:              e.Host,
			Port:              e.Port,
			Name:              e.Name,
			UUID:              e.UUID,
			ConnectionRetries: retries,
		})
		if err := dev.Connect(); err != nil {
			return nil, err
		}
		return dev, nil
	}
)

// Sweep performs one mDNS query for cast devices and returns everything
// that answered within the timeout.
func Sweep(timeout time.Duration) ([]Entry, error) {
	if timeout <= 0 {
		timeout = queryTimeout
	}

	entriesCh := make(chan *mdns.ServiceEntry, 256)
	doneCh := make(chan struct{})

	var found []Entry
	seen := make(map[string]struct{})

	go func() {
		defer close(doneCh)
		for entry := range entriesCh {
			e, ok := entryFromMDNS(entry)
			if !ok {
				continue
			}
			if _, dup := seen[e.Addr()]; dup {
				continue
			}
			seen[e.Addr()] = struct{}{}
			found = append(found, e)
		}
	}()

	params := mdns.DefaultParams(googlecastService)
	params.Entries = entriesCh
	params.Timeout = timeout
	params.DisableIPv6 = true
	params.WantUnicastResponse = true
	params.Logger = log.New(io.Discard, "", 0)
	err := mdnsQuery(params)

	close(entriesCh)
	<-doneCh

	if err != nil {
		return nil, fmt.Errorf("discovery sweep: %w", err)
	}
	return found, nil
}

// FindDevice resolves exactly one device with precedence host, then uuid,
// then name, then first-found. A host address skips discovery entirely.
// retries is the transport client's connection retry budget.
func FindDevice(name, host, uuidArg string, retries int) (castdevice.Device, error) {
	if host != "" {
		entry, err := entryFromHost(host)
		if err != nil {
			return nil, err
		}
		return connectEntry(entry, retries)
	}

	entries, err := Sweep(queryTimeout)
	if err != nil {
		return nil, err
	}

	var chosen *Entry
	if uuidArg != "" {
		chosen = matchUUID(entries, uuidArg)
	}
	if chosen == nil && name != "" {
		chosen = matchName(entries, name)
	}
	if chosen == nil && uuidArg == "" && name == "" && len(entries) > 0 {
		chosen = &entries[0]
	}

	if chosen == nil {
		return nil, ErrDeviceNotFound
	}
	return connectEntry(*chosen, retries)
}

func entryFromHost(host string) (Entry, error) {
	port := castdevice.DefaultPort

	if h, p, err := net.SplitHostPort(host); err == nil {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return Entry{}, fmt.Errorf("discovery: invalid port in %q", host)
		}
		host, port = h, parsed
	}

	return Entry{Host: host, Port: port}, nil
}

func matchUUID(entries []Entry, uuidArg string) *Entry {
	want := normalizeUUID(uuidArg)

	for i := range entries {
		if normalizeUUID(entries[i].UUID) == want {
			return &entries[i]
		}
	}
	return nil
}

func normalizeUUID(raw string) string {
	if parsed, err := uuid.Parse(raw); err == nil {
		return strings.ReplaceAll(parsed.String(), "-", "")
	}
	return strings.ToLower(strings.ReplaceAll(raw, "-", ""))
}

func matchName(entries []Entry, name string) *Entry {
	for i := range entries {
		if strings.EqualFold(entries[i].Name, name) {
			return &entries[i]
		}
	}
	return nil
}

func entryFromMDNS(entry *mdns.ServiceEntry) (Entry, bool) {
	if entry == nil || entry.AddrV4 == nil {
		return Entry{}, false
	}
	if !strings.Contains(entry.Name, "_googlecast") {
		return Entry{}, false
	}

	e := Entry{
		Host: entry.AddrV4.String(),
		Port: entry.Port,
	}

	friendlyName := entry.Name
	if idx := strings.Index(friendlyName, "._googlecast"); idx > 0 {
		friendlyName = friendlyName[:idx]
	}

	for _, txt := range entry.InfoFields {
		switch {
		case strings.HasPrefix(txt, "fn="):
			friendlyName = strings.TrimPrefix(txt, "fn=")
		case strings.HasPrefix(txt, "id="):
			e.UUID = strings.ToLower(strings.TrimPrefix(txt, "id="))
		case strings.HasPrefix(txt, "ca="):
			e.IsAudioOnly = isAudioOnly(strings.TrimPrefix(txt, "ca="))
		}
	}
	e.Name = friendlyName

	return e, true
}

func isAudioOnly(capabilities string) bool {
	caps, err := strconv.Atoi(capabilities)
	if err != nil {
		return false
	}
	return caps&capabilityVideoOut == 0
}
