package device

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/term"
)

// Signals is the fixed set of locally observable characteristics the
// fingerprint is derived from. Every field degrades to "unknown" (or a
// zero count) rather than failing, so derivation always succeeds.
type Signals struct {
	Display  string // terminal geometry, e.g. "120x40"
	Timezone string
	Locale   string
	Platform string
	Agent    string
	Cores    int
	Memory   string // coarse physical memory hint
	Touch    int    // touch point count, always 0 on CLI hosts
	Renderer string // host rendering signature
	Graphics string // graphics/session signature
}

const signalDelimiter = "|||"

// components returns the signals in their fixed derivation order.
func (s Signals) components() []string {
	return []string{
		s.Display,
		s.Timezone,
		s.Locale,
		s.Platform,
		s.Agent,
		strconv.Itoa(s.Cores),
		s.Memory,
		strconv.Itoa(s.Touch),
		s.Renderer,
		s.Graphics,
	}
}

// CollectSignals gathers the signal set from the current host.
func CollectSignals() Signals {
	return Signals{
		Display:  displayGeometry(),
		Timezone: timezoneName(),
		Locale:   localeName(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Agent:    UserAgent,
		Cores:    runtime.NumCPU(),
		Memory:   memoryHint(),
		Touch:    0,
		Renderer: hostSignature(),
		Graphics: sessionSignature(),
	}
}

func displayGeometry() string {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return fmt.Sprintf("%dx%d", w, h)
	}
	return "unknown"
}

func timezoneName() string {
	name, offset := time.Now().Zone()
	return fmt.Sprintf("%s%+d", name, offset/3600)
}

func localeName() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

// memoryHint reads total physical memory in whole GiB where the
// platform exposes it cheaply.
func memoryHint() string {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return "unknown"
	}
	var kb int64
	if _, err := fmt.Sscanf(string(data), "MemTotal: %d kB", &kb); err != nil {
		return "unknown"
	}
	return strconv.FormatInt(kb/(1024*1024), 10)
}

func hostSignature() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

func sessionSignature() string {
	for _, key := range []string{"XDG_SESSION_TYPE", "TERM"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}
