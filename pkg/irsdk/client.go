package irsdk

import (
	"log"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

const defaultPollInterval = 2 * time.Millisecond

// Client owns one connection to the telemetry region. It is not safe for
// concurrent use; a single control loop drives it.
type Client struct {
	opener       Opener
	regionName   string
	signalName   string
	pollInterval time.Duration

	mapping Mapping
	signal  Signal
	region  *Region

	lastTick int32
	bufIdx   int

	signalWarned bool
	// onCopied runs between the value copy and the closing tick check.
	onCopied func()
}

type Option func(*Client)

func WithOpener(o Opener) Option {
	return func(c *Client) { c.opener = o }
}

func WithRegionName(name string) Option {
	return func(c *Client) { c.regionName = name }
}

// WithSignalName sets the readiness event name; an empty name disables it.
func WithSignalName(name string) Option {
	return func(c *Client) { c.signalName = name }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		opener:       DefaultOpener(),
		regionName:   DefaultRegionName,
		signalName:   DefaultSignalName,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open maps the region and validates its header. A missing readiness signal
// is not an error.
func (c *Client) Open() error {
	if c.region != nil {
		return nil
	}
	m, err := c.opener.OpenRegion(c.regionName)
	if err != nil {
		return err
	}
	region, err := NewRegion(m.Bytes())
	if err != nil {
		m.Close()
		return errors.Wrapf(err, "region %s", c.regionName)
	}

	c.mapping = m
	c.region = region
	c.bufIdx, c.lastTick = region.Freshest()

	if c.signalName != "" {
		s, err := c.opener.OpenSignal(c.signalName)
		if err != nil {
			if !c.signalWarned {
				log.Printf("telemetry: %s, polling tick counts instead", err)
				c.signalWarned = true
			}
		} else {
			c.signal = s
		}
	}
	return nil
}

// Connect is Open reported as a boolean.
func (c *Client) Connect() bool {
	return c.Open() == nil
}

func (c *Client) IsConnected() bool {
	return c.region != nil
}

// IsSessionActive reports whether the producer flags a running session, not
// merely that the region exists.
func (c *Client) IsSessionActive() bool {
	return c.region != nil && c.region.Status()&StatusConnected != 0
}

// PollForUpdate waits up to timeout for a newer tick. The signal only shortens
// the wait; the tick comparison decides.
func (c *Client) PollForUpdate(timeout time.Duration) bool {
	if c.region == nil {
		return false
	}

	fired := false
	if c.signal != nil {
		fired = c.signal.Wait(timeout)
	}
	idx, tick := c.region.Freshest()

	if c.signal == nil && !fired && tick <= c.lastTick && timeout > 0 {
		deadline := time.Now().Add(timeout)
		for tick <= c.lastTick {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				break
			}
			time.Sleep(min(c.pollInterval, remaining))
			idx, tick = c.region.Freshest()
		}
	}

	if fired || tick > c.lastTick {
		c.lastTick = tick
		c.bufIdx = idx
		return true
	}
	return false
}

// Tick is the tick of the buffer used by reads.
func (c *Client) Tick() int {
	return int(c.lastTick)
}

func (c *Client) TickRate() int {
	if c.region == nil {
		return 0
	}
	return int(c.region.Header().TickRate)
}

// SessionInfoUpdate is the live descriptor version counter, -1 when not
// connected.
func (c *Client) SessionInfoUpdate() int {
	if c.region == nil {
		return -1
	}
	return int(c.region.SessionInfoUpdate())
}

// SessionInfo returns the descriptor text converted from Windows-1252.
func (c *Client) SessionInfo() string {
	if c.region == nil {
		return ""
	}
	raw := c.region.SessionInfoBytes()
	text, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(text)
}

func (c *Client) Vars() []VarHeader {
	if c.region == nil {
		return nil
	}
	return c.region.Vars()
}

// Shutdown releases the signal and the mapping. Safe to call repeatedly.
func (c *Client) Shutdown() {
	if c.signal != nil {
		if err := c.signal.Close(); err != nil {
			log.Printf("telemetry: closing signal: %s", err)
		}
		c.signal = nil
	}
	if c.mapping != nil {
		if err := c.mapping.Close(); err != nil {
			log.Printf("telemetry: closing region: %s", err)
		}
		c.mapping = nil
	}
	c.region = nil
	c.lastTick = 0
	c.bufIdx = 0
}
