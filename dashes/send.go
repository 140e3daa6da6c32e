package dashes

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/qmsk/numsend/stats"
)

var ErrInvalidArgument = errors.New("invalid argument")

type SendConfig struct {
	Host string `no-flag:"yes"`
	Port uint16 `no-flag:"yes"`

	Sleep   uint `short:"s" long:"sleep" value-name:"MILLIS" default:"100" description:"Sleep between sends"`
	NoSleep bool `long:"nosleep" description:"Send without sleeping"`
	TCP     bool `long:"tcp" description:"Use TCP instead of UDP"`

	Count uint  `short:"c" long:"count" default:"0" description:"Stop after sending this many payloads (default: forever)"`
	TTL   uint8 `long:"ttl" description:"IP TTL or hop limit (default: system default)"`
}

func (self SendConfig) Addr() string {
	return net.JoinHostPort(self.Host, strconv.FormatUint(uint64(self.Port), 10))
}

func (self SendConfig) Apply(log *slog.Logger) (*Send, error) {
	return NewSend(self, log)
}

type SendStats struct {
	Time     time.Time     // stats were reset
	Duration time.Duration // stats were collected

	Packets uint
	Bytes   uint
	Payload Payload // most recent
}

func (self SendStats) StatsType() string {
	return "dashes_send"
}

func (self SendStats) StatsInstance() string {
	return ""
}

func (self SendStats) StatsTime() time.Time {
	return self.Time
}

func (self SendStats) Rate() float64 {
	if self.Duration <= 0 {
		return 0
	}
	return float64(self.Packets) / self.Duration.Seconds()
}

func (self SendStats) StatsFields() map[string]interface{} {
	return map[string]interface{}{
		"packets": self.Packets,
		"bytes":   self.Bytes,
		"rate":    self.Rate(),
		"dashes":  uint(self.Payload),
	}
}

func (self SendStats) String() string {
	return fmt.Sprintf("%5.2f: send %6d @ %8.2f/s %8d bytes",
		self.Duration.Seconds(),
		self.Packets, self.Rate(),
		self.Bytes,
	)
}

type Send struct {
	config SendConfig
	log    *slog.Logger
	clock  clockwork.Clock
	echo   io.Writer

	sockSend SockSend
	counter  Counter

	statsWriter *stats.Writer
	stats       SendStats
	statsSock   SockStats // at stats reset
}

// NewSend opens the socket used for all sends.
func NewSend(config SendConfig, log *slog.Logger) (*Send, error) {
	send := &Send{
		log:   log.With("component", "send"),
		clock: clockwork.NewRealClock(),
		echo:  os.Stdout,
	}

	if err := send.apply(config); err != nil {
		return nil, err
	}

	return send, nil
}

func (self *Send) apply(config SendConfig) error {
	if config.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidArgument)
	}

	if config.TCP {
		sockTCP := &SockTCP{}

		if err := sockTCP.initDial(config.Addr(), config.TTL); err != nil {
			return err
		}

		self.sockSend = sockTCP
	} else {
		sockUDP := &SockUDP{}

		if err := sockUDP.initSend(config.Addr(), config.TTL); err != nil {
			return err
		}

		self.sockSend = sockUDP
	}

	self.config = config

	return nil
}

func (self *Send) String() string {
	return self.sockSend.String()
}

func (self *Send) SetClock(clock clockwork.Clock) {
	self.clock = clock
}

// Write a copy of each sent payload
func (self *Send) SetEcho(echo io.Writer) {
	self.echo = echo
}

func (self *Send) StatsWriter(statsWriter *stats.Writer) error {
	self.statsWriter = statsWriter

	return nil
}

func (self *Send) resetStats() {
	self.stats = SendStats{
		Time:    self.clock.Now(),
		Payload: self.stats.Payload,
	}
	self.statsSock = self.sockSend.getStats()
}

func (self *Send) takeStats() SendStats {
	sockStats := self.sockSend.getStats()

	stats := self.stats
	stats.Duration = self.clock.Since(stats.Time)
	stats.Packets = sockStats.Packets - self.statsSock.Packets
	stats.Bytes = sockStats.Bytes - self.statsSock.Bytes

	self.resetStats()

	return stats
}

// write stats once the interval has passed
func (self *Send) checkStats() {
	if self.statsWriter == nil {
		return
	} else if self.clock.Since(self.stats.Time) < self.statsWriter.Interval {
		return
	}

	self.statsWriter.WriteStats(self.takeStats())
}

func (self *Send) send(payload Payload) error {
	if err := self.sockSend.send(payload); err != nil {
		return err
	}

	transport := self.sockSend.Transport()
	buf := payload.Pack()

	SendPacketsTotal.WithLabelValues(transport).Inc()
	SendBytesTotal.WithLabelValues(transport).Add(float64(len(buf)))

	self.stats.Payload = payload

	if _, err := self.echo.Write(buf); err != nil {
		return fmt.Errorf("Echo: %w", err)
	}

	return nil
}

// Run sends payloads until the configured count, or forever.
//
// Send errors are returned without retrying. The socket is closed on return.
func (self *Send) Run() error {
	defer self.sockSend.Close()

	sleep := time.Duration(self.config.Sleep) * time.Millisecond

	self.resetStats()

	for count := uint(1); ; count++ {
		payload := self.counter.Next()

		if err := self.send(payload); err != nil {
			return err
		}

		self.checkStats()

		if self.config.Count > 0 && count >= self.config.Count {
			break
		}

		if !self.config.NoSleep {
			self.clock.Sleep(sleep)
		}
	}

	if self.statsWriter != nil {
		self.statsWriter.WriteStats(self.takeStats())
	}

	self.log.Debug("done", "count", self.config.Count, "sock", self.sockSend.getStats())

	return nil
}

// Release the socket without running
func (self *Send) Close() error {
	return self.sockSend.Close()
}
