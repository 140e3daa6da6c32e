package dashes

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/qmsk/numsend/stats"
)

type RecvConfig struct {
	ListenAddr string `long:"listen-addr" value-name:"HOST:PORT" default:"0.0.0.0:9999" description:"Listen address"`
	TCP        bool   `long:"tcp" description:"Listen on TCP instead of UDP"`
	Echo       bool   `long:"echo" description:"Write received payloads to stdout"`
}

func (self RecvConfig) Apply(log *slog.Logger) (*Recv, error) {
	return NewRecv(self, log)
}

type RecvStats struct {
	Time     time.Time     // stats were reset
	Duration time.Duration // stats were collected

	Packets uint // total received, including invalid
	Bytes   uint
	Count   uint // in-sequence payloads
	Skips   uint // out-of-sequence payloads
	Invalid uint // payloads that failed to unpack
}

func (self RecvStats) StatsType() string {
	return "dashes_recv"
}

func (self RecvStats) StatsInstance() string {
	return ""
}

func (self RecvStats) StatsTime() time.Time {
	return self.Time
}

// proportion of valid payloads received out of sequence
func (self RecvStats) SkipRatio() float64 {
	if self.Count+self.Skips == 0 {
		return 0
	}
	return float64(self.Skips) / float64(self.Count+self.Skips)
}

func (self RecvStats) StatsFields() map[string]interface{} {
	return map[string]interface{}{
		"packets":    self.Packets,
		"bytes":      self.Bytes,
		"count":      self.Count,
		"skips":      self.Skips,
		"invalid":    self.Invalid,
		"skip_ratio": self.SkipRatio(),
	}
}

func (self RecvStats) String() string {
	return fmt.Sprintf("%5.2f: recv %6d packets %8d bytes @ %6d skips %6d invalid = %6.2f%% skip",
		self.Duration.Seconds(),
		self.Packets, self.Bytes,
		self.Skips, self.Invalid,
		self.SkipRatio()*100,
	)
}

// Receive payloads and track the sequence from each source.
type Recv struct {
	config RecvConfig
	log    *slog.Logger
	clock  clockwork.Clock
	echo   io.Writer

	sockRecv SockRecv

	// most recent valid payload per source address
	sources map[string]Payload

	statsWriter *stats.Writer
	stats       RecvStats
}

func NewRecv(config RecvConfig, log *slog.Logger) (*Recv, error) {
	recv := &Recv{
		log:     log.With("component", "recv"),
		clock:   clockwork.NewRealClock(),
		sources: make(map[string]Payload),
	}

	if err := recv.apply(config); err != nil {
		return nil, err
	}

	recv.stats.Time = recv.clock.Now()

	return recv, nil
}

func (self *Recv) apply(config RecvConfig) error {
	if config.TCP {
		sockTCP := &SockTCP{}

		if err := sockTCP.initListen(config.ListenAddr); err != nil {
			return err
		}

		self.sockRecv = sockTCP
	} else {
		sockUDP := &SockUDP{}

		if err := sockUDP.initListen(config.ListenAddr); err != nil {
			return err
		}

		self.sockRecv = sockUDP
	}

	if config.Echo {
		self.echo = os.Stdout
	}

	self.config = config

	return nil
}

func (self *Recv) String() string {
	return self.sockRecv.String()
}

// Bound listen address
func (self *Recv) Addr() net.Addr {
	return self.sockRecv.Addr()
}

func (self *Recv) SetClock(clock clockwork.Clock) {
	self.clock = clock
	self.stats.Time = clock.Now()
}

func (self *Recv) SetEcho(echo io.Writer) {
	self.echo = echo
}

func (self *Recv) StatsWriter(statsWriter *stats.Writer) error {
	self.statsWriter = statsWriter

	return nil
}

// Current stats, since the last reset
func (self *Recv) Stats() RecvStats {
	stats := self.stats
	stats.Duration = self.clock.Since(stats.Time)

	return stats
}

func (self *Recv) takeStats() RecvStats {
	stats := self.Stats()

	self.stats = RecvStats{
		Time: self.clock.Now(),
	}

	return stats
}

func (self *Recv) handlePacket(packet Packet) error {
	transport := self.sockRecv.Transport()
	source := packet.Src.String()

	self.stats.Packets++
	self.stats.Bytes += packet.Size

	RecvPacketsTotal.WithLabelValues(transport).Inc()
	RecvBytesTotal.WithLabelValues(transport).Add(float64(packet.Size))

	if packet.Error != nil {
		self.log.Warn("invalid payload", "source", source, "size", packet.Size, "error", packet.Error)

		self.stats.Invalid++
		RecvInvalidTotal.WithLabelValues(transport).Inc()

		return nil
	}

	if last, exists := self.sources[source]; !exists {
		self.log.Info("start", "source", source, "dashes", packet.Payload)

		self.stats.Count++
	} else if expected := last.Next(); packet.Payload == expected {
		self.stats.Count++
	} else {
		self.log.Debug("skip", "source", source, "dashes", packet.Payload, "expected", expected)

		self.stats.Skips++
		RecvSkipsTotal.WithLabelValues(transport).Inc()
	}

	self.sources[source] = packet.Payload

	if self.echo == nil {
		return nil
	} else if _, err := self.echo.Write(packet.Payload.Pack()); err != nil {
		return fmt.Errorf("Echo: %w", err)
	}

	return nil
}

// Recv blocks for the next packet, and updates stats.
//
// Fails if the socket fails, or the echo write fails.
func (self *Recv) Recv() (Packet, error) {
	packet, err := self.sockRecv.recv()
	if err != nil {
		return packet, err
	}

	if err := self.handlePacket(packet); err != nil {
		return packet, err
	}

	return packet, nil
}

// Run receives until the socket fails or is closed.
func (self *Recv) Run() error {
	for {
		if _, err := self.Recv(); err != nil {
			self.log.Debug("done", "sock", self.sockRecv.getStats(), "error", err)

			return err
		}

		if self.statsWriter != nil && self.clock.Since(self.stats.Time) >= self.statsWriter.Interval {
			self.statsWriter.WriteStats(self.takeStats())
		}
	}
}

func (self *Recv) Close() error {
	return self.sockRecv.Close()
}
