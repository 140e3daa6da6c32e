package dashes

// net.TCPConn based socket. Sends one payload per write, receives newline-delimited payloads

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
)

type SockTCP struct {
	tcpAddr     *net.TCPAddr
	tcpConn     *net.TCPConn
	tcpListener *net.TCPListener

	// guards tcpConn and closed against a concurrent Close
	mu     sync.Mutex
	closed bool

	// current accepted connection
	reader *bufio.Reader

	stats SockStats
}

func (self *SockTCP) String() string {
	return fmt.Sprintf("tcp://%v", self.tcpAddr)
}

func (self *SockTCP) Transport() string {
	return "tcp"
}

// Connect to addr before any payloads are sent
func (self *SockTCP) initDial(addr string, ttl uint8) error {
	if tcpAddr, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return fmt.Errorf("Resolve TCP %v: %w", addr, err)
	} else if tcpConn, err := net.DialTCP("tcp", nil, tcpAddr); err != nil {
		return fmt.Errorf("Dial TCP %v: %w", tcpAddr, err)
	} else {
		self.tcpAddr = tcpAddr
		self.tcpConn = tcpConn
	}

	if err := setTTL(self.tcpConn, self.tcpAddr.IP, ttl); err != nil {
		self.tcpConn.Close()
		return err
	}

	return nil
}

func (self *SockTCP) initListen(addr string) error {
	if tcpAddr, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return fmt.Errorf("Resolve TCP %v: %w", addr, err)
	} else if tcpListener, err := net.ListenTCP("tcp", tcpAddr); err != nil {
		return fmt.Errorf("Listen TCP %v: %w", tcpAddr, err)
	} else {
		self.tcpAddr = tcpListener.Addr().(*net.TCPAddr)
		self.tcpListener = tcpListener
	}

	return nil
}

func (self *SockTCP) Addr() net.Addr {
	return self.tcpAddr
}

func (self *SockTCP) getStats() SockStats {
	return self.stats
}

func (self *SockTCP) send(payload Payload) error {
	buf := payload.Pack()

	if sendSize, err := self.tcpConn.Write(buf); err != nil {
		return fmt.Errorf("Send TCP %v: %w", self.tcpAddr, err)
	} else {
		self.stats.Packets++
		self.stats.Bytes += uint(sendSize)
	}

	return nil
}

// accept the next connection, closing any previous one
func (self *SockTCP) accept() error {
	self.mu.Lock()
	if self.tcpConn != nil {
		self.tcpConn.Close()
		self.tcpConn = nil
		self.reader = nil
	}
	self.mu.Unlock()

	tcpConn, err := self.tcpListener.AcceptTCP()
	if err != nil {
		return fmt.Errorf("Accept TCP %v: %w", self.tcpAddr, err)
	}

	self.mu.Lock()
	defer self.mu.Unlock()

	if self.closed {
		tcpConn.Close()

		return fmt.Errorf("Accept TCP %v: %w", self.tcpAddr, net.ErrClosed)
	}

	self.tcpConn = tcpConn
	self.reader = bufio.NewReaderSize(tcpConn, PACKET_MTU)

	return nil
}

// Read one line from the current connection, accepting a new connection once the previous one is closed.
func (self *SockTCP) recv() (Packet, error) {
	var packet Packet

	for {
		if self.reader == nil {
			if err := self.accept(); err != nil {
				return packet, err
			}
		}

		line, err := self.reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			// report the oversized line as invalid, and discard the rest of it
			size := uint(len(line))

			for errors.Is(err, bufio.ErrBufferFull) {
				line, err = self.reader.ReadSlice('\n')
				size += uint(len(line))
			}
			if err != nil {
				self.reader = nil
				continue
			}

			self.stats.Packets++
			self.stats.Bytes += size

			packet.Src = self.tcpConn.RemoteAddr()
			packet.Size = size
			packet.Error = fmt.Errorf("Long payload: %d bytes", size)

			return packet, nil
		} else if err != nil {
			// io.EOF or a broken connection; a trailing partial line is dropped
			self.reader = nil
			continue
		}

		self.stats.Packets++
		self.stats.Bytes += uint(len(line))

		packet.Src = self.tcpConn.RemoteAddr()
		packet.Size = uint(len(line))
		packet.Error = packet.Payload.Unpack(line)

		return packet, nil
	}
}

// Close may be called concurrently with recv, which then fails.
func (self *SockTCP) Close() error {
	var err error

	self.mu.Lock()
	defer self.mu.Unlock()

	self.closed = true

	if self.tcpConn != nil {
		err = self.tcpConn.Close()
	}
	if self.tcpListener != nil {
		if closeErr := self.tcpListener.Close(); closeErr != nil {
			err = closeErr
		}
	}

	return err
}
