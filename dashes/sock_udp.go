package dashes

// net.UDPConn based socket. Supports send and recv

import (
	"fmt"
	"net"
)

type SockUDP struct {
	udpAddr *net.UDPAddr
	udpConn *net.UDPConn

	stats SockStats
}

func (self *SockUDP) String() string {
	return fmt.Sprintf("udp://%v", self.udpAddr)
}

func (self *SockUDP) Transport() string {
	return "udp"
}

// Unconnected socket sending to addr.
//
// Uses sendto semantics; ICMP errors for the destination are not reported back to the sender.
func (self *SockUDP) initSend(addr string, ttl uint8) error {
	if udpAddr, err := net.ResolveUDPAddr("udp", addr); err != nil {
		return fmt.Errorf("Resolve UDP %v: %w", addr, err)
	} else if udpConn, err := net.ListenUDP(familyNetwork("udp", udpAddr.IP), nil); err != nil {
		return fmt.Errorf("Listen UDP: %w", err)
	} else {
		self.udpAddr = udpAddr
		self.udpConn = udpConn
	}

	if err := setTTL(self.udpConn, self.udpAddr.IP, ttl); err != nil {
		self.udpConn.Close()
		return err
	}

	return nil
}

func (self *SockUDP) initListen(addr string) error {
	if udpAddr, err := net.ResolveUDPAddr("udp", addr); err != nil {
		return fmt.Errorf("Resolve UDP %v: %w", addr, err)
	} else if udpConn, err := net.ListenUDP("udp", udpAddr); err != nil {
		return fmt.Errorf("Listen UDP %v: %w", udpAddr, err)
	} else {
		self.udpAddr = udpConn.LocalAddr().(*net.UDPAddr)
		self.udpConn = udpConn
	}

	return nil
}

func (self *SockUDP) Addr() net.Addr {
	return self.udpAddr
}

func (self *SockUDP) getStats() SockStats {
	return self.stats
}

func (self *SockUDP) send(payload Payload) error {
	buf := payload.Pack()

	if sendSize, err := self.udpConn.WriteToUDP(buf, self.udpAddr); err != nil {
		return fmt.Errorf("Send UDP %v: %w", self.udpAddr, err)
	} else {
		self.stats.Packets++
		self.stats.Bytes += uint(sendSize)
	}

	return nil
}

func (self *SockUDP) recv() (Packet, error) {
	var packet Packet
	buf := make([]byte, DATAGRAM_MAX)

	recvSize, srcAddr, err := self.udpConn.ReadFromUDP(buf)
	if err != nil {
		return packet, fmt.Errorf("Recv UDP %v: %w", self.udpAddr, err)
	}

	self.stats.Packets++
	self.stats.Bytes += uint(recvSize)

	packet.Src = srcAddr
	packet.Size = uint(recvSize)
	packet.Error = packet.Payload.Unpack(buf[:recvSize])

	return packet, nil
}

func (self *SockUDP) Close() error {
	return self.udpConn.Close()
}
