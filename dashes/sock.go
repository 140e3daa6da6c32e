package dashes

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const PACKET_MTU = 1500

// largest UDP datagram
const DATAGRAM_MAX = 64 * 1024

type SockStats struct {
	Packets uint
	Bytes   uint // only includes Payload
}

type SockSend interface {
	String() string
	Transport() string
	getStats() SockStats
	send(payload Payload) error
	Close() error
}

type SockRecv interface {
	String() string
	Transport() string
	Addr() net.Addr
	getStats() SockStats
	recv() (Packet, error)
	Close() error
}

// A received payload, or the raw bytes if it failed to unpack.
type Packet struct {
	Src     net.Addr
	Size    uint
	Payload Payload
	Error   error
}

// set the unicast TTL or hop limit on the socket
func setTTL(conn net.Conn, ip net.IP, ttl uint8) error {
	if ttl == 0 {
		return nil
	}

	if ip.To4() != nil {
		if err := ipv4.NewConn(conn).SetTTL(int(ttl)); err != nil {
			return fmt.Errorf("SetTTL %v: %w", ttl, err)
		}
	} else if err := ipv6.NewConn(conn).SetHopLimit(int(ttl)); err != nil {
		return fmt.Errorf("SetHopLimit %v: %w", ttl, err)
	}

	return nil
}

// udp4/udp6 or tcp4/tcp6 for the given address family
func familyNetwork(network string, ip net.IP) string {
	if ip == nil {
		return network
	} else if ip.To4() != nil {
		return network + "4"
	} else {
		return network + "6"
	}
}
