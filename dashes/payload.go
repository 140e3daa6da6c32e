package dashes

import (
	"bytes"
	"fmt"
)

// longest run of dashes in a payload
const MAX_DASHES = 16

// Payload is a run of dashes terminated by a newline.
type Payload uint

// Next returns the payload following this one in the send cycle: 1..16, then 0.
func (self Payload) Next() Payload {
	next := self + 1

	if next > MAX_DASHES {
		next = 0
	}

	return next
}

func (self Payload) Pack() []byte {
	buf := make([]byte, 0, self+1)

	buf = append(buf, bytes.Repeat([]byte{'-'}, int(self))...)
	buf = append(buf, '\n')

	return buf
}

func (self *Payload) Unpack(buf []byte) error {
	if len(buf) == 0 || buf[len(buf)-1] != '\n' {
		return fmt.Errorf("Unterminated payload: %q", buf)
	}

	dashes := buf[:len(buf)-1]

	if len(dashes) > MAX_DASHES {
		return fmt.Errorf("Long payload: %d dashes", len(dashes))
	}
	for _, b := range dashes {
		if b != '-' {
			return fmt.Errorf("Invalid payload: %q", buf)
		}
	}

	*self = Payload(len(dashes))

	return nil
}

func (self Payload) String() string {
	return fmt.Sprintf("%d", uint(self))
}

// Counter generates the payload sequence, starting from 1.
//
// The counter is incremented before being checked against MAX_DASHES, and resets to zero,
// so one empty payload follows every run of 16 dashes.
type Counter struct {
	value Payload
}

func (self *Counter) Next() Payload {
	self.value++

	if self.value > MAX_DASHES {
		self.value = 0
	}

	return self.value
}
