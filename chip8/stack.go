package chip8

import (
	"fmt"
	"strings"
)

// Stack holds subroutine return addresses.
type Stack struct {
	Addrs [255]uint16
	Ptr   byte
}

func (s *Stack) push(addr uint16) {
	if int(s.Ptr) == len(s.Addrs) {
		panic(StackOverflow)
	}
	s.Addrs[s.Ptr] = addr
	s.Ptr++
}

// pop zeroes the vacated slot so stale addresses never linger.
func (s *Stack) pop() uint16 {
	if s.Ptr == 0 {
		panic(StackUnderflow)
	}
	s.Ptr--
	addr := s.Addrs[s.Ptr]
	s.Addrs[s.Ptr] = 0
	return addr
}

func (s Stack) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range s.Addrs[:s.Ptr] {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%.4x", v)
	}
	b.WriteByte(' ')
	b.WriteByte(')')
	return b.String()
}
