package chip8

import "testing"

func TestStack(t *testing.T) {
	var s Stack
	s.push(0x202)
	s.push(0x456)
	if g := s.String(); g != "( 0202 0456 )" {
		t.Errorf("String() = %q", g)
	}
	if g := s.pop(); g != 0x456 {
		t.Errorf("pop() = %.4x, want 0456", g)
	}
	if g := s.pop(); g != 0x202 {
		t.Errorf("pop() = %.4x, want 0202", g)
	}
	if g := s.String(); g != "( )" {
		t.Errorf("String() of an empty stack = %q", g)
	}
}
