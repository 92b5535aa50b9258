package main

import "golang.org/x/mobile/event/key"

// The keypad is mapped onto the left-hand block of the keyboard:
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	y x c v        A 0 B F
//
// Both frontends use the same layout. Escape quits.

var keypadRunes = map[rune]byte{
	'x': 0x0, '1': 0x1, '2': 0x2, '3': 0x3,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'a': 0x7,
	's': 0x8, 'd': 0x9, 'y': 0xa, 'c': 0xb,
	'4': 0xc, 'r': 0xd, 'f': 0xe, 'v': 0xf,
}

var keypadCodes = map[key.Code]byte{
	key.CodeX: 0x0, key.Code1: 0x1, key.Code2: 0x2, key.Code3: 0x3,
	key.CodeQ: 0x4, key.CodeW: 0x5, key.CodeE: 0x6, key.CodeA: 0x7,
	key.CodeS: 0x8, key.CodeD: 0x9, key.CodeY: 0xa, key.CodeC: 0xb,
	key.Code4: 0xc, key.CodeR: 0xd, key.CodeF: 0xe, key.CodeV: 0xf,
}

// keypadRune maps a typed rune to its keypad key, folding case.
func keypadRune(r rune) (byte, bool) {
	if 'A' <= r && r <= 'Z' {
		r += 'a' - 'A'
	}
	k, ok := keypadRunes[r]
	return k, ok
}
