// trs80_keyboard.go - Model I keyboard matrix fed from host bytes

package main

import "sync"

// Host keys are held down for a stretch of T-states and then released for
// another stretch before the next queued key is pressed.
const (
	trs80KeyHold    = 40000
	trs80KeyRelease = 40000
	// A held key is released without having been seen by a scan loop once
	// this many extra T-states have passed.
	trs80KeyMaxStretch = 400000
	trs80KeyQueueMax   = 4096
)

const (
	trs80RowEnter = 6
	trs80RowShift = 7
)

type trs80Key struct {
	row   byte
	bit   byte
	shift bool
}

type trs80KeyPhase int

const (
	keyIdle trs80KeyPhase = iota
	keyDown
	keyUp
)

var trs80KeyMap = map[byte]trs80Key{}

func init() {
	put := func(ch byte, row, bit byte, shift bool) {
		trs80KeyMap[ch] = trs80Key{row: row, bit: bit, shift: shift}
	}
	for i, ch := range "@ABCDEFGHIJKLMNOPQRSTUVWXYZ" {
		row, bit := byte(i/8), byte(i%8)
		put(byte(ch), row, bit, false)
		if ch >= 'A' {
			put(byte(ch)+0x20, row, bit, false)
		}
	}
	for i, ch := range "01234567" {
		put(byte(ch), 4, byte(i), false)
	}
	for i, ch := range "89:;,-./" {
		put(byte(ch), 5, byte(i), false)
	}
	for i, ch := range " !\"#$%&'()" {
		if ch == ' ' {
			continue
		}
		put(byte(ch), 4+byte(i)/8, byte(i%8), true)
	}
	put('*', 5, 2, true)
	put('+', 5, 3, true)
	put('<', 5, 4, true)
	put('=', 5, 5, true)
	put('>', 5, 6, true)
	put('?', 5, 7, true)

	put('\n', trs80RowEnter, 0, false)
	put('\r', trs80RowEnter, 0, false)
	put(0x0C, trs80RowEnter, 1, false) // CLEAR
	put(0x1B, trs80RowEnter, 2, false) // BREAK
	put(0x08, trs80RowEnter, 5, false) // left arrow
	put(' ', trs80RowEnter, 7, false)
}

// TRS80Keyboard turns queued host bytes into matrix presses. Enqueue is safe
// to call from any goroutine; Read runs on the CPU goroutine.
type TRS80Keyboard struct {
	mu    sync.Mutex
	queue []byte

	phase   trs80KeyPhase
	key     trs80Key
	until   uint64
	scanned bool

	now func() uint64
	// peekOpcode reads the byte at the CPU's PC through the memory map.
	peekOpcode func() byte
	inPeek     bool
}

func NewTRS80Keyboard() *TRS80Keyboard {
	return &TRS80Keyboard{now: func() uint64 { return 0 }}
}

// Attach wires the keyboard to the clock and to the opcode peek used to spot
// scan loops.
func (k *TRS80Keyboard) Attach(now func() uint64, peekOpcode func() byte) {
	k.now = now
	k.peekOpcode = peekOpcode
}

// Enqueue queues host bytes. Bytes with no key on the Model I are dropped.
func (k *TRS80Keyboard) Enqueue(data ...byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, b := range data {
		if _, ok := trs80KeyMap[b]; !ok {
			continue
		}
		if len(k.queue) >= trs80KeyQueueMax {
			return
		}
		k.queue = append(k.queue, b)
	}
}

func (k *TRS80Keyboard) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := len(k.queue)
	if k.phase == keyDown {
		n++
	}
	return n
}

// isScanOpcode reports whether op tests the value just read from the
// matrix, which marks the read as part of a keyboard scan.
func isScanOpcode(op byte) bool {
	switch op {
	case 0xA7, 0xB7, 0xE6, 0xFE, 0xA1, 0x5F, 0x4F, 0x57:
		return true
	}
	return false
}

func (k *TRS80Keyboard) Read(addr uint16) byte {
	// The peek goes back through the memory map and can land here again.
	if k.inPeek {
		return 0
	}
	scan := false
	if k.peekOpcode != nil {
		k.inPeek = true
		scan = isScanOpcode(k.peekOpcode())
		k.inPeek = false
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.advance(k.now())
	if k.phase != keyDown {
		return 0
	}
	value := k.matrix(byte(addr))
	if scan && value != 0 {
		k.scanned = true
	}
	return value
}

func (k *TRS80Keyboard) matrix(rows byte) byte {
	var value byte
	for row := byte(0); row < 8; row++ {
		if rows&(1<<row) == 0 {
			continue
		}
		if k.key.row == row {
			value |= 1 << k.key.bit
		}
		if row == trs80RowShift && k.key.shift {
			value |= 1
		}
	}
	return value
}

func (k *TRS80Keyboard) advance(now uint64) {
	for {
		switch k.phase {
		case keyIdle:
			if len(k.queue) == 0 {
				return
			}
			k.key = trs80KeyMap[k.queue[0]]
			k.queue = k.queue[1:]
			k.phase = keyDown
			k.until = now + trs80KeyHold
			k.scanned = false
			return
		case keyDown:
			if now < k.until {
				return
			}
			if !k.scanned && now < k.until+trs80KeyMaxStretch {
				return
			}
			k.phase = keyUp
			k.until = now + trs80KeyRelease
			return
		case keyUp:
			if now < k.until {
				return
			}
			k.phase = keyIdle
		}
	}
}

// Peek returns the matrix state for addr without advancing the key timing.
func (k *TRS80Keyboard) Peek(addr uint16) byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.phase != keyDown {
		return 0
	}
	return k.matrix(byte(addr))
}
