// Package controller implements the controller port (SIO): the pad's
// idle/transfer handshake and the TX/RX/status/mode/control register
// window the CPU drives it through.
package controller

import (
	"github.com/gopsx/pstation/addr"
	"github.com/gopsx/pstation/irq"
)

// Button bit positions within the digital pad's 16-bit report, low
// byte first (SELECT, START, D-pad), then high byte (L2/R2/L1/R1 and
// the face buttons).
const (
	ButtonSelect uint = iota
	_
	_
	ButtonStart
	ButtonUp
	ButtonRight
	ButtonDown
	ButtonLeft
	ButtonL2
	ButtonR2
	ButtonL1
	ButtonR1
	ButtonTriangle
	ButtonCircle
	ButtonCross
	ButtonSquare
)

type padState int

const (
	padIdle padState = iota
	padTransfer
)

// Pad models a digital controller: controller-type ID and a 16-bit
// button bitmap where a set bit means the button is released.
type Pad struct {
	state   padState
	fifo    []byte
	typ     uint16
	buttons uint16
}

// NewPad returns a digital pad with every button released.
func NewPad() *Pad {
	return &Pad{typ: 0x5A41, buttons: 0xFFFF}
}

// SetButton updates the released/pressed state of one button bit.
func (p *Pad) SetButton(bit uint, pressed bool) {
	if pressed {
		p.buttons &^= 1 << bit
	} else {
		p.buttons |= 1 << bit
	}
}

// Exchange runs one byte of the two-state pad protocol: Idle accepts
// only 0x01 to start a transfer; Transfer loads the response FIFO on
// 0x42 and drains it one byte per call until empty.
func (p *Pad) Exchange(b byte) (response byte, ack bool) {
	switch p.state {
	case padIdle:
		if b == 0x01 {
			p.state = padTransfer
			return 0xFF, true
		}
		return 0xFF, false
	case padTransfer:
		if len(p.fifo) == 0 {
			if b == 0x42 {
				p.fifo = []byte{byte(p.typ), byte(p.typ >> 8), byte(p.buttons), byte(p.buttons >> 8)}
			} else {
				p.state = padIdle
				return 0xFF, false
			}
		}
		resp := p.fifo[0]
		p.fifo = p.fifo[1:]
		if len(p.fifo) == 0 {
			p.state = padIdle
		}
		return resp, true
	}
	return 0xFF, false
}

// ackDelayCycles is the countdown before a generated ACK raises the
// CONTROLLER interrupt, an approximation of the hardware's ACK pulse
// width.
const ackDelayCycles = 100

// Port is the SIO register window the CPU drives the pad through.
type Port struct {
	pad *Pad

	mode uint16
	ctrl uint16
	baud uint16

	rxByte byte
	rxFull bool

	ackCounter int
	irqc       *irq.Controller
}

// New wires the port to its interrupt controller and a fresh digital
// pad.
func New(irqc *irq.Controller) *Port {
	return &Port{pad: NewPad(), irqc: irqc}
}

// Pad returns the attached pad, for button-state injection by a
// frontend.
func (p *Port) Pad() *Pad { return p.pad }

// Read dispatches an I/O read within the pad register window.
func (p *Port) Read(offset uint32) uint32 {
	switch offset {
	case addr.JoyData:
		if !p.rxFull {
			return 0xFFFFFFFF
		}
		return uint32(p.rxByte)
	case addr.JoyStat:
		return p.status()
	case addr.JoyMode:
		return uint32(p.mode)
	case addr.JoyCtrl:
		return uint32(p.ctrl)
	case addr.JoyBaud:
		return uint32(p.baud)
	default:
		return 0
	}
}

// status assembles JOY_STAT: TX-ready flags (always ready, since no
// transfer-duration buffering is modeled), RX-has-data, and the ACK
// input level while a generated ACK's countdown is still running.
func (p *Port) status() uint32 {
	var s uint32
	s |= 1 << 0 // TX FIFO not full
	s |= 1 << 2 // TX finished
	if p.rxFull {
		s |= 1 << 1
	}
	if p.ackCounter > 0 {
		s |= 1 << 7
	}
	return s
}

// Write dispatches an I/O write within the pad register window.
// Writing JOY_DATA drives one byte through the attached pad's
// exchange protocol.
func (p *Port) Write(offset uint32, value uint32) {
	switch offset {
	case addr.JoyData:
		resp, ack := p.pad.Exchange(byte(value))
		p.rxByte = resp
		p.rxFull = true
		if ack {
			p.ackCounter = ackDelayCycles
		}
	case addr.JoyMode:
		p.mode = uint16(value)
	case addr.JoyCtrl:
		p.ctrl = uint16(value)
		if value&(1<<6) != 0 { // reset
			p.pad = NewPad()
			p.ackCounter = 0
			p.rxFull = false
		}
	case addr.JoyBaud:
		p.baud = uint16(value)
	}
}

// Tick advances the ACK countdown; on elapsing, it raises the
// CONTROLLER interrupt and drops the ACK input level.
func (p *Port) Tick(cycles int) {
	if p.ackCounter <= 0 {
		return
	}
	p.ackCounter -= cycles
	if p.ackCounter <= 0 {
		p.ackCounter = 0
		p.irqc.Trigger(addr.IRQControllerMemCard)
	}
}
