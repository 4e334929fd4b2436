package vm

import (
	"fmt"
	"io"
	"os"
)

// Machine is a single Universal Machine instance: eight general-purpose
// registers, a program counter into segment 0, and a segment table. A
// Machine is owned by exactly one goroutine for its entire lifetime and
// owns every segment it allocates.
type Machine struct {
	registers [8]uint32
	pc        uint32
	table     *Table
	io        *ioDevice
	running   bool
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithStdio overrides the default os.Stdin/os.Stdout streams.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(m *Machine) {
		m.io = newIODevice(in, out)
	}
}

// New builds a Machine whose program segment is program, with zeroed
// registers and PC 0.
func New(program Segment, opts ...Option) *Machine {
	m := &Machine{
		table: NewTable(program),
		io:    newIODevice(os.Stdin, os.Stdout),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes instructions from segment 0 starting at PC 0 until a halt
// opcode or a trap. It returns nil on a clean halt, or a *Trap / I/O error
// otherwise.
func (m *Machine) Run() error {
	if f, ok := m.io.terminalFile(); ok {
		m.io.enableRawMode(f)
		defer m.io.disableRawMode()
	}

	m.running = true
	for m.running {
		if err := m.step(); err != nil {
			return err
		}
	}
	return nil
}

// step fetches, decodes, and dispatches exactly one instruction.
func (m *Machine) step() error {
	word, err := m.table.Read(0, m.pc)
	if err != nil {
		return m.trap(err, ReasonBadOffset)
	}

	ins := decode(word)

	if ins.op == OpLoadValue {
		dest := loadValueDest(word)
		m.execLoadValue(dest, ins.immediate)
		m.pc++
		return nil
	}

	if int(ins.op) >= numOpcodes {
		return m.trapf(ReasonBadOpcode, ins.op, "opcode %d", ins.op)
	}

	switch ins.op {
	case OpConditionalMove:
		m.execConditionalMove(ins.a, ins.b, ins.c)
	case OpSegmentedLoad:
		if err := m.execSegmentedLoad(ins.a, ins.b, ins.c); err != nil {
			return m.wrap(err, ins.op)
		}
	case OpSegmentedStore:
		if err := m.execSegmentedStore(ins.a, ins.b, ins.c); err != nil {
			return m.wrap(err, ins.op)
		}
	case OpAdd:
		m.execAdd(ins.a, ins.b, ins.c)
	case OpMultiply:
		m.execMultiply(ins.a, ins.b, ins.c)
	case OpDivide:
		if err := m.execDivide(ins.a, ins.b, ins.c); err != nil {
			return m.wrap(err, ins.op)
		}
	case OpNand:
		m.execNand(ins.a, ins.b, ins.c)
	case OpHalt:
		m.running = false
		return nil
	case OpMapSegment:
		if err := m.execMapSegment(ins.b, ins.c); err != nil {
			return m.wrap(err, ins.op)
		}
	case OpUnmapSegment:
		if err := m.execUnmapSegment(ins.c); err != nil {
			return m.wrap(err, ins.op)
		}
	case OpOutput:
		if err := m.execOutput(ins.c); err != nil {
			return m.wrap(err, ins.op)
		}
	case OpInput:
		if err := m.execInput(ins.c); err != nil {
			return m.wrap(err, ins.op)
		}
	case OpLoadProgram:
		if err := m.execLoadProgram(ins.b, ins.c); err != nil {
			return m.wrap(err, ins.op)
		}
		// execLoadProgram already redirected PC; do not increment it again.
		return nil
	}

	m.pc++
	return nil
}

// wrap attaches PC/opcode context to an error surfaced by a handler,
// turning a bare segment-table error into a fully contextualized Trap.
func (m *Machine) wrap(err error, op Opcode) error {
	if tr, ok := err.(*Trap); ok {
		tr.PC = m.pc
		tr.Op = op
		return tr
	}
	return m.trap(err, ReasonIO)
}

func (m *Machine) trap(err error, reason Reason) error {
	return &Trap{Reason: reason, PC: m.pc, Err: err}
}

func (m *Machine) trapf(reason Reason, op Opcode, format string, args ...any) error {
	return &Trap{Reason: reason, PC: m.pc, Op: op, Detail: fmt.Sprintf(format, args...)}
}
