package vm

// The fourteen opcode handlers. Each takes already-decoded register
// indices; arithmetic wraps modulo 2^32 via Go's native uint32 overflow,
// which is exactly the wraparound semantics these operations require.

// execConditionalMove: if R[C] != 0 then R[A] <- R[B].
func (m *Machine) execConditionalMove(a, b, c uint32) {
	if m.registers[c] != 0 {
		m.registers[a] = m.registers[b]
	}
}

// execSegmentedLoad: R[A] <- segment[R[B]][R[C]].
func (m *Machine) execSegmentedLoad(a, b, c uint32) error {
	w, err := m.table.Read(m.registers[b], m.registers[c])
	if err != nil {
		return err
	}
	m.registers[a] = w
	return nil
}

// execSegmentedStore: segment[R[A]][R[B]] <- R[C].
func (m *Machine) execSegmentedStore(a, b, c uint32) error {
	return m.table.Write(m.registers[a], m.registers[b], m.registers[c])
}

// execAdd: R[A] <- (R[B] + R[C]) mod 2^32.
func (m *Machine) execAdd(a, b, c uint32) {
	m.registers[a] = m.registers[b] + m.registers[c]
}

// execMultiply: R[A] <- (R[B] * R[C]) mod 2^32.
func (m *Machine) execMultiply(a, b, c uint32) {
	m.registers[a] = m.registers[b] * m.registers[c]
}

// execDivide: R[A] <- floor(R[B] / R[C]); traps when R[C] == 0.
func (m *Machine) execDivide(a, b, c uint32) error {
	if m.registers[c] == 0 {
		return &Trap{Reason: ReasonDivideByZero}
	}
	m.registers[a] = m.registers[b] / m.registers[c]
	return nil
}

// execNand: R[A] <- NOT (R[B] AND R[C]).
func (m *Machine) execNand(a, b, c uint32) {
	m.registers[a] = ^(m.registers[b] & m.registers[c])
}

// execMapSegment: R[B] <- allocate(R[C]).
func (m *Machine) execMapSegment(b, c uint32) error {
	id, err := m.table.Allocate(m.registers[c])
	if err != nil {
		return err
	}
	m.registers[b] = id
	return nil
}

// execUnmapSegment: free(R[C]).
func (m *Machine) execUnmapSegment(c uint32) error {
	return m.table.Free(m.registers[c])
}

// execOutput: emit the low byte of R[C]; traps if the value exceeds 255.
func (m *Machine) execOutput(c uint32) error {
	v := m.registers[c]
	if v > 255 {
		return &Trap{Reason: ReasonOutputRange}
	}
	if err := m.io.writeByte(byte(v)); err != nil {
		return &Trap{Reason: ReasonIO, Err: err}
	}
	return nil
}

// execInput: R[C] <- next input byte, or the all-ones sentinel on EOF.
func (m *Machine) execInput(c uint32) error {
	b, ok, err := m.io.readByte()
	if err != nil {
		return &Trap{Reason: ReasonIO, Err: err}
	}
	if !ok {
		m.registers[c] = 0xFFFFFFFF
		return nil
	}
	m.registers[c] = uint32(b)
	return nil
}

// execLoadProgram: if R[B] != 0, replace segment 0 with a deep copy of
// segment R[B]; then redirect PC to R[C]. The PC redirect happens
// unconditionally, even when R[B] is 0 and segment 0 is left untouched.
func (m *Machine) execLoadProgram(b, c uint32) error {
	if err := m.table.ReplaceZero(m.registers[b]); err != nil {
		return err
	}
	m.pc = m.registers[c]
	return nil
}

// execLoadValue: R[A] <- the 25-bit immediate.
func (m *Machine) execLoadValue(a, value uint32) {
	m.registers[a] = value
}
