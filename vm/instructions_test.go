package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentedLoadStoreRoundTrip(t *testing.T) {
	m := New(Segment{0})
	id, err := m.table.Allocate(2)
	require.NoError(t, err)

	m.registers[1] = id
	m.registers[2] = 1
	m.registers[3] = 777
	require.NoError(t, m.execSegmentedStore(1, 2, 3))

	require.NoError(t, m.execSegmentedLoad(4, 1, 2))
	assert.Equal(t, uint32(777), m.registers[4])
}

func TestSegmentedLoadFromUnmappedTraps(t *testing.T) {
	m := New(Segment{0})
	m.registers[1] = 42
	m.registers[2] = 0
	err := m.execSegmentedLoad(0, 1, 2)
	require.Error(t, err)
	var trap *Trap
	require.ErrorAs(t, err, &trap)
	assert.Equal(t, ReasonBadSegment, trap.Reason)
}

func TestUnmapThenReadTraps(t *testing.T) {
	m := New(Segment{0})
	id, err := m.table.Allocate(1)
	require.NoError(t, err)

	m.registers[1] = id
	require.NoError(t, m.execUnmapSegment(1))

	m.registers[2] = 0
	err = m.execSegmentedLoad(0, 1, 2)
	require.Error(t, err)
}

func TestStepTrapsOnUnrecognizedOpcode(t *testing.T) {
	// Opcode 14 and 15 are outside the 14-opcode set (0-13); a stray word
	// with those top 4 bits must trap rather than silently no-op.
	seg := Segment{uint32(14) << 28}
	m := New(seg)
	err := m.step()
	require.Error(t, err)
	var trap *Trap
	require.ErrorAs(t, err, &trap)
	assert.Equal(t, ReasonBadOpcode, trap.Reason)
}

func TestStepAdvancesPCByOneForOrdinaryOps(t *testing.T) {
	seg := Segment{enc3(OpNand, 0, 0, 0), enc3(OpHalt, 0, 0, 0)}
	m := New(seg)
	require.NoError(t, m.step())
	assert.Equal(t, uint32(1), m.pc)
}

func TestStepDoesNotAdvancePCOnLoadProgram(t *testing.T) {
	m := New(Segment{0, 0, 0})
	id, err := m.table.Allocate(1)
	require.NoError(t, err)
	m.registers[1] = id
	m.registers[2] = 5
	seg0 := m.table.Segment0()
	seg0[0] = enc3(OpLoadProgram, 0, 1, 2)

	require.NoError(t, m.step())
	assert.Equal(t, uint32(5), m.pc)
}
