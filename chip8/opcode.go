package chip8

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

type opcode uint16

func (op opcode) x() uint8    { return uint8((op & 0xf00) >> 8) }
func (op opcode) y() uint8    { return uint8((op & 0xf0) >> 4) }
func (op opcode) n() uint8    { return uint8(op & 0xf) }
func (op opcode) kk() uint8   { return uint8(op & 0xff) }
func (op opcode) nnn() uint16 { return uint16(op & 0xfff) }

// lookup finds the instruction of op in the retrogolib opcode table. It
// decodes the way exec does: group 0x0 on the low byte, groups 0x5 and 0x9
// on the top nibble alone.
func lookup(op opcode) (*chip8.Instruction, bool) {
	group := op >> 12
	for _, entry := range chip8.Opcodes[group] {
		mask := opcode(entry.Info.Mask)
		switch group {
		case 0x0:
			mask = 0x00ff
		case 0x5, 0x9:
			mask = 0xf000
		}
		if op&mask == opcode(entry.Info.Value)&mask {
			return entry.Instruction, true
		}
	}
	return nil, false
}

// Disassemble returns the assembly mnemonic of an instruction word, using
// the syntax of Cowgod's reference. Words that do not decode are rendered
// as a data word.
func Disassemble(word uint16) string {
	op := opcode(word)
	inst, ok := lookup(op)
	if !ok {
		return fmt.Sprintf("DW $%04X", word)
	}
	name := strings.ToUpper(inst.Name)
	if params := operands(inst.Name, op); params != "" {
		return name + " " + params
	}
	return name
}

func operands(name string, op opcode) string {
	x, y := op.x(), op.y()
	switch name {
	case chip8.ClsName, chip8.RetName:
		return ""
	case chip8.JpName:
		if op&0xf000 == 0xb000 {
			return fmt.Sprintf("V0, $%03X", op.nnn())
		}
		return fmt.Sprintf("$%03X", op.nnn())
	case chip8.CallName:
		return fmt.Sprintf("$%03X", op.nnn())
	case chip8.SeName, chip8.SneName:
		if g := op & 0xf000; g == 0x5000 || g == 0x9000 {
			return fmt.Sprintf("V%X, V%X", x, y)
		}
		return fmt.Sprintf("V%X, $%02X", x, op.kk())
	case chip8.OrName, chip8.AndName, chip8.XorName, chip8.SubName, chip8.SubnName:
		return fmt.Sprintf("V%X, V%X", x, y)
	case chip8.ShrName, chip8.ShlName, chip8.SkpName, chip8.SknpName:
		return fmt.Sprintf("V%X", x)
	case chip8.RndName:
		return fmt.Sprintf("V%X, $%02X", x, op.kk())
	case chip8.DrwName:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, op.n())
	}

	// LD and ADD share a mnemonic across several groups.
	switch op & 0xf000 {
	case 0x6000, 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, op.kk())
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xa000:
		return fmt.Sprintf("I, $%03X", op.nnn())
	case 0xf000:
		return fmt.Sprintf(miscFormats[op.kk()], x)
	}
	return ""
}

var miscFormats = map[uint8]string{
	0x07: "V%X, DT",
	0x0a: "V%X, K",
	0x15: "DT, V%X",
	0x18: "ST, V%X",
	0x1e: "I, V%X",
	0x29: "F, V%X",
	0x33: "B, V%X",
	0x55: "[I], V%X",
	0x65: "V%X, [I]",
}
