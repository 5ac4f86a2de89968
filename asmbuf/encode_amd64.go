//go:build amd64

/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package asmbuf

// This file hand-encodes every instruction form the matcher emitter
// needs: REX-prefixed 64-bit GPR moves, memory operands with an
// optional SIB index register, ALU ops, bit scan/reset, push/pop, and
// relative jumps with label fixups. No assembler, no opcode tables —
// the same way jit_emit_amd64.go builds up the memcp JIT one byte
// sequence at a time.

// modrmRegBase emits <rex> <opcode...> <modrm> [sib] [disp] for a
// register/memory instruction addressing [base + disp], with REX.R
// carrying the "other" register field (dst or src depending on
// direction) and REX.B carrying base's high bit.
func (f *Func) modrmRegBase(rexW bool, opcode []byte, reg, base Reg, disp int32) {
	rex := byte(0x40)
	if rexW {
		rex |= 0x08
	}
	if reg >= 8 {
		rex |= 0x04
	}
	if base >= 8 {
		rex |= 0x01
	}
	regEnc := byte(reg & 7)
	baseEnc := byte(base & 7)

	if rex != 0x40 {
		f.emitByte(rex)
	}
	f.emitBytes(opcode...)

	needsSIB := baseEnc == 4 // RSP/R12 always needs a SIB byte
	switch {
	case disp == 0 && baseEnc != 5: // RBP/R13 can't use the no-disp form
		f.emitByte((regEnc << 3) | baseEnc)
		if needsSIB {
			f.emitByte(0x24) // SIB: no index, base=RSP/R12
		}
	case disp >= -128 && disp <= 127:
		f.emitByte(0x40 | (regEnc << 3) | baseEnc)
		if needsSIB {
			f.emitByte(0x24)
		}
		f.emitByte(byte(int8(disp)))
	default:
		f.emitByte(0x80 | (regEnc << 3) | baseEnc)
		if needsSIB {
			f.emitByte(0x24)
		}
		f.emitU32(uint32(disp))
	}
}

// modrmRegBaseIndex emits a memory operand of the form
// [base + index*scale + disp], used by the match drain for bucket and
// record addressing. scale must be 1, 2, 4, or 8.
func (f *Func) modrmRegBaseIndex(rexW bool, opcode []byte, reg, base, index Reg, scale byte, disp int32) {
	rex := byte(0x40)
	if rexW {
		rex |= 0x08
	}
	if reg >= 8 {
		rex |= 0x04
	}
	if index >= 8 {
		rex |= 0x02
	}
	if base >= 8 {
		rex |= 0x01
	}
	regEnc := byte(reg & 7)
	baseEnc := byte(base & 7)
	idxEnc := byte(index & 7)

	ss := byte(0)
	switch scale {
	case 1:
		ss = 0
	case 2:
		ss = 1
	case 4:
		ss = 2
	case 8:
		ss = 3
	default:
		panic("asmbuf: invalid SIB scale")
	}
	sib := (ss << 6) | (idxEnc << 3) | baseEnc

	if rex != 0x40 {
		f.emitByte(rex)
	}
	f.emitBytes(opcode...)

	switch {
	case disp == 0 && baseEnc != 5:
		f.emitBytes((regEnc<<3)|0x04, sib)
	case disp >= -128 && disp <= 127:
		f.emitBytes(0x40|(regEnc<<3)|0x04, sib, byte(int8(disp)))
	default:
		f.emitBytes(0x80|(regEnc<<3)|0x04, sib)
		f.emitU32(uint32(disp))
	}
}

func (f *Func) modrmRegReg(rexW bool, opcode []byte, reg, rm Reg) {
	rex := byte(0x40)
	if rexW {
		rex |= 0x08
	}
	if reg >= 8 {
		rex |= 0x04
	}
	if rm >= 8 {
		rex |= 0x01
	}
	if rex != 0x40 {
		f.emitByte(rex)
	}
	f.emitBytes(opcode...)
	f.emitByte(0xC0 | (byte(reg&7) << 3) | byte(rm&7))
}

// MovRegReg: MOV dst, src (64-bit GPR to GPR).
func (f *Func) MovRegReg(dst, src Reg) {
	if dst == src {
		return
	}
	f.modrmRegReg(true, []byte{0x89}, src, dst) // MOV r/m64, r64
}

// MovRegImm64: MOV dst, imm64.
func (f *Func) MovRegImm64(dst Reg, imm uint64) {
	rex := byte(0x48)
	if dst >= 8 {
		rex |= 0x01
	}
	f.emitBytes(rex, 0xB8|byte(dst&7))
	f.emitU64(imm)
}

// MovRegMem: MOV dst, [base+disp] (load 64-bit from memory).
func (f *Func) MovRegMem(dst, base Reg, disp int32) {
	f.modrmRegBase(true, []byte{0x8B}, dst, base, disp)
}

// MovMemReg: MOV [base+disp], src (store 64-bit to memory).
func (f *Func) MovMemReg(base Reg, disp int32, src Reg) {
	f.modrmRegBase(true, []byte{0x89}, src, base, disp)
}

// MovRegMemIndexed: MOV dst, [base+index*scale+disp].
func (f *Func) MovRegMemIndexed(dst, base, index Reg, scale byte, disp int32) {
	f.modrmRegBaseIndex(true, []byte{0x8B}, dst, base, index, scale, disp)
}

// MovMemIndexedReg: MOV [base+index*scale+disp], src.
func (f *Func) MovMemIndexedReg(base, index Reg, scale byte, disp int32, src Reg) {
	f.modrmRegBaseIndex(true, []byte{0x89}, src, base, index, scale, disp)
}

// LeaRegMem: LEA dst, [base+disp] (address computation, no memory access).
func (f *Func) LeaRegMem(dst, base Reg, disp int32) {
	f.modrmRegBase(true, []byte{0x8D}, dst, base, disp)
}

// aluRegReg emits a REX.W ALU op: <opcode> dst, src.
// opcode: 0x01 ADD, 0x29 SUB, 0x39 CMP, 0x09 OR, 0x21 AND, 0x31 XOR, 0x85 TEST(r/m,r)
func (f *Func) aluRegReg(opcode byte, dst, src Reg) {
	f.modrmRegReg(true, []byte{opcode}, src, dst)
}

func (f *Func) AddRegReg(dst, src Reg) { f.aluRegReg(0x01, dst, src) }
func (f *Func) SubRegReg(dst, src Reg) { f.aluRegReg(0x29, dst, src) }
func (f *Func) CmpRegReg(a, b Reg)     { f.aluRegReg(0x39, a, b) }
func (f *Func) OrRegReg(dst, src Reg)  { f.aluRegReg(0x09, dst, src) }
func (f *Func) TestRegReg(a, b Reg)    { f.aluRegReg(0x85, a, b) }
func (f *Func) XorRegReg(dst, src Reg) { f.aluRegReg(0x31, dst, src) }

// CmpRegMem: CMP reg, [base+disp] (register against a memory/spill operand).
func (f *Func) CmpRegMem(reg, base Reg, disp int32) {
	f.modrmRegBase(true, []byte{0x3B}, reg, base, disp) // CMP r64, r/m64
}

// AndRegReg: AND dst, src.
func (f *Func) AndRegReg(dst, src Reg) { f.aluRegReg(0x21, dst, src) }

// NotReg: NOT dst (one's complement in place) — F7 /2.
func (f *Func) NotReg(dst Reg) {
	rex := byte(0x48)
	if dst >= 8 {
		rex |= 0x01
	}
	modrm := 0xC0 | (2 << 3) | byte(dst&7)
	f.emitBytes(rex, 0xF7, modrm)
}

// aluRegImm32 emits a REX.W group-1 ALU immediate op against a register:
// <rex> 81 /n imm32. n selects the operation (0=ADD,4=AND,5=SUB,7=CMP).
func (f *Func) aluRegImm32(n byte, dst Reg, imm int32) {
	rex := byte(0x48)
	if dst >= 8 {
		rex |= 0x01
	}
	modrm := 0xC0 | (n << 3) | byte(dst&7)
	f.emitBytes(rex, 0x81, modrm)
	f.emitU32(uint32(imm))
}

func (f *Func) AddRegImm32(dst Reg, imm int32) { f.aluRegImm32(0, dst, imm) }
func (f *Func) AndRegImm32(dst Reg, imm int32) { f.aluRegImm32(4, dst, imm) }
func (f *Func) CmpRegImm32(dst Reg, imm int32) { f.aluRegImm32(7, dst, imm) }

// IncMem/DecMem: INC/DEC qword [base+disp] (FF /0, FF /1), modifying
// memory directly without a load/modify/store round-trip through a
// register.
func (f *Func) incDecMem(slot byte, base Reg, disp int32) {
	f.modrmRegBase(true, []byte{0xFF}, Reg(slot), base, disp)
}

func (f *Func) IncMem(base Reg, disp int32) { f.incDecMem(0, base, disp) }
func (f *Func) DecMem(base Reg, disp int32) { f.incDecMem(1, base, disp) }

// Push/Pop a 64-bit GPR.
func (f *Func) Push(r Reg) {
	if r >= 8 {
		f.emitByte(0x41)
	}
	f.emitByte(0x50 | byte(r&7))
}

func (f *Func) Pop(r Reg) {
	if r >= 8 {
		f.emitByte(0x41)
	}
	f.emitByte(0x58 | byte(r&7))
}

// Bsf: BSF dst, src — index of the lowest set bit of src into dst,
// with ZF set when src is zero (the TODO-free way to ask "any bits
// left?" and "which one?" in a single instruction).
func (f *Func) Bsf(dst, src Reg) {
	f.modrmRegReg(true, []byte{0x0F, 0xBC}, dst, src)
}

// Btr: BTR dst, src — test and reset the bit in dst numbered by src,
// leaving CF as the bit's prior value (unused here; only the write
// side-effect matters for the drain).
func (f *Func) Btr(dst, src Reg) {
	f.modrmRegReg(true, []byte{0x0F, 0xB3}, src, dst)
}

// ShlRegImm8/ShrRegImm8: SHL/SHR r64, imm8.
func (f *Func) shiftRegImm8(slot byte, dst Reg, imm uint8) {
	rex := byte(0x48)
	if dst >= 8 {
		rex |= 0x01
	}
	modrm := 0xC0 | (slot << 3) | byte(dst&7)
	f.emitBytes(rex, 0xC1, modrm, imm)
}

func (f *Func) ShlRegImm8(dst Reg, imm uint8) { f.shiftRegImm8(4, dst, imm) }
func (f *Func) ShrRegImm8(dst Reg, imm uint8) { f.shiftRegImm8(5, dst, imm) }

// Setcc: SETcc r/m8 then MOVZX into the full 64-bit register.
func (f *Func) Setcc(dst Reg, cc Cc) {
	dstEnc := byte(dst & 7)
	if dst >= 8 {
		f.emitBytes(0x41, 0x0F, 0x90|byte(cc), 0xC0|dstEnc)
	} else if dst >= 4 {
		f.emitBytes(0x40, 0x0F, 0x90|byte(cc), 0xC0|dstEnc)
	} else {
		f.emitBytes(0x0F, 0x90|byte(cc), 0xC0|dstEnc)
	}
	modrm := 0xC0 | (dstEnc << 3) | dstEnc
	if dst >= 8 {
		f.emitBytes(0x45, 0x0F, 0xB6, modrm)
	} else if dst >= 4 {
		f.emitBytes(0x40, 0x0F, 0xB6, modrm)
	} else {
		f.emitBytes(0x0F, 0xB6, modrm)
	}
}

// Jcc emits a conditional near jump with a rel32 label fixup.
func (f *Func) Jcc(cc Cc, labelID int) {
	f.emitBytes(0x0F, 0x80|byte(cc))
	f.addFixup(labelID, 4, true)
	f.emitU32(0)
}

// Jmp emits an unconditional near jump with a rel32 label fixup.
func (f *Func) Jmp(labelID int) {
	f.emitByte(0xE9)
	f.addFixup(labelID, 4, true)
	f.emitU32(0)
}

// Ret emits a near return.
func (f *Func) Ret() { f.emitByte(0xC3) }

// SubRspImm8/AddRspImm8 adjust the stack pointer for the R-limit spill
// slot. Kept separate from the general ALU-immediate path because RSP
// never needs a ModRM SIB byte and the matcher only ever moves it by
// a small constant.
func (f *Func) SubRspImm8(n uint8) {
	f.emitBytes(0x48, 0x83, 0xEC, n)
}

func (f *Func) AddRspImm8(n uint8) {
	f.emitBytes(0x48, 0x83, 0xC4, n)
}
