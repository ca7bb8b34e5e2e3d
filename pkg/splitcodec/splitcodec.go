// Package splitcodec serializes a parsing-instruction program to and from
// CBOR (github.com/fxamacker/cbor/v2) for caching compiled programs across
// process restarts.
//
// Each instruction is first packed into a single uint64 — opcode in the
// low 8 bits, operand in the high 56 — a fixed-width bit-packing scheme
// that fits an opcode and its operand into one machine word.
package splitcodec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/kristofer/avail/pkg/instr"
)

const (
	opBits      = 8
	operandBits = 64 - opBits
	opMask      = 1<<opBits - 1
)

// packedInstruction is one instruction bit-packed into a single uint64.
type packedInstruction uint64

func pack(ins instr.Instruction) (packedInstruction, error) {
	if ins.Op < 0 || uint64(ins.Op) > opMask {
		return 0, fmt.Errorf("splitcodec: opcode %d does not fit in %d bits", ins.Op, opBits)
	}
	if ins.Operand < 0 {
		return 0, fmt.Errorf("splitcodec: operand %d is negative", ins.Operand)
	}
	if bitLength(uint64(ins.Operand)) > operandBits {
		return 0, fmt.Errorf("splitcodec: operand %d does not fit in %d bits", ins.Operand, operandBits)
	}
	return packedInstruction(uint64(ins.Op)&opMask | uint64(ins.Operand)<<opBits), nil
}

func unpack(p packedInstruction) instr.Instruction {
	op := instr.Opcode(uint64(p) & opMask)
	operand := int(uint64(p) >> opBits)
	return instr.Instruction{Op: op, Operand: operand}
}

func bitLength(v uint64) int {
	n := 0
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}

// Program is the on-disk shape: the source message name the program was
// compiled from, plus its bit-packed instructions.
type Program struct {
	SourceName   string   `cbor:"1,keyasint"`
	Instructions []uint64 `cbor:"2,keyasint"`
}

// Encode bit-packs program and wraps it with name into a CBOR byte string.
func Encode(name string, program []instr.Instruction) ([]byte, error) {
	packed := make([]uint64, len(program))
	for i, ins := range program {
		p, err := pack(ins)
		if err != nil {
			return nil, fmt.Errorf("splitcodec: encoding instruction %d: %w", i, err)
		}
		packed[i] = uint64(p)
	}
	return cbor.Marshal(Program{SourceName: name, Instructions: packed})
}

// Decode reverses Encode.
func Decode(data []byte) (name string, program []instr.Instruction, err error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return "", nil, fmt.Errorf("splitcodec: decoding program: %w", err)
	}
	out := make([]instr.Instruction, len(p.Instructions))
	for i, w := range p.Instructions {
		out[i] = unpack(packedInstruction(w))
	}
	return p.SourceName, out, nil
}
