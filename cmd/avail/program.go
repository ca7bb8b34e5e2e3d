package main

import (
	"fmt"
	"os"

	"github.com/kristofer/avail/pkg/instr"
	"github.com/kristofer/avail/pkg/splitcodec"
)

func writeProgram(path, name string, instructions []instr.Instruction) error {
	data, err := splitcodec.Encode(name, instructions)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
