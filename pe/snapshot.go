package pe

import "fmt"

// Snapshot renders a human-readable dump of the PE's state: its pc,
// registers, transient signals, the configuration at pc-1 (the last
// configuration when pc is 0), and (for memory PEs) whether the last latched
// configuration issued a load. The configuration printed is the one that ran
// last only when pc advanced by one; after a JUMP back to loop_start, after
// the program ended, or after an error before the latch phase it is not.
func (p *PE) Snapshot() string {
	executedPC := p.PC - 1
	if executedPC < 0 {
		executedPC = p.Program.Len() - 1
	}
	return fmt.Sprintf(
		"PC: %d\nRegisters: %+v\nSignals: %+v\ncurrent_conf: %+v\nPrevious op is load: %v\n",
		p.PC, p.Regs, p.Signals, p.Program.Configurations[executedPC], p.PreviousOpIsLoad,
	)
}
