package isa

// This file implements the bit-exact 64-bit configuration word codec. Field
// bit ranges are LSB=bit 0, expressed as [low, high) half-open ranges.

func field(word uint64, low, high uint) uint64 {
	width := high - low
	mask := uint64(1)<<width - 1
	return (word >> low) & mask
}

func setField(word uint64, low, high uint, value uint64) uint64 {
	width := high - low
	mask := uint64(1)<<width - 1
	word &^= mask << low
	word |= (value & mask) << low
	return word
}

func bit(word uint64, n uint) bool {
	return (word>>n)&1 != 0
}

func setBit(word uint64, n uint, v bool) uint64 {
	if v {
		return word | (1 << n)
	}
	return word &^ (1 << n)
}

const (
	fieldRouterSwitchConfigLo, fieldRouterSwitchConfigHi = 0, 21
	fieldRouterBypassLo, fieldRouterBypassHi             = 21, 25
	bitAluUpdateRes                                      = 25
	fieldRouterWriteEnableLo, fieldRouterWriteEnableHi   = 26, 30
	fieldOpCodeLo, fieldOpCodeHi                         = 30, 35
	fieldImmediateLo, fieldImmediateHi                   = 35, 51
	fieldLoopStartLo, fieldLoopStartHi                   = 35, 40
	fieldLoopEndLo, fieldLoopEndHi                       = 40, 45
	fieldJumpDstLo, fieldJumpDstHi                       = 45, 50
	bitAguTrigger                                        = 59
	bitAluBypass                                         = 60
	bitUseFloat                                           = 61
	bitMsb                                               = 62
	bitPredicate                                         = 63
)

// encodeRouterSwitchConfig packs the seven 3-bit sink selectors into a
// 21-bit code. Order from LSB: east_out, south_out, west_out, north_out,
// alu_op1, alu_op2, predicate.
func encodeRouterSwitchConfig(c RouterSwitchConfig) (uint64, error) {
	var code uint64
	sinks := []RouterInDir{c.EastOut, c.SouthOut, c.WestOut, c.NorthOut, c.ALUOp1, c.ALUOp2, c.Predicate}
	for i, src := range sinks {
		sc, err := src.Code()
		if err != nil {
			return 0, err
		}
		code |= uint64(sc) << (uint(i) * 3)
	}
	return code, nil
}

func decodeRouterSwitchConfig(code uint64) (RouterSwitchConfig, error) {
	vals := make([]RouterInDir, 7)
	for i := range vals {
		sc := uint8((code >> (uint(i) * 3)) & 0b111)
		dir, err := RouterInDirFromCode(sc)
		if err != nil {
			return RouterSwitchConfig{}, err
		}
		vals[i] = dir
	}
	return RouterSwitchConfig{
		EastOut:   vals[0],
		SouthOut:  vals[1],
		WestOut:   vals[2],
		NorthOut:  vals[3],
		ALUOp1:    vals[4],
		ALUOp2:    vals[5],
		Predicate: vals[6],
	}, nil
}

func encodeDirectionsOpt(d DirectionsOpt) uint64 {
	var code uint64
	if d.North {
		code |= 0b1000
	}
	if d.South {
		code |= 0b0100
	}
	if d.West {
		code |= 0b0010
	}
	if d.East {
		code |= 0b0001
	}
	return code
}

func decodeDirectionsOpt(code uint64) DirectionsOpt {
	return DirectionsOpt{
		North: code&0b1000 != 0,
		South: code&0b0100 != 0,
		West:  code&0b0010 != 0,
		East:  code&0b0001 != 0,
	}
}

// Encode packs a Configuration into its 64-bit wire representation.
func (c Configuration) Encode() (uint64, error) {
	if err := c.Operation.Validate(); err != nil {
		return 0, err
	}

	var word uint64

	switchCode, err := encodeRouterSwitchConfig(c.RouterConfig.SwitchConfig)
	if err != nil {
		return 0, err
	}
	word = setField(word, fieldRouterSwitchConfigLo, fieldRouterSwitchConfigHi, switchCode)
	word = setField(word, fieldRouterBypassLo, fieldRouterBypassHi, encodeDirectionsOpt(c.RouterConfig.InputRegisterUsed))
	word = setField(word, fieldRouterWriteEnableLo, fieldRouterWriteEnableHi, encodeDirectionsOpt(c.RouterConfig.InputRegisterWrite))

	opCode, err := c.Operation.Opcode.Code()
	if err != nil {
		return 0, err
	}
	word = setField(word, fieldOpCodeLo, fieldOpCodeHi, uint64(opCode))

	if c.Operation.Opcode == JUMP {
		word = setField(word, fieldLoopStartLo, fieldLoopStartHi, uint64(c.Operation.LoopStart))
		word = setField(word, fieldLoopEndLo, fieldLoopEndHi, uint64(c.Operation.LoopEnd))
		word = setField(word, fieldJumpDstLo, fieldJumpDstHi, uint64(c.Operation.LoopStart))
	} else {
		word = setBit(word, bitAluUpdateRes, c.Operation.UpdateRes)
		if c.Operation.HasImm {
			word = setField(word, fieldImmediateLo, fieldImmediateHi, uint64(c.Operation.Immediate))
			word = setBit(word, bitMsb, true)
		}
	}

	word = setBit(word, bitAguTrigger, c.Operation.Opcode.IsMemory())

	return word, nil
}

// Decode unpacks a 64-bit wire word into a Configuration. It returns an
// InvalidEncodingError for an unrecognized opcode code, a reserved router
// source code, or a JUMP word whose JumpDst does not equal LoopStart.
func Decode(word uint64) (Configuration, error) {
	opCode := uint8(field(word, fieldOpCodeLo, fieldOpCodeHi))
	opcode, err := OpcodeFromCode(opCode)
	if err != nil {
		return Configuration{}, err
	}

	switchConfig, err := decodeRouterSwitchConfig(field(word, fieldRouterSwitchConfigLo, fieldRouterSwitchConfigHi))
	if err != nil {
		return Configuration{}, err
	}
	routerConfig := RouterConfig{
		SwitchConfig:       switchConfig,
		InputRegisterUsed:  decodeDirectionsOpt(field(word, fieldRouterBypassLo, fieldRouterBypassHi)),
		InputRegisterWrite: decodeDirectionsOpt(field(word, fieldRouterWriteEnableLo, fieldRouterWriteEnableHi)),
	}

	var op Operation
	if opcode == JUMP {
		loopStart := uint8(field(word, fieldLoopStartLo, fieldLoopStartHi))
		loopEnd := uint8(field(word, fieldLoopEndLo, fieldLoopEndHi))
		jumpDst := uint8(field(word, fieldJumpDstLo, fieldJumpDstHi))
		if jumpDst != loopStart {
			return Configuration{}, &InvalidEncodingError{Reason: "JUMP JumpDst does not equal LoopStart"}
		}
		op = Operation{Opcode: JUMP, LoopStart: loopStart, LoopEnd: loopEnd, HasLoop: true}
	} else {
		op = Operation{Opcode: opcode}
		if bit(word, bitMsb) {
			op.HasImm = true
			op.Immediate = uint16(field(word, fieldImmediateLo, fieldImmediateHi))
		}
		op.UpdateRes = bit(word, bitAluUpdateRes)
	}

	return Configuration{Operation: op, RouterConfig: routerConfig}, nil
}
