package bozon

import (
	"fmt"
	"math/bits"
)

// applyUnary and applyBinary implement §4.5's built-in operator table
// over constant operands, folding through the safe_* family in
// fold.go so compile-time evaluation produces exactly the same
// overflow/div-by-zero diagnostics the runtime backends would.

func (e *Executor) applyUnary(op OperatorKind, v ConstantValue, loc SrcTokens) (ConstantValue, error) {
	d, cfg := e.session.Diagnostics, e.session.Config
	switch op {
	case OpUnaryPlus:
		return v, nil

	case OpUnaryMinus:
		switch n := v.(type) {
		case *SintValue:
			return &SintValue{Value: SafeNegate(n.Value, n.Kind, loc, d, cfg), Kind: n.Kind}, nil
		case *Float32Value:
			return &Float32Value{Value: -n.Value}, nil
		case *Float64Value:
			return &Float64Value{Value: -n.Value}, nil
		}
		return nil, fmt.Errorf("unary - applied to a non-numeric constant")

	case OpBitNot:
		switch n := v.(type) {
		case *SintValue:
			return &SintValue{Value: wrapSigned(^n.Value, n.Kind), Kind: n.Kind}, nil
		case *UintValue:
			return &UintValue{Value: wrapUnsigned(^n.Value, n.Kind), Kind: n.Kind}, nil
		}
		return nil, fmt.Errorf("unary ~ applied to a non-integer constant")

	case OpLogicalNot:
		b, ok := AsBool(v)
		if !ok {
			return nil, fmt.Errorf("unary ! applied to a non-bool constant")
		}
		return &BoolValue{Value: !b}, nil

	default:
		return nil, fmt.Errorf("operator %s has no compile-time constant form", op)
	}
}

func (e *Executor) applyBinary(op OperatorKind, a, b ConstantValue, loc SrcTokens) (ConstantValue, error) {
	d, cfg := e.session.Diagnostics, e.session.Config

	if sa, ok := a.(*SintValue); ok {
		sb, ok := b.(*SintValue)
		if !ok {
			return nil, fmt.Errorf("operand type mismatch in %s", op)
		}
		return applySintOp(op, sa, sb, loc, d, cfg)
	}
	if ua, ok := a.(*UintValue); ok {
		ub, ok := b.(*UintValue)
		if !ok {
			return nil, fmt.Errorf("operand type mismatch in %s", op)
		}
		return applyUintOp(op, ua, ub, loc, d, cfg)
	}
	if fa, ok := a.(*Float64Value); ok {
		fb, ok := b.(*Float64Value)
		if !ok {
			return nil, fmt.Errorf("operand type mismatch in %s", op)
		}
		return applyFloatOp(op, fa.Value, fb.Value, loc, d, cfg)
	}
	if fa, ok := a.(*Float32Value); ok {
		fb, ok := b.(*Float32Value)
		if !ok {
			return nil, fmt.Errorf("operand type mismatch in %s", op)
		}
		r := FoldFloatOp(op, float64(fa.Value), float64(fb.Value), loc, d, cfg)
		return &Float32Value{Value: float32(r)}, nil
	}
	if ba, ok := a.(*BoolValue); ok {
		bb, ok := b.(*BoolValue)
		if !ok {
			return nil, fmt.Errorf("operand type mismatch in %s", op)
		}
		return applyBoolOp(op, ba.Value, bb.Value)
	}
	if ca, ok := a.(*CharValue); ok {
		return applyCharOp(op, ca, b, loc, d)
	}
	if sa, ok := a.(*StringValue); ok {
		sb, ok := b.(*StringValue)
		if !ok {
			return nil, fmt.Errorf("operand type mismatch in %s", op)
		}
		return applyStringOp(op, sa.Value, sb.Value)
	}
	return nil, fmt.Errorf("operator %s has no compile-time constant form for this operand type", op)
}

func applySintOp(op OperatorKind, a, b *SintValue, loc SrcTokens, d *Diagnostics, cfg *Config) (ConstantValue, error) {
	switch op {
	case OpAdd:
		return &SintValue{Value: SafeAddSigned(a.Value, b.Value, a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpSubtract:
		return &SintValue{Value: SafeSubtractSigned(a.Value, b.Value, a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpMultiply:
		return &SintValue{Value: SafeMultiplySigned(a.Value, b.Value, a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpDivide:
		return &SintValue{Value: SafeDivideSigned(a.Value, b.Value, a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpModulo:
		return &SintValue{Value: SafeModuloSigned(a.Value, b.Value, loc, d, cfg), Kind: a.Kind}, nil
	case OpShiftLeft:
		return &SintValue{Value: int64(SafeLeftShift(uint64(a.Value), b.Value, a.Kind, loc, d, cfg)), Kind: a.Kind}, nil
	case OpShiftRight:
		return &SintValue{Value: a.Value >> uint64(b.Value), Kind: a.Kind}, nil
	case OpBitAnd:
		return &SintValue{Value: a.Value & b.Value, Kind: a.Kind}, nil
	case OpBitOr:
		return &SintValue{Value: a.Value | b.Value, Kind: a.Kind}, nil
	case OpBitXor:
		return &SintValue{Value: a.Value ^ b.Value, Kind: a.Kind}, nil
	case OpEqual:
		return &BoolValue{Value: a.Value == b.Value}, nil
	case OpNotEqual:
		return &BoolValue{Value: a.Value != b.Value}, nil
	case OpLess:
		return &BoolValue{Value: a.Value < b.Value}, nil
	case OpLessEqual:
		return &BoolValue{Value: a.Value <= b.Value}, nil
	case OpGreater:
		return &BoolValue{Value: a.Value > b.Value}, nil
	case OpGreaterEqual:
		return &BoolValue{Value: a.Value >= b.Value}, nil
	default:
		return nil, fmt.Errorf("operator %s is not defined for signed integers", op)
	}
}

func applyUintOp(op OperatorKind, a, b *UintValue, loc SrcTokens, d *Diagnostics, cfg *Config) (ConstantValue, error) {
	switch op {
	case OpAdd:
		return &UintValue{Value: SafeAddUnsigned(a.Value, b.Value, a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpSubtract:
		return &UintValue{Value: SafeSubtractUnsigned(a.Value, b.Value, a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpMultiply:
		return &UintValue{Value: SafeMultiplyUnsigned(a.Value, b.Value, a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpDivide:
		return &UintValue{Value: SafeDivideUnsigned(a.Value, b.Value, loc, d, cfg), Kind: a.Kind}, nil
	case OpModulo:
		return &UintValue{Value: SafeModuloUnsigned(a.Value, b.Value, loc, d, cfg), Kind: a.Kind}, nil
	case OpShiftLeft:
		return &UintValue{Value: SafeLeftShift(a.Value, int64(b.Value), a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpShiftRight:
		return &UintValue{Value: SafeRightShift(a.Value, int64(b.Value), a.Kind, loc, d, cfg), Kind: a.Kind}, nil
	case OpBitAnd:
		return &UintValue{Value: a.Value & b.Value, Kind: a.Kind}, nil
	case OpBitOr:
		return &UintValue{Value: a.Value | b.Value, Kind: a.Kind}, nil
	case OpBitXor:
		return &UintValue{Value: a.Value ^ b.Value, Kind: a.Kind}, nil
	case OpEqual:
		return &BoolValue{Value: a.Value == b.Value}, nil
	case OpNotEqual:
		return &BoolValue{Value: a.Value != b.Value}, nil
	case OpLess:
		return &BoolValue{Value: a.Value < b.Value}, nil
	case OpLessEqual:
		return &BoolValue{Value: a.Value <= b.Value}, nil
	case OpGreater:
		return &BoolValue{Value: a.Value > b.Value}, nil
	case OpGreaterEqual:
		return &BoolValue{Value: a.Value >= b.Value}, nil
	default:
		return nil, fmt.Errorf("operator %s is not defined for unsigned integers", op)
	}
}

func applyFloatOp(op OperatorKind, a, b float64, loc SrcTokens, d *Diagnostics, cfg *Config) (ConstantValue, error) {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return &Float64Value{Value: FoldFloatOp(op, a, b, loc, d, cfg)}, nil
	case OpEqual:
		return &BoolValue{Value: a == b}, nil
	case OpNotEqual:
		return &BoolValue{Value: a != b}, nil
	case OpLess:
		return &BoolValue{Value: a < b}, nil
	case OpLessEqual:
		return &BoolValue{Value: a <= b}, nil
	case OpGreater:
		return &BoolValue{Value: a > b}, nil
	case OpGreaterEqual:
		return &BoolValue{Value: a >= b}, nil
	default:
		return nil, fmt.Errorf("operator %s is not defined for floating-point values", op)
	}
}

func applyBoolOp(op OperatorKind, a, b bool) (ConstantValue, error) {
	switch op {
	case OpLogicalAnd:
		return &BoolValue{Value: a && b}, nil
	case OpLogicalOr:
		return &BoolValue{Value: a || b}, nil
	case OpLogicalXor:
		return &BoolValue{Value: a != b}, nil
	case OpEqual:
		return &BoolValue{Value: a == b}, nil
	case OpNotEqual:
		return &BoolValue{Value: a != b}, nil
	default:
		return nil, fmt.Errorf("operator %s is not defined for bool", op)
	}
}

func applyCharOp(op OperatorKind, a *CharValue, b ConstantValue, loc SrcTokens, d *Diagnostics) (ConstantValue, error) {
	if cb, ok := b.(*CharValue); ok {
		switch op {
		case OpEqual:
			return &BoolValue{Value: a.Value == cb.Value}, nil
		case OpNotEqual:
			return &BoolValue{Value: a.Value != cb.Value}, nil
		case OpLess:
			return &BoolValue{Value: a.Value < cb.Value}, nil
		case OpLessEqual:
			return &BoolValue{Value: a.Value <= cb.Value}, nil
		case OpGreater:
			return &BoolValue{Value: a.Value > cb.Value}, nil
		case OpGreaterEqual:
			return &BoolValue{Value: a.Value >= cb.Value}, nil
		}
		return nil, fmt.Errorf("operator %s is not defined between two chars", op)
	}

	delta, ok := intOperand(b)
	if !ok {
		return nil, fmt.Errorf("char arithmetic requires an integer right-hand operand")
	}
	switch op {
	case OpAdd:
		r, err := SafeCharAdd(a.Value, delta, loc, d)
		if err != nil {
			return nil, err
		}
		return &CharValue{Value: r}, nil
	case OpSubtract:
		r, err := SafeCharSubtract(a.Value, delta, loc, d)
		if err != nil {
			return nil, err
		}
		return &CharValue{Value: r}, nil
	default:
		return nil, fmt.Errorf("operator %s is not defined for char ± int", op)
	}
}

func intOperand(v ConstantValue) (int64, bool) {
	switch n := v.(type) {
	case *SintValue:
		return n.Value, true
	case *UintValue:
		return int64(n.Value), true
	}
	return 0, false
}

func applyStringOp(op OperatorKind, a, b string) (ConstantValue, error) {
	switch op {
	case OpAdd:
		return &StringValue{Value: a + b}, nil
	case OpEqual:
		return &BoolValue{Value: a == b}, nil
	case OpNotEqual:
		return &BoolValue{Value: a != b}, nil
	default:
		return nil, fmt.Errorf("operator %s is not defined for string", op)
	}
}

// evalBitIntrinsic implements the bit-manipulation intrinsics wired
// into the built-in library (§4.7's "built-in library", supplemented
// from original_source's intrinsic table, §12).
func evalBitIntrinsic(id IntrinsicID, args []ConstantValue, loc SrcTokens) (ConstantValue, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("bit intrinsic expects exactly one argument")
	}
	v, kind, err := uintOperandWithKind(args[0])
	if err != nil {
		return nil, err
	}
	width := kind.bitWidth()
	switch id {
	case IntrinsicBitreverse:
		r := bits.Reverse64(v) >> (64 - width)
		return &UintValue{Value: r, Kind: kind}, nil
	case IntrinsicPopcount:
		return &UintValue{Value: uint64(bits.OnesCount64(v)), Kind: TypeUint32}, nil
	case IntrinsicCtz:
		if v == 0 {
			return &UintValue{Value: uint64(width), Kind: TypeUint32}, nil
		}
		return &UintValue{Value: uint64(bits.TrailingZeros64(v)), Kind: TypeUint32}, nil
	case IntrinsicClz:
		if v == 0 {
			return &UintValue{Value: uint64(width), Kind: TypeUint32}, nil
		}
		return &UintValue{Value: uint64(bits.LeadingZeros64(v) - (64 - width)), Kind: TypeUint32}, nil
	case IntrinsicByteswap:
		return &UintValue{Value: byteswap(v, width), Kind: kind}, nil
	default:
		return nil, fmt.Errorf("intrinsic %d is not a bit intrinsic", id)
	}
}

func uintOperandWithKind(v ConstantValue) (uint64, TypeInfoKind, error) {
	switch n := v.(type) {
	case *UintValue:
		return n.Value, n.Kind, nil
	case *SintValue:
		return uint64(n.Value), n.Kind, nil
	}
	return 0, 0, fmt.Errorf("bit intrinsic requires an integer argument")
}

func byteswap(v uint64, width int) uint64 {
	switch width {
	case 16:
		return uint64(bits.ReverseBytes16(uint16(v)))
	case 32:
		return uint64(bits.ReverseBytes32(uint32(v)))
	case 64:
		return bits.ReverseBytes64(v)
	default:
		return v
	}
}
