package bozon

import (
	"fmt"
	"math"
)

// The safe_* family folds constant arithmetic the same way the
// compile-time executor evaluates it at runtime (§4.2, §8 property 6).
// Every function here takes the diagnostic sink and the caller's
// source location so overflow/div-by-zero become warnings attached to
// the folding expression, exactly as the original compiler's
// `ctx::safe_*` routines do (grounded on original_source/src/ctx/
// safe_operations.cpp and built_in_operators.cpp; the wording below is
// kept verbatim per §9's "exact panic wording should be considered
// normative").

func wrapSigned(v int64, kind TypeInfoKind) int64 {
	switch kind {
	case TypeInt8:
		return int64(int8(v))
	case TypeInt16:
		return int64(int16(v))
	case TypeInt32:
		return int64(int32(v))
	default:
		return v
	}
}

func wrapUnsigned(v uint64, kind TypeInfoKind) uint64 {
	switch kind {
	case TypeUint8:
		return uint64(uint8(v))
	case TypeUint16:
		return uint64(uint16(v))
	case TypeUint32:
		return uint64(uint32(v))
	default:
		return v
	}
}

func inRangeSigned(v int64, kind TypeInfoKind) bool {
	return wrapSigned(v, kind) == v
}

func inRangeUnsigned(v uint64, kind TypeInfoKind) bool {
	return wrapUnsigned(v, kind) == v
}

func overflowWarn(d *Diagnostics, cfg *Config, loc SrcTokens, kind TypeInfoKind, wrapped int64) {
	d.Warnf(cfg, WarnIntOverflow, loc,
		"overflow in constant expression with type '%s' results in %d", kind, wrapped)
}

func overflowWarnU(d *Diagnostics, cfg *Config, loc SrcTokens, kind TypeInfoKind, wrapped uint64) {
	d.Warnf(cfg, WarnIntOverflow, loc,
		"overflow in constant expression with type '%s' results in %d", kind, wrapped)
}

// SafeAddSigned wraps modulo-2^N on overflow and warns (§4.2).
func SafeAddSigned(a, b int64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) int64 {
	result := a + b
	if kind == TypeInt64 {
		if (a > 0 && b > 0 && a > maxInt64-b) || (a < 0 && b < 0 && a < minInt64-b) {
			overflowWarn(d, cfg, loc, kind, result)
		}
		return result
	}
	if !inRangeSigned(result, kind) {
		wrapped := wrapSigned(result, kind)
		overflowWarn(d, cfg, loc, kind, wrapped)
		return wrapped
	}
	return result
}

func SafeAddUnsigned(a, b uint64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) uint64 {
	result := a + b
	if kind == TypeUint64 {
		if result < a {
			overflowWarnU(d, cfg, loc, kind, result)
		}
		return result
	}
	if !inRangeUnsigned(result, kind) {
		wrapped := wrapUnsigned(result, kind)
		overflowWarnU(d, cfg, loc, kind, wrapped)
		return wrapped
	}
	return result
}

func SafeSubtractSigned(a, b int64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) int64 {
	result := a - b
	if kind == TypeInt64 {
		if (b < 0 && a > maxInt64+b) || (b > 0 && a < minInt64+b) {
			overflowWarn(d, cfg, loc, kind, result)
		}
		return result
	}
	if !inRangeSigned(result, kind) {
		wrapped := wrapSigned(result, kind)
		overflowWarn(d, cfg, loc, kind, wrapped)
		return wrapped
	}
	return result
}

func SafeSubtractUnsigned(a, b uint64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) uint64 {
	result := a - b
	if kind == TypeUint64 {
		if result > a {
			overflowWarnU(d, cfg, loc, kind, result)
		}
		return result
	}
	if !inRangeUnsigned(result, kind) {
		wrapped := wrapUnsigned(result, kind)
		overflowWarnU(d, cfg, loc, kind, wrapped)
		return wrapped
	}
	return result
}

func SafeMultiplySigned(a, b int64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) int64 {
	result := a * b
	if kind == TypeInt64 {
		if a != 0 && result/a != b {
			overflowWarn(d, cfg, loc, kind, result)
		}
		return result
	}
	if !inRangeSigned(result, kind) {
		wrapped := wrapSigned(result, kind)
		overflowWarn(d, cfg, loc, kind, wrapped)
		return wrapped
	}
	return result
}

func SafeMultiplyUnsigned(a, b uint64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) uint64 {
	result := a * b
	if kind == TypeUint64 {
		if a != 0 && result/a != b {
			overflowWarnU(d, cfg, loc, kind, result)
		}
		return result
	}
	if !inRangeUnsigned(result, kind) {
		wrapped := wrapUnsigned(result, kind)
		overflowWarnU(d, cfg, loc, kind, wrapped)
		return wrapped
	}
	return result
}

// SafeDivideSigned reports int_divide_by_zero and returns 0 on b==0,
// matching the original's "dividing by zero in integer arithmetic", and
// wraps modulo-2^N with an int_overflow warning on overflow.
func SafeDivideSigned(a, b int64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) int64 {
	if b == 0 {
		d.Warnf(cfg, WarnIntDivideByZero, loc, "dividing by zero in integer arithmetic")
		return 0
	}
	if a == minInt64 && b == -1 {
		overflowWarn(d, cfg, loc, kind, a)
		return a
	}
	result := a / b
	if !inRangeSigned(result, kind) {
		wrapped := wrapSigned(result, kind)
		overflowWarn(d, cfg, loc, kind, wrapped)
		return wrapped
	}
	return result
}

func SafeDivideUnsigned(a, b uint64, loc SrcTokens, d *Diagnostics, cfg *Config) uint64 {
	if b == 0 {
		d.Warnf(cfg, WarnIntDivideByZero, loc, "dividing by zero in integer arithmetic")
		return 0
	}
	return a / b
}

// SafeModuloSigned/Unsigned report int_divide_by_zero with the
// original's "modulo by zero in integer arithmetic" wording.
func SafeModuloSigned(a, b int64, loc SrcTokens, d *Diagnostics, cfg *Config) int64 {
	if b == 0 {
		d.Warnf(cfg, WarnIntDivideByZero, loc, "modulo by zero in integer arithmetic")
		return 0
	}
	if a == minInt64 && b == -1 {
		return 0
	}
	return a % b
}

func SafeModuloUnsigned(a, b uint64, loc SrcTokens, d *Diagnostics, cfg *Config) uint64 {
	if b == 0 {
		d.Warnf(cfg, WarnIntDivideByZero, loc, "modulo by zero in integer arithmetic")
		return 0
	}
	return a % b
}

// SafeLeftShift/SafeRightShift bounds-check the shift amount against
// the operand's bit width and mask it on violation (§4.2, §4.5).
func SafeLeftShift(a uint64, amount int64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) uint64 {
	width := int64(kind.bitWidth())
	if amount < 0 || amount >= width {
		d.Warnf(cfg, WarnShiftOverflow, loc, "shift amount %d is out of range for a %d-bit value", amount, width)
		amount &= width - 1
	}
	return wrapUnsigned(a<<uint64(amount), kind)
}

func SafeRightShift(a uint64, amount int64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) uint64 {
	width := int64(kind.bitWidth())
	if amount < 0 || amount >= width {
		d.Warnf(cfg, WarnShiftOverflow, loc, "shift amount %d is out of range for a %d-bit value", amount, width)
		amount &= width - 1
	}
	return a >> uint64(amount)
}

// SafeNegate warns on negating INT_MIN (the wrapped result equals the
// input, per §4.5's "unary negation of INT_MIN: warn and keep value").
func SafeNegate(a int64, kind TypeInfoKind, loc SrcTokens, d *Diagnostics, cfg *Config) int64 {
	if kind == TypeInt64 && a == minInt64 {
		overflowWarn(d, cfg, loc, kind, a)
		return a
	}
	result := -a
	if !inRangeSigned(result, kind) {
		overflowWarn(d, cfg, loc, kind, wrapSigned(result, kind))
		return a
	}
	return result
}

// SafeCharAdd/SafeCharSubtract perform char±int arithmetic in uint32;
// results outside 0..=0x10FFFF are an error, not a warning (§4.2).
func SafeCharAdd(c rune, delta int64, loc SrcTokens, d *Diagnostics) (rune, error) {
	v := int64(c) + delta
	if v < 0 || v > 0x10FFFF {
		err := fmt.Errorf("character arithmetic result %d is outside the valid Unicode range", v)
		d.Errorf(loc, "%s", err.Error())
		return 0, err
	}
	return rune(v), nil
}

func SafeCharSubtract(c rune, delta int64, loc SrcTokens, d *Diagnostics) (rune, error) {
	return SafeCharAdd(c, -delta, loc, d)
}

const (
	maxInt64 = 1<<63 - 1
	minInt64 = -1 << 63
)

// FoldFloatOp applies op (one of + - * /) to two float64 operands,
// warning when a finite-finite operation produces a non-finite result
// or when dividing by exactly zero (§4.2).
func FoldFloatOp(op OperatorKind, a, b float64, loc SrcTokens, d *Diagnostics, cfg *Config) float64 {
	var result float64
	switch op {
	case OpAdd:
		result = a + b
	case OpSubtract:
		result = a - b
	case OpMultiply:
		result = a * b
	case OpDivide:
		if b == 0 {
			d.Warnf(cfg, WarnFloatDivideByZero, loc, "dividing by zero in floating-point arithmetic")
		}
		result = a / b
		return result
	default:
		internalf("FoldFloatOp: unsupported operator %s", op)
	}
	if isFinite(a) && isFinite(b) && !isFinite(result) {
		d.Warnf(cfg, WarnFloatOverflow, loc, "floating-point operation results in a non-finite value")
	}
	return result
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
