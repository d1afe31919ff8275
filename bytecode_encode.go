package bozon

import (
	"bytes"
	"encoding/binary"
	"math"
)

// EncodeProgram serializes a Program's instruction stream to a stable
// byte sequence, used both for `--emit=null` bytecode dumps (§6.1) and
// as the cache key a generic instantiation's compiled body is stored
// under, the way the teacher's vm_encoder.go serializes a Bytecode for
// on-disk grammar caching.
func EncodeProgram(p *Program) []byte {
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(p.Code)))
	for _, ins := range p.Code {
		buf.WriteByte(byte(ins.Op))
		writeI64(&buf, ins.A)
		writeI64(&buf, ins.B)
		writeI64(&buf, ins.C)
	}
	writeU32(&buf, uint32(len(p.Consts)))
	for _, c := range p.Consts {
		encodeConstant(&buf, c)
	}
	return buf.Bytes()
}

// DecodeProgram reverses EncodeProgram. The Func/Locals fields are not
// part of the wire format — callers reattach them from the
// FunctionDecl they decoded the cache entry for.
func DecodeProgram(data []byte) (*Program, error) {
	r := bytes.NewReader(data)
	p := &Program{}

	codeLen, err := readU32(r)
	if err != nil {
		return nil, err
	}
	p.Code = make([]Instruction, codeLen)
	for i := range p.Code {
		op, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		a, err := readI64(r)
		if err != nil {
			return nil, err
		}
		b, err := readI64(r)
		if err != nil {
			return nil, err
		}
		c, err := readI64(r)
		if err != nil {
			return nil, err
		}
		p.Code[i] = Instruction{Op: Opcode(op), A: a, B: b, C: c}
	}

	constLen, err := readU32(r)
	if err != nil {
		return nil, err
	}
	p.Consts = make([]ConstantValue, constLen)
	for i := range p.Consts {
		v, err := decodeConstant(r)
		if err != nil {
			return nil, err
		}
		p.Consts[i] = v
	}
	return p, nil
}

const (
	tagSint byte = iota
	tagUint
	tagFloat32
	tagFloat64
	tagChar
	tagString
	tagBool
	tagNull
)

func encodeConstant(buf *bytes.Buffer, v ConstantValue) {
	switch c := v.(type) {
	case *SintValue:
		buf.WriteByte(tagSint)
		writeI64(buf, c.Value)
		buf.WriteByte(byte(c.Kind))
	case *UintValue:
		buf.WriteByte(tagUint)
		writeU64(buf, c.Value)
		buf.WriteByte(byte(c.Kind))
	case *Float32Value:
		buf.WriteByte(tagFloat32)
		writeU32(buf, math.Float32bits(c.Value))
	case *Float64Value:
		buf.WriteByte(tagFloat64)
		writeU64(buf, math.Float64bits(c.Value))
	case *CharValue:
		buf.WriteByte(tagChar)
		writeU32(buf, uint32(c.Value))
	case *StringValue:
		buf.WriteByte(tagString)
		writeU32(buf, uint32(len(c.Value)))
		buf.WriteString(c.Value)
	case *BoolValue:
		buf.WriteByte(tagBool)
		if c.Value {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case *NullValue:
		buf.WriteByte(tagNull)
	default:
		internalf("EncodeProgram: constant kind %T has no wire encoding (generic instantiation caching is only defined for scalar consts)", v)
	}
}

func decodeConstant(r *bytes.Reader) (ConstantValue, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagSint:
		val, err := readI64(r)
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return &SintValue{Value: val, Kind: TypeInfoKind(kind)}, nil
	case tagUint:
		val, err := readU64(r)
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return &UintValue{Value: val, Kind: TypeInfoKind(kind)}, nil
	case tagFloat32:
		bits, err := readU32(r)
		if err != nil {
			return nil, err
		}
		return &Float32Value{Value: math.Float32frombits(bits)}, nil
	case tagFloat64:
		bits, err := readU64(r)
		if err != nil {
			return nil, err
		}
		return &Float64Value{Value: math.Float64frombits(bits)}, nil
	case tagChar:
		r32, err := readU32(r)
		if err != nil {
			return nil, err
		}
		return &CharValue{Value: rune(r32)}, nil
	case tagString:
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := r.Read(buf); err != nil {
			return nil, err
		}
		return &StringValue{Value: string(buf)}, nil
	case tagBool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return &BoolValue{Value: b != 0}, nil
	case tagNull:
		return &NullValue{}, nil
	default:
		internalf("DecodeProgram: unknown constant tag %d", tag)
		return nil, nil
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeI64(buf *bytes.Buffer, v int64) { writeU64(buf, uint64(v)) }

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readI64(r *bytes.Reader) (int64, error) {
	v, err := readU64(r)
	return int64(v), err
}
