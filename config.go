package bozon

import "fmt"

// Config is a typed settings bag threaded through every compiler
// phase: the warning policy table (§7), codegen/backend knobs (§6.1),
// and the panic-check switches consulted by the compile-time executor
// (§4.4) and the LLVM backend (§4.6.3).
type Config map[string]*cfgVal

// NewConfig creates a configuration primed with the defaults §6.1
// describes: --emit=obj, -O1, no -Wno-* overrides, panic checks on.
func NewConfig() *Config {
	m := make(Config)
	m.SetString("emit", "obj")
	m.SetString("output", "")
	m.SetString("target", "")
	m.SetInt("codegen.optimize", 1)
	m.SetBool("return_zero_on_error", false)
	m.SetString("x86_asm_syntax", "att")
	m.SetBool("backend.panic_checks", true)
	m.SetInt("consteval.recursion_limit", 256)

	for _, cat := range []WarningCategory{
		WarnIntOverflow, WarnIntDivideByZero, WarnFloatDivideByZero,
		WarnFloatOverflow, WarnNullPointerDeref, WarnShiftOverflow,
		WarnUnknownTarget,
	} {
		m.SetBool("warnings."+string(cat), true)
	}
	// Off by default per §7's "each in a named category ... gated by
	// a policy table" — these two are noisy on otherwise-valid code.
	m.SetBool("warnings."+string(WarnUnusedValue), false)
	m.SetBool("warnings."+string(WarnBadFileExtension), false)
	m.SetBool("warnings."+string(WarnBinaryStdout), true)
	return &m
}

// WarningEnabled reports whether cat is gated on, defaulting to
// enabled for any category the CLI never toggled.
func (c *Config) WarningEnabled(cat WarningCategory) bool {
	key := "warnings." + string(cat)
	if val, ok := (*c)[key]; ok {
		return val.asBool
	}
	return true
}

func (c *Config) SetWarning(cat WarningCategory, enabled bool) {
	c.SetBool("warnings."+string(cat), enabled)
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		internalf("can't assign `%s` to config value of type `%s`", vt, v.typ)
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		internalf("can't retrieve `%s` from `%s` config value", vt, v.typ)
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Bool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Int)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_String)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("string setting `%s` does not exist", path))
}
