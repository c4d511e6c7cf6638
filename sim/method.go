package sim

import (
	"fmt"
	"strings"
)

// Method names a leaf split policy. The set is closed: every Method value
// accepted by ParseMethod has exactly one SplitPolicy.
type Method string

const (
	// MethodDeferred inserts the whole batch, then splits over-capacity blocks
	// in a cascade until every piece fits.
	MethodDeferred Method = "deferred"
	// MethodImmediately splits as soon as a block reaches capacity mid-batch.
	MethodImmediately Method = "immediately"
	// MethodAdaptive splits at p or 1-p depending on where the insertion ends,
	// comparing against the p boundary.
	MethodAdaptive Method = "adaptive"
	// MethodAdaptive2 splits at 1-p or p depending on where the insertion ends,
	// comparing against the 1-p boundary.
	MethodAdaptive2 Method = "adaptive2"
)

// Methods lists every recognized split method in canonical order.
var Methods = []Method{MethodDeferred, MethodImmediately, MethodAdaptive, MethodAdaptive2}

// validMethods is shared by ParseMethod and Config.Validate.
var validMethods = map[Method]bool{
	MethodDeferred:    true,
	MethodImmediately: true,
	MethodAdaptive:    true,
	MethodAdaptive2:   true,
}

// MethodNames returns the recognized method names joined for error messages.
func MethodNames() string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// ParseMethod converts a method name into a Method.
// Unknown names are an error; there is no default policy.
func ParseMethod(name string) (Method, error) {
	m := Method(name)
	if !validMethods[m] {
		return "", fmt.Errorf("unknown split method %q; valid: %s", name, MethodNames())
	}
	return m, nil
}

// IsValid reports whether m is one of the recognized methods.
func (m Method) IsValid() bool {
	return validMethods[m]
}

// Incremental reports whether the method places batch keys one at a time and
// therefore needs a landing position.
func (m Method) Incremental() bool {
	switch m {
	case MethodDeferred:
		return false
	case MethodImmediately, MethodAdaptive, MethodAdaptive2:
		return true
	default:
		panic(fmt.Sprintf("unhandled split method %q", string(m)))
	}
}
