package bufferview

import (
	"sync"

	"github.com/dot5enko/metatable/schema"
	"github.com/fatih/color"
)

// Capabilities are supplied by the embedding environment, they are never probed here.
type Capabilities struct {
	// exact 64-bit integer arithmetic is available
	NativeInt64 bool
	// 64-bit integers can be kept in typed storage over the raw buffer
	NativeInt64Storage bool
}

var NativeCapabilities = Capabilities{
	NativeInt64:        true,
	NativeInt64Storage: true,
}

type WarnFunc func(message string)

// Host carries the capability state shared by every view and table built on
// it, including the once-per-type precision warnings.
type Host struct {
	capabilities Capabilities
	warn         WarnFunc

	int64Warning  sync.Once
	uint64Warning sync.Once
}

func NewHost(capabilities Capabilities, warn WarnFunc) *Host {
	if warn == nil {
		warn = ColorWarn
	}

	return &Host{
		capabilities: capabilities,
		warn:         warn,
	}
}

var DefaultHost = sync.OnceValue(func() *Host {
	return NewHost(NativeCapabilities, ColorWarn)
})

func ColorWarn(message string) {
	color.Yellow("%s", message)
}

func orDefault(h *Host) *Host {
	if h == nil {
		return DefaultHost()
	}
	return h
}

func (h *Host) Capabilities() Capabilities {
	return orDefault(h).capabilities
}

// Degraded reports whether values of typ are read into float64 and may lose
// precision outside ±(2^53-1).
func (h *Host) Degraded(typ schema.ValueType) bool {
	return typ.Is64Bit() && !h.Capabilities().NativeInt64
}

// SlowPath reports whether views of typ decode byte by byte instead of using
// typed storage. Columns on the slow path are unpacked on first access.
func (h *Host) SlowPath(typ schema.ValueType) bool {
	caps := h.Capabilities()
	return typ.Is64Bit() && !(caps.NativeInt64 && caps.NativeInt64Storage)
}

func (h *Host) warnDegraded(typ schema.ValueType) {
	h = orDefault(h)

	switch typ {
	case schema.Int64ValueType:
		h.int64Warning.Do(func() {
			h.warn("INT64 type is not fully supported on this platform. Values greater than 2^53 - 1 or less than -(2^53 - 1) may lose precision when read.")
		})
	case schema.Uint64ValueType:
		h.uint64Warning.Do(func() {
			h.warn("UINT64 type is not fully supported on this platform. Values greater than 2^53 - 1 may lose precision when read.")
		})
	}
}
