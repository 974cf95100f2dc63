package parts

import (
	"strings"
	"unicode"
)

// Socket is a canonical CPU socket identifier, e.g. "AM5" or "LGA1700".
type Socket string

// SocketLGA115x is the cooler-side wildcard covering LGA1150/1151/1155/1156.
const SocketLGA115x Socket = "LGA115X"

var lga115x = map[Socket]bool{
	"LGA1150": true,
	"LGA1151": true,
	"LGA1155": true,
	"LGA1156": true,
}

// DDR5OnlySockets are platforms that cannot take DDR4 at all.
var DDR5OnlySockets = []Socket{"LGA1851", "AM5"}

// MemoryType is a canonical memory generation such as "DDR4".
type MemoryType string

const (
	DDR4 MemoryType = "DDR4"
	DDR5 MemoryType = "DDR5"
)

// FormFactor is a motherboard/case size class. The zero value is unknown.
type FormFactor int

const (
	FormUnknown FormFactor = iota
	FormITX
	FormMATX
	FormATX
	FormEATX
)

func (f FormFactor) String() string {
	switch f {
	case FormITX:
		return "ITX"
	case FormMATX:
		return "mATX"
	case FormATX:
		return "ATX"
	case FormEATX:
		return "E-ATX"
	}
	return "unknown"
}

// Contains reports whether a case of class f can hold a board of class board,
// following ITX < mATX < ATX < E-ATX. A board of unknown class is sized as ATX;
// a case of unknown class holds nothing.
func (f FormFactor) Contains(board FormFactor) bool {
	if f == FormUnknown {
		return false
	}
	if board == FormUnknown {
		board = FormATX
	}
	return f >= board
}

// CaseClassesFor lists every case class that holds a board of class board.
func CaseClassesFor(board FormFactor) []FormFactor {
	var out []FormFactor
	for f := FormITX; f <= FormEATX; f++ {
		if f.Contains(board) {
			out = append(out, f)
		}
	}
	return out
}

// squash upper-cases s and drops whitespace, dashes, dots and underscores.
func squash(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' || r == '.' || r == '_' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func normalizeSpace(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// CanonicalSocket maps free-text socket names onto the canonical spelling.
// "Socket AM4" -> "AM4", "LGA 1700" -> "LGA1700", "sTRX4" -> "TR4",
// "LGA115x" -> SocketLGA115x.
func CanonicalSocket(s string) Socket {
	v := squash(s)
	v = strings.TrimPrefix(v, "SOCKET")
	v = strings.Replace(v, "STRX", "TR", 1)
	return Socket(v)
}

// CanonicalSockets canonicalizes a list, dropping empty entries.
func CanonicalSockets(in []string) []Socket {
	out := make([]Socket, 0, len(in))
	for _, s := range in {
		if c := CanonicalSocket(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CanonicalMemoryType reduces "DDR4-3200" or "ddr5 6000" to its generation.
func CanonicalMemoryType(s string) MemoryType {
	v := squash(s)
	if strings.HasPrefix(v, "DDR") && len(v) >= 4 {
		return MemoryType(v[:4])
	}
	return MemoryType(v)
}

// CanonicalMemoryTypes canonicalizes a list, dropping empty and duplicate entries.
func CanonicalMemoryTypes(in []string) []MemoryType {
	seen := make(map[MemoryType]bool)
	out := make([]MemoryType, 0, len(in))
	for _, s := range in {
		m := CanonicalMemoryType(s)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// ClassifyFormFactor buckets free-text board or case form factors.
func ClassifyFormFactor(s string) FormFactor {
	v := squash(s)
	switch {
	case v == "":
		return FormUnknown
	case strings.Contains(v, "EATX"), strings.Contains(v, "EXTENDEDATX"),
		strings.Contains(v, "SSICEB"), strings.Contains(v, "SSIEEB"), strings.Contains(v, "FULLTOWER"):
		return FormEATX
	case strings.Contains(v, "MICROATX"), strings.Contains(v, "MATX"), strings.Contains(v, "UATX"),
		strings.Contains(v, "MINITOWER"):
		return FormMATX
	case strings.Contains(v, "ITX"), strings.Contains(v, "SFF"):
		return FormITX
	case strings.Contains(v, "ATX"), strings.Contains(v, "MIDTOWER"):
		return FormATX
	}
	return FormUnknown
}

// Overlaps reports whether a and b, compared case- and whitespace-insensitively,
// are non-empty and one contains the other.
func Overlaps(a, b string) bool {
	return loosely(a, b)
}

func loosely(a, b string) bool {
	a, b = squash(a), squash(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// CoolerFits reports whether a CPU socket appears in a cooler's socket list.
// The LGA115X entry matches any of LGA1150/1151/1155/1156.
func CoolerFits(cpu Socket, coolerSockets []Socket) bool {
	cpu = CanonicalSocket(string(cpu))
	if cpu == "" {
		return false
	}
	for _, s := range coolerSockets {
		s = CanonicalSocket(string(s))
		if s == cpu {
			return true
		}
		if s == SocketLGA115x && lga115x[cpu] {
			return true
		}
	}
	return false
}

// IsDDR5Only reports whether s is a platform without DDR4 support.
func IsDDR5Only(s Socket) bool {
	c := CanonicalSocket(string(s))
	for _, o := range DDR5OnlySockets {
		if c == o {
			return true
		}
	}
	return false
}

// Canonicalize returns a copy of c with socket, memory, cooler-socket and
// storage-type fields in canonical form. Catalog implementations call it on every row they
// hand out.
func Canonicalize(c Component) Component {
	c.Socket = CanonicalSocket(string(c.Socket))
	if len(c.MemoryTypes) > 0 {
		raw := make([]string, len(c.MemoryTypes))
		for i, m := range c.MemoryTypes {
			raw[i] = string(m)
		}
		c.MemoryTypes = CanonicalMemoryTypes(raw)
	}
	if len(c.CoolerSockets) > 0 {
		raw := make([]string, len(c.CoolerSockets))
		for i, s := range c.CoolerSockets {
			raw[i] = string(s)
		}
		c.CoolerSockets = CanonicalSockets(raw)
	}
	if t := StorageType(strings.ToUpper(strings.TrimSpace(string(c.StorageType)))); t == SSD || t == HDD {
		c.StorageType = t
	} else if c.Category == Storage {
		c.StorageType = guessStorageType(c.Name)
	}
	return c
}

func guessStorageType(name string) StorageType {
	n := squash(name)
	if strings.Contains(n, "HDD") || strings.Contains(n, "RPM") || strings.Contains(n, "BARRACUDA") {
		return HDD
	}
	return SSD
}
