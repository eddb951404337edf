package streetview

import (
	"fmt"
	"strconv"
	"strings"
)

// The photometa endpoints take their request message as a URL-encoded
// protobuf in the pb query parameter: each field is rendered as
// !<tag><type><value>, where message fields carry the number of child
// fields they contain instead of a value.

// pbEnum distinguishes protobuf enum values from plain ints.
type pbEnum int

// pbField is one tag/value pair. Values may be string, bool, int,
// float64, pbEnum, pbMessage, or a slice of those for repeated fields.
type pbField struct {
	Tag   int
	Value any
}

// pbMessage is an ordered field list; order is significant in the URL
// encoding.
type pbMessage []pbField

func (m pbMessage) encode() string {
	_, s := m.encodeFields()
	return s
}

func (m pbMessage) encodeFields() (int, string) {
	var sb strings.Builder
	count := 0
	for _, f := range m {
		n, s := encodeField(f.Tag, f.Value)
		sb.WriteString(s)
		count += n
	}
	return count, sb.String()
}

func encodeField(tag int, value any) (int, string) {
	switch v := value.(type) {
	case pbMessage:
		childCount, body := v.encodeFields()
		return childCount + 1, fmt.Sprintf("!%dm%d%s", tag, childCount, body)
	case []pbMessage:
		var sb strings.Builder
		count := 0
		for _, entry := range v {
			n, s := encodeField(tag, entry)
			sb.WriteString(s)
			count += n
		}
		return count, sb.String()
	case []pbEnum:
		var sb strings.Builder
		count := 0
		for _, entry := range v {
			n, s := encodeField(tag, entry)
			sb.WriteString(s)
			count += n
		}
		return count, sb.String()
	case pbEnum:
		return 1, fmt.Sprintf("!%de%d", tag, int(v))
	case bool:
		b := 0
		if v {
			b = 1
		}
		return 1, fmt.Sprintf("!%db%d", tag, b)
	case string:
		return 1, fmt.Sprintf("!%ds%s", tag, v)
	case int:
		return 1, fmt.Sprintf("!%di%d", tag, v)
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return 1, fmt.Sprintf("!%dd%s", tag, s)
	default:
		panic(fmt.Sprintf("unsupported pb value type %T", value))
	}
}
