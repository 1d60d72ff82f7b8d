package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringArray is a string set column portable across PostgreSQL, MySQL
// and SQLite. It is written as a JSON array; PostgreSQL array literals
// are accepted on read so columns migrated from TEXT[] still scan.
//
// Membership helpers treat the array as a set: With never duplicates and
// Without removes every occurrence.
type StringArray []string

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return a.scanBytes(v)
	case string:
		return a.scanBytes([]byte(v))
	default:
		return errors.New("StringArray: unsupported scan type")
	}
}

func (a *StringArray) scanBytes(data []byte) error {
	str := strings.TrimSpace(string(data))

	if str == "" {
		*a = StringArray{}
		return nil
	}
	if strings.HasPrefix(str, "[") {
		var out []string
		if err := json.Unmarshal([]byte(str), &out); err != nil {
			return err
		}
		if out == nil {
			out = []string{}
		}
		*a = out
		return nil
	}

	// PostgreSQL literal: {a,b,"c,d"}
	if strings.HasPrefix(str, "{") && strings.HasSuffix(str, "}") {
		*a = parsePostgresArray(str[1 : len(str)-1])
		return nil
	}

	*a = StringArray{str}
	return nil
}

func parsePostgresArray(s string) StringArray {
	result := StringArray{}
	if s == "" {
		return result
	}

	var current strings.Builder
	inQuotes, escaped := false, false
	for _, r := range s {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(result, current.String())
}

// Value implements driver.Valuer. A nil array is stored as "[]" so set
// columns are never NULL.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (StringArray) GormDataType() string {
	return "text"
}

// Contains reports whether id is a member.
func (a StringArray) Contains(id string) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// With returns a copy that includes id exactly once.
func (a StringArray) With(id string) StringArray {
	out := make(StringArray, 0, len(a)+1)
	out = append(out, a...)
	if a.Contains(id) {
		return out
	}
	return append(out, id)
}

// Without returns a copy with every occurrence of id removed.
func (a StringArray) Without(id string) StringArray {
	out := make(StringArray, 0, len(a))
	for _, v := range a {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
