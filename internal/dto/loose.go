package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LooseString accepts either a JSON string or a JSON number. Select widgets send
// relation ids as strings while API clients tend to send numbers.
type LooseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*s = LooseString(num.String())
	return nil
}

// String returns the trimmed value.
func (s LooseString) String() string {
	return strings.TrimSpace(string(s))
}
