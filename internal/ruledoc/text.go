package ruledoc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Text is a profile text value that also accepts a bare number, so that
// department: 75 and department: "75" load the same way.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected text or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}
