package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexInt acepta un numero JSON o un string numerico; null y "" valen 0.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

// flexIDs acepta una lista de numeros o strings numericos.
type flexIDs []int64

func (f *flexIDs) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("seen ids: %w", err)
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		v, err := parseFlexNumber(item)
		if err != nil {
			return err
		}
		out = append(out, v)
	}
	*f = out
	return nil
}

func parseFlexNumber(data []byte) (int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", text)
	}
	if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
		return 0, fmt.Errorf("invalid integer %q", text)
	}
	return int64(n), nil
}

// isJSONArray reporta si el valor crudo es un array JSON.
func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
