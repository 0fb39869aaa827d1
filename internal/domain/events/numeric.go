package events

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawNumber holds a numeric field in whatever form it arrived: a number,
// a user-typed string ("12,5"), or nothing. It unmarshals from either
// JSON form and every read goes through Float/Int, which default to 0 on
// parse failure so no NaN can travel further.
type RawNumber string

func RawFromInt(value int) RawNumber {
	return RawNumber(strconv.Itoa(value))
}

func RawFromFloat(value float64) RawNumber {
	return RawNumber(strconv.FormatFloat(value, 'f', -1, 64))
}

func (n RawNumber) Float() float64 {
	value := strings.TrimSpace(string(n))
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", ".")
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

func (n RawNumber) Int() int {
	return int(n.Float())
}

func (n RawNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

func (n *RawNumber) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*n = RawNumber(asString)
		return nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*n = RawNumber(asNumber.String())
		return nil
	}

	// Anything else (null, objects) degrades to the zero value.
	*n = ""
	return nil
}
