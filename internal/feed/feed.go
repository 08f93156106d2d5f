// Package feed decodes external load records. The feed uses short dashed
// field names ("O-City", "D-DH") and mixes numbers with formatted strings;
// this package maps both onto the typed input the engines consume.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"loadfinder/internal/loads"
)

// flexString accepts JSON strings and bare numbers, normalizing both to a
// trimmed string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// record mirrors the feed's field names.
type record struct {
	OriginCity     flexString `json:"O-City"`
	OriginState    flexString `json:"O-St"`
	DestCity       flexString `json:"D-City"`
	DestState      flexString `json:"D-St"`
	OriginDeadhead flexString `json:"O-DH"`
	DestDeadhead   flexString `json:"D-DH"`
	Distance       flexString `json:"Distance"`
	Rate           flexString `json:"Rate"`
	RPM            flexString `json:"RPM"`
	Weight         flexString `json:"Weight"`
	Length         flexString `json:"Length"`
	Equipment      flexString `json:"Equip"`
	Mode           flexString `json:"Mode"`
	Pickup         flexString `json:"Pickup"`
	Company        flexString `json:"Company"`
	Updated        flexString `json:"Updated"`
	D2P            flexString `json:"D2P"`
}

func (r record) toInput(raw json.RawMessage) loads.Input {
	return loads.Input{
		OriginCity:     string(r.OriginCity),
		OriginState:    string(r.OriginState),
		DestCity:       string(r.DestCity),
		DestState:      string(r.DestState),
		OriginDeadhead: loads.ParseIntValue(string(r.OriginDeadhead)),
		DestDeadhead:   loads.ParseIntValue(string(r.DestDeadhead)),
		Distance:       loads.ParseIntValue(string(r.Distance)),
		Rate:           string(r.Rate),
		RPM:            string(r.RPM),
		Weight:         loads.ParseIntValue(string(r.Weight)),
		Length:         loads.ParseIntValue(string(r.Length)),
		Equipment:      string(r.Equipment),
		Mode:           string(r.Mode),
		Pickup:         string(r.Pickup),
		Company:        string(r.Company),
		Updated:        string(r.Updated),
		D2P:            string(r.D2P),
		RawJSON:        string(raw),
	}
}

// Decode reads a JSON array of feed records. Each input keeps its original
// JSON for auditing.
func Decode(r io.Reader) ([]loads.Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: feed is not a JSON array: %w", loads.ErrMalformedRecord, err)
	}

	inputs := make([]loads.Input, 0, len(raws))
	for i, raw := range raws {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: feed record %d: %w", loads.ErrMalformedRecord, i, err)
		}
		inputs = append(inputs, rec.toInput(raw))
	}
	return inputs, nil
}

// ReadFile decodes the feed file at path.
func ReadFile(path string) ([]loads.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
