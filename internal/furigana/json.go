package furigana

import (
	"encoding/json"
	"fmt"
)

type segmentJSON struct {
	Kind     string   `json:"kind"`
	Text     string   `json:"text"`
	Readings []string `json:"readings,omitempty"`
}

func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(segmentJSON{Kind: s.kind.String(), Text: s.text, Readings: s.readings})
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	var v segmentJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var (
		seg Segment
		err error
	)
	switch v.Kind {
	case "kana":
		seg, err = NewKana(v.Text)
	case "kanji":
		seg, err = NewKanjiReadings(v.Text, v.Readings)
	default:
		err = fmt.Errorf("%w: unknown kind %q", ErrInvalidSegment, v.Kind)
	}
	if err != nil {
		return err
	}
	*s = seg
	return nil
}

func (s SegmentRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(segmentJSON{Kind: s.kind.String(), Text: s.Text(), Readings: s.Readings()})
}

func (f Furigana) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.raw)
}

// UnmarshalJSON accepts only well formed furigana.
func (f *Furigana) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
