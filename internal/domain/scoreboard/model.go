package scoreboard

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Document is one feed's scoreboard listing. Every field is optional; a
// missing field decodes to its zero value.
type Document struct {
	// Source is the configured source id (ATP, WTA). Not part of the payload.
	Source string  `json:"-"`
	Events []Event `json:"events"`
}

type Event struct {
	ID        Text       `json:"id"`
	Name      Text       `json:"name"`
	ShortName Text       `json:"shortName"`
	Date      Timestamp  `json:"date"`
	Groupings []Grouping `json:"groupings"`
}

type Grouping struct {
	Grouping     GroupingInfo  `json:"grouping"`
	Competitions []Competition `json:"competitions"`
}

type GroupingInfo struct {
	DisplayName Text `json:"displayName"`
}

type Competition struct {
	ID          Text         `json:"id"`
	Date        Timestamp    `json:"date"`
	Competitors []Competitor `json:"competitors"`
	Notes       []Note       `json:"notes"`
	Status      Status       `json:"status"`
}

type Competitor struct {
	DisplayName Text    `json:"displayName"`
	Athlete     Athlete `json:"athlete"`
	Team        Team    `json:"team"`
	Score       Score   `json:"score"`
}

type Athlete struct {
	DisplayName Text `json:"displayName"`
}

type Team struct {
	DisplayName Text `json:"displayName"`
}

type Note struct {
	Text Text `json:"text"`
}

type Status struct {
	Type StatusType `json:"type"`
}

type StatusType struct {
	Description Text `json:"description"`
}

// Text is a string field that decodes any non-string JSON value to empty.
// One record with a mistyped field must not fail the whole document.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	v, err := decodeStringOrEmpty(data)
	if err != nil {
		return err
	}
	*t = Text(v)
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Timestamp holds the raw feed date. Non-string values decode to empty and
// the normalizer falls back to the current time.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	v, err := decodeStringOrEmpty(data)
	if err != nil {
		return err
	}
	*t = Timestamp(v)
	return nil
}

func (t Timestamp) String() string {
	return string(t)
}

func decodeStringOrEmpty(data []byte) (string, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw[0] != '"' {
		return "", nil
	}
	var v string
	if err := sonic.Unmarshal([]byte(raw), &v); err != nil {
		return "", err
	}
	return v, nil
}

// Score accepts both string and numeric JSON values. Feeds are not
// consistent about which one they send.
type Score string

func (s *Score) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*s = ""
		return nil
	}
	if raw[0] == '"' {
		var v string
		if err := sonic.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Score(v)
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		// Objects and arrays carry no usable score.
		*s = ""
		return nil
	}
	*s = Score(raw)
	return nil
}

func (s Score) String() string {
	return string(s)
}
