package errapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Wire shapes of the broadcaster API. Nothing outside this package sees them.

// catalogResponse is returned by GET /series?channel=
type catalogResponse struct {
	Data []seriesEntry `json:"data"`
}

type seriesEntry struct {
	ID      flexID `json:"id"`
	Heading string `json:"heading"`
}

// scheduleResponse is returned by GET /series/{id}/airtimes
type scheduleResponse struct {
	Data []airtimeEntry `json:"data"`
}

type airtimeEntry struct {
	ID            flexID `json:"id"`
	ScheduleStart int64  `json:"scheduleStart"` // unix seconds
}

// contentResponse is returned by GET /content/{id}
type contentResponse struct {
	Data struct {
		MainContent *mainContent `json:"mainContent"`
	} `json:"data"`
}

type mainContent struct {
	ID            flexID  `json:"id"`
	Heading       string  `json:"heading"`
	ScheduleStart int64   `json:"scheduleStart"`
	Medias        []media `json:"medias"`
	Photos        []photo `json:"photos"`
}

type media struct {
	Src struct {
		File string `json:"file"`
	} `json:"src"`
}

type photo struct {
	Types []photoType `json:"types"`
}

type photoType struct {
	W   int    `json:"w"`
	H   int    `json:"h"`
	URL string `json:"url"`
}

// flexID accepts identifiers encoded either as JSON numbers or strings
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id: not an integer: %s", n)
	}
	*id = flexID(n.String())
	return nil
}
