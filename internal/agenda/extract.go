package agenda

import (
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/scrapers/oparl"
	"bytes"
	"encoding/json"
	"fmt"
)

// StructuralError means the meeting payload does not have the shape of a meeting list. It is
// distinct from a well-formed list without agenda items.
type StructuralError struct {
	Reason     string
	Underlying error
}

func (e *StructuralError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("agenda: malformed meeting payload: %s: %v", e.Reason, e.Underlying)
	}
	return fmt.Sprintf("agenda: malformed meeting payload: %s", e.Reason)
}

func (e *StructuralError) Unwrap() error {
	return e.Underlying
}

// Item is a single agenda item. Public defaults to false when the district omits it.
type Item struct {
	Number *string `json:"number"`
	Name   *string `json:"name"`
	Public bool    `json:"public"`
}

// MeetingWithAgenda is a meeting with its agenda items in source order.
type MeetingWithAgenda struct {
	Id          string  `json:"id"`
	Name        *string `json:"name"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	AgendaItems []Item  `json:"agendaItems"`
}

const report_extract_agendas = "extract.agendas"

type meetingList struct {
	Data *json.RawMessage `json:"data"`
}

// meetingFields and itemFields hold the fields of a meeting entry undecoded so that each one
// can fall back on its own.
type meetingFields struct {
	Id         json.RawMessage `json:"id"`
	Name       json.RawMessage `json:"name"`
	Start      json.RawMessage `json:"start"`
	End        json.RawMessage `json:"end"`
	AgendaItem json.RawMessage `json:"agendaItem"`
}

type itemFields struct {
	Number json.RawMessage `json:"number"`
	Name   json.RawMessage `json:"name"`
	Public json.RawMessage `json:"public"`
}

// ExtractAgendas reads the meeting list document and returns every meeting with its agenda.
// A payload that is not an object with a data array, or a meeting entry that is not an
// object, yields a *StructuralError. Fields of the wrong type are reported to tel and take
// their default, an agenda item that is not an object is reported and left out. A meeting
// without agendaItem has an empty agenda.
func ExtractAgendas(tel telemetry.API, payload json.RawMessage) ([]MeetingWithAgenda, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &StructuralError{Reason: "payload is not an object"}
	}

	var list meetingList
	err := json.Unmarshal(trimmed, &list)
	if err != nil {
		return nil, &StructuralError{Reason: "payload does not decode", Underlying: err}
	}
	if list.Data == nil {
		return nil, &StructuralError{Reason: "payload has no data key"}
	}

	var entries []json.RawMessage
	err = json.Unmarshal(*list.Data, &entries)
	if err != nil || entries == nil {
		return nil, &StructuralError{Reason: "data is not an array", Underlying: err}
	}

	x := extraction{tel: telemetry.NewScopedAPI("agenda", tel)}
	meetings := make([]MeetingWithAgenda, 0, len(entries))
	for i, entry := range entries {
		var fields meetingFields
		err := json.Unmarshal(entry, &fields)
		if err != nil {
			return nil, &StructuralError{Reason: fmt.Sprintf("meeting %d", i), Underlying: err}
		}
		meetings = append(meetings, x.meeting(i, fields))
	}
	return meetings, nil
}

type extraction struct {
	tel telemetry.API
}

// decode fills into from an optional field. Absent and null fields report false silently,
// a field of the wrong type reports false and a warning.
func (x extraction) decode(raw json.RawMessage, into any, where string, field string) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	err := json.Unmarshal(raw, into)
	if err != nil {
		x.tel.ReportWarning(report_extract_agendas, fmt.Errorf("%s: %s: %w", where, field, err))
		return false
	}
	return true
}

func (x extraction) optionalString(raw json.RawMessage, where string, field string) *string {
	var s string
	if !x.decode(raw, &s, where, field) {
		return nil
	}
	return &s
}

func (x extraction) meeting(index int, fields meetingFields) MeetingWithAgenda {
	where := fmt.Sprintf("meeting %d", index)

	out := MeetingWithAgenda{AgendaItems: []Item{}}
	x.decode(fields.Id, &out.Id, where, "id")
	if out.Id != "" {
		where = out.Id
	}
	out.Name = x.optionalString(fields.Name, where, "name")
	out.Start = x.optionalString(fields.Start, where, "start")
	out.End = x.optionalString(fields.End, where, "end")

	var items []json.RawMessage
	if !x.decode(fields.AgendaItem, &items, where, "agendaItem") {
		return out
	}
	for i, raw := range items {
		itemWhere := fmt.Sprintf("%s: agendaItem %d", where, i)

		var item itemFields
		err := json.Unmarshal(raw, &item)
		if err != nil {
			x.tel.ReportWarning(report_extract_agendas, fmt.Errorf("%s: %w", itemWhere, err))
			continue
		}

		var number *oparl.LooseString
		x.decode(item.Number, &number, itemWhere, "number")
		public := false
		x.decode(item.Public, &public, itemWhere, "public")

		out.AgendaItems = append(out.AgendaItems, Item{
			Number: number.StringPtr(),
			Name:   x.optionalString(item.Name, itemWhere, "name"),
			Public: public,
		})
	}
	return out
}

// AgendaRow is one agenda item with the meeting it belongs to.
type AgendaRow struct {
	MeetingId   string  `json:"meetingId"`
	MeetingName *string `json:"meetingName"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Number      *string `json:"number"`
	Name        *string `json:"name"`
	Public      bool    `json:"public"`
}

// Flatten turns meetings into one row per agenda item, in meeting then item order.
func Flatten(meetings []MeetingWithAgenda) []AgendaRow {
	var rows []AgendaRow
	for _, meeting := range meetings {
		for _, item := range meeting.AgendaItems {
			rows = append(rows, AgendaRow{
				MeetingId:   meeting.Id,
				MeetingName: meeting.Name,
				Start:       meeting.Start,
				End:         meeting.End,
				Number:      item.Number,
				Name:        item.Name,
				Public:      item.Public,
			})
		}
	}
	return rows
}

// HasItems reports whether at least one meeting has an agenda item.
func HasItems(meetings []MeetingWithAgenda) bool {
	for _, meeting := range meetings {
		if len(meeting.AgendaItems) > 0 {
			return true
		}
	}
	return false
}

// ItemNames returns the names of all agenda items that have one.
func ItemNames(meetings []MeetingWithAgenda) []string {
	var names []string
	for _, meeting := range meetings {
		for _, item := range meeting.AgendaItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names
}
