// Package postback encodes and decodes the compact key=value payload
// carried on interactive LINE buttons.
//
// The wire format is "action=<action>&reportId=<id>" with URL escaping for
// values containing reserved characters. It must stay within LINE's
// 300-byte postback data limit.
package postback

import (
	"net/url"
	"strconv"
	"strings"
)

// Well-known payload fields.
const (
	FieldAction   = "action"
	FieldReportID = "reportId"
)

// Actions carried by report card and menu buttons.
const (
	ActionSubmit  = "submit"
	ActionHelp    = "help"
	ActionHistory = "history"
)

// Encode builds the payload for an action button referencing a report.
func Encode(action string, reportID int64) string {
	return FieldAction + "=" + url.QueryEscape(action) +
		"&" + FieldReportID + "=" + strconv.FormatInt(reportID, 10)
}

// Decode parses a raw payload into its fields. It never fails: malformed
// or empty segments are skipped and unescapable values are dropped, so
// callers must treat missing expected fields as a decode failure and
// ignore the event.
func Decode(raw string) map[string]string {
	fields := make(map[string]string)
	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}
		key, value, ok := strings.Cut(segment, "=")
		if !ok || key == "" {
			continue
		}
		unescaped, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		fields[key] = unescaped
	}
	return fields
}

// Data is a decoded payload with typed accessors.
type Data struct {
	Action   string
	ReportID int64
}

// Parse decodes raw data and validates the fields the dispatcher needs.
// The second result is false when the action is missing, or when a
// submit/help action lacks a parseable report id.
func Parse(raw string) (Data, bool) {
	fields := Decode(raw)

	action, ok := fields[FieldAction]
	if !ok || action == "" {
		return Data{}, false
	}

	data := Data{Action: action}

	if idStr, ok := fields[FieldReportID]; ok {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id < 0 {
			return Data{}, false
		}
		data.ReportID = id
	} else if action == ActionSubmit || action == ActionHelp {
		return Data{}, false
	}

	return data, true
}
