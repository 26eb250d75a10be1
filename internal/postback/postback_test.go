package postback

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFormat(t *testing.T) {
	assert.Equal(t, "action=submit&reportId=3", Encode(ActionSubmit, 3))
	assert.Equal(t, "action=help&reportId=12", Encode(ActionHelp, 12))
}

func TestEncodeEscapesReservedCharacters(t *testing.T) {
	raw := Encode("sub&mit=x", 1)
	fields := Decode(raw)
	assert.Equal(t, "sub&mit=x", fields[FieldAction])
	assert.Equal(t, "1", fields[FieldReportID])
}

func TestRoundTrip(t *testing.T) {
	actions := []string{ActionSubmit, ActionHelp, ActionHistory, "other"}
	ids := []int64{0, 1, 42, 99999}

	for _, action := range actions {
		for _, id := range ids {
			t.Run(fmt.Sprintf("%s_%d", action, id), func(t *testing.T) {
				data, ok := Parse(Encode(action, id))
				require.True(t, ok)
				assert.Equal(t, action, data.Action)
				assert.Equal(t, id, data.ReportID)
			})
		}
	}
}

func TestDecodeSkipsMalformedSegments(t *testing.T) {
	fields := Decode("action=submit&&reportId=5&novalue&=orphan")
	assert.Equal(t, "submit", fields[FieldAction])
	assert.Equal(t, "5", fields[FieldReportID])
	assert.NotContains(t, fields, "novalue")
	assert.NotContains(t, fields, "")
}

func TestDecodeNeverPanicsOnGarbage(t *testing.T) {
	for _, raw := range []string{"", "&&&", "===", "%zz=1", "a=%zz", "action="} {
		assert.NotPanics(t, func() { Decode(raw) }, "raw=%q", raw)
	}
}

func TestParseRejectsMissingAction(t *testing.T) {
	_, ok := Parse("reportId=3")
	assert.False(t, ok)

	_, ok = Parse("")
	assert.False(t, ok)
}

func TestParseRejectsUnparseableReportID(t *testing.T) {
	_, ok := Parse("action=submit&reportId=abc")
	assert.False(t, ok)

	_, ok = Parse("action=submit&reportId=-1")
	assert.False(t, ok)

	// submit requires a report id
	_, ok = Parse("action=submit")
	assert.False(t, ok)
}

func TestParseHistoryWithoutReportID(t *testing.T) {
	data, ok := Parse("action=history")
	require.True(t, ok)
	assert.Equal(t, ActionHistory, data.Action)
	assert.Zero(t, data.ReportID)
}
