package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRef(t *testing.T) {
	cases := map[string]string{
		"d91de9e1":      "D91DE9E1",
		"  D91DE9E1\t":  "D91DE9E1",
		"\n d91De9E1  ": "D91DE9E1",
		"":              "",
		"   ":           "",
	}

	for in, want := range cases {
		assert.Equal(t, want, NormalizeRef(in), "input %q", in)
		assert.Equal(t, NormalizeRef(in), NormalizeRef(NormalizeRef(in)), "idempotent for %q", in)
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusActive, NormalizeStatus("active"))
	assert.Equal(t, StatusUsed, NormalizeStatus(" USED "))
	assert.Equal(t, StatusUnknown, NormalizeStatus("unknown"))
	assert.Equal(t, StatusUnknown, NormalizeStatus("refunded"))
	assert.Equal(t, StatusUnknown, NormalizeStatus(""))
}

func TestAttendee_Scanned(t *testing.T) {
	ts := "2025-05-17T18:04:00Z"
	empty := ""

	assert.True(t, (&Attendee{ScannedAt: &ts}).Scanned())
	assert.False(t, (&Attendee{ScannedAt: &empty}).Scanned())
	assert.False(t, (&Attendee{}).Scanned())
}

func TestPageBound_Decode(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		want  int
		isSet bool
	}{
		{name: "scalar", json: `{"last_page": 3}`, want: 3, isSet: true},
		{name: "array", json: `{"last_page": [4, 9]}`, want: 4, isSet: true},
		{name: "nested array", json: `{"last_page": [[2]]}`, want: 2, isSet: true},
		{name: "numeric string", json: `{"last_page": "5"}`, want: 5, isSet: true},
		{name: "null", json: `{"last_page": null}`},
		{name: "missing", json: `{}`},
		{name: "empty array", json: `{"last_page": []}`},
		{name: "bool", json: `{"last_page": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta PageMeta
			require.NoError(t, json.Unmarshal([]byte(tt.json), &meta))

			got, ok := meta.LastPage.Get()
			assert.Equal(t, tt.isSet, ok)
			if tt.isSet {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAttendeePage_Decode(t *testing.T) {
	body := `{
		"data": [
			{"ref_id": "abc123", "name": "Kari", "email": "kari@example.no", "phone": null,
			 "scanned_at": null, "ticket": {"name": "Festivalpass"}}
		],
		"meta": {"last_page": [2], "has_more_pages": true}
	}`

	var page AttendeePage
	require.NoError(t, json.Unmarshal([]byte(body), &page))

	require.Len(t, page.Data, 1)
	assert.Equal(t, "ABC123", page.Data[0].Key())
	assert.Nil(t, page.Data[0].Phone)
	assert.Equal(t, "Festivalpass", page.Data[0].Ticket.Name)

	last, ok := page.Meta.LastPage.Get()
	assert.True(t, ok)
	assert.Equal(t, 2, last)
	require.NotNil(t, page.Meta.HasMorePages)
	assert.True(t, *page.Meta.HasMorePages)
}

func TestTransferForm_Missing(t *testing.T) {
	form := TransferForm{NewName: "  ", NewEmail: "ola@example.no"}
	assert.Equal(t, []string{FieldNewName, FieldNewPhone}, form.Missing())

	form = TransferForm{NewName: "Ola", NewEmail: "ola@example.no", NewPhone: "99999999"}
	assert.Empty(t, form.Missing())
}

func TestTransferForm_Values(t *testing.T) {
	form := TransferForm{
		TicketID: " D91DE9E1 ",
		NewName:  "Ola Nordmann ",
		NewEmail: "ola@example.no",
		NewPhone: "99999999",
		Reason:   "gift",
	}

	v := form.Values()
	assert.Equal(t, TransferFormName, v.Get(FieldFormName))
	assert.Equal(t, "D91DE9E1", v.Get(FieldTicketID))
	assert.Equal(t, "Ola Nordmann", v.Get(FieldNewName))
	assert.Equal(t, "gift", v.Get(FieldReason))
	_, hasCountry := v[FieldCountryCode]
	assert.False(t, hasCountry)

	assert.Equal(t, form.Trimmed(), ParseTransferForm(v))
}
