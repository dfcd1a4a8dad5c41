package page

import "net/url"

type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Messages shown in the status line.
const (
	MsgEnterTicketID   = "Skriv inn en billett-ID."
	MsgInvalidTicketID = "Ugyldig billett-ID."
	MsgTicketNotFound  = "Fant ikke billett med denne ID-en."
	MsgLookupFailed    = "Kunne ikke hente billetten akkurat nå."

	MsgTransferMissingFields = "Fyll ut fullt navn, e-post og telefonnummer."
	MsgTransferFailed        = "Kunne ikke sende inn skjemaet akkurat nå."
	MsgTransferReceived      = "Takk! Vi har mottatt informasjon om ny eier."
)

// Query parameters that seed a lookup, in order of precedence.
var DeepLinkParams = []string{"ticketId", "ref"}

const qrEndpoint = "https://api.qrserver.com/v1/create-qr-code/?size=240x240&data="

// QRCodeURL returns the image url of the QR code encoding a ticket id.
func QRCodeURL(ticketID string) string {
	return qrEndpoint + url.QueryEscape(ticketID)
}
