package parser

import (
	"encoding/base64"
	"testing"

	"google.golang.org/api/gmail/v1"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name        string
		headers     []*gmail.MessagePartHeader
		wantSubject string
		wantSender  string
	}{
		{
			name: "Both headers present",
			headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Senior Engineer opportunity"},
				{Name: "From", Value: "recruiter@example.com"},
			},
			wantSubject: "Senior Engineer opportunity",
			wantSender:  "recruiter@example.com",
		},
		{
			name: "Case-insensitive header names",
			headers: []*gmail.MessagePartHeader{
				{Name: "subject", Value: "hi"},
				{Name: "FROM", Value: "a@b.com"},
			},
			wantSubject: "hi",
			wantSender:  "a@b.com",
		},
		{
			name:        "Missing headers fall back to sentinels",
			headers:     []*gmail.MessagePartHeader{{Name: "Date", Value: "today"}},
			wantSubject: NoSubject,
			wantSender:  UnknownSender,
		},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &gmail.Message{
				Id:      "m1",
				Payload: &gmail.MessagePart{Headers: tt.headers},
			}
			parsed := p.Parse(msg)
			if parsed.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", parsed.Subject, tt.wantSubject)
			}
			if parsed.Sender != tt.wantSender {
				t.Errorf("Sender = %q, want %q", parsed.Sender, tt.wantSender)
			}
			if parsed.ID != "m1" {
				t.Errorf("ID = %q, want m1", parsed.ID)
			}
		})
	}
}

func TestParseBody(t *testing.T) {
	tests := []struct {
		name     string
		payload  *gmail.MessagePart
		wantBody string
	}{
		{
			name: "Single-part body decoded directly",
			payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: encode("hello world")},
			},
			wantBody: "hello world",
		},
		{
			name: "Multipart with exactly one text/plain leaf",
			payload: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encode("<p>hi</p>")}},
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("plain body")}},
				},
			},
			wantBody: "plain body",
		},
		{
			name: "Nested multipart descends depth-first",
			payload: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*gmail.MessagePart{
							{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("nested text")}},
						},
					},
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("outer text")}},
				},
			},
			wantBody: "nested text",
		},
		{
			name: "No text/plain part yields empty body",
			payload: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encode("<p>hi</p>")}},
				},
			},
			wantBody: "",
		},
		{
			name: "Invalid base64 degrades to empty body",
			payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: "!!!not-base64!!!"},
			},
			wantBody: "",
		},
		{
			name: "Unpadded base64url still decodes",
			payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("unpadded"))},
			},
			wantBody: "unpadded",
		},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &gmail.Message{Id: "m1", Payload: tt.payload}
			parsed := p.Parse(msg)
			if parsed.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", parsed.Body, tt.wantBody)
			}
		})
	}
}

func TestParseNilPayload(t *testing.T) {
	p := New(nil)
	parsed := p.Parse(&gmail.Message{Id: "m2"})

	if parsed.ID != "m2" {
		t.Errorf("ID = %q, want m2", parsed.ID)
	}
	if parsed.Subject != NoSubject {
		t.Errorf("Subject = %q, want %q", parsed.Subject, NoSubject)
	}
	if parsed.Body != "" {
		t.Errorf("Body = %q, want empty", parsed.Body)
	}
}
