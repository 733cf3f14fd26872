package compose

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/smanji/recruitflow/internal/models"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.response, f.err
}

func TestCompose(t *testing.T) {
	opp := models.Opportunity{SourceMessageID: "m1", CompanyInfo: "Acme"}
	profile := models.ApplicantProfile{Name: "Jane Doe", Email: "jane@example.com"}
	resume := models.TailoredResume{
		MatchedSkills:    []string{"Go", "SQL"},
		ArtifactFilename: "resume_Jane_Doe_abcd1234.pdf",
	}
	original := models.ParsedMessage{
		ID:      "m1",
		Subject: "Senior Engineer opportunity",
		Sender:  "Recruiter <recruiter@example.com>",
	}

	c := New(&fakeCompleter{response: "Thank you for reaching out..."}, "generated_resumes", nil)
	reply := c.Compose(context.Background(), opp, profile, resume, original)
	if reply == nil {
		t.Fatal("Compose() returned nil, want a reply")
	}

	if reply.Subject != "Re: Senior Engineer opportunity" {
		t.Errorf("Subject = %q, want %q", reply.Subject, "Re: Senior Engineer opportunity")
	}
	if reply.To != original.Sender {
		t.Errorf("To = %q, want original sender %q", reply.To, original.Sender)
	}
	if want := filepath.Join("generated_resumes", resume.ArtifactFilename); reply.AttachmentPath != want {
		t.Errorf("AttachmentPath = %q, want %q", reply.AttachmentPath, want)
	}
	if reply.Sent {
		t.Error("Sent = true for a freshly composed reply, want false")
	}
	if reply.Body == "" {
		t.Error("Body is empty")
	}
}

func TestComposeFailures(t *testing.T) {
	tests := []struct {
		name      string
		completer *fakeCompleter
	}{
		{
			name:      "Generation failure",
			completer: &fakeCompleter{err: errors.New("transport failure")},
		},
		{
			name:      "Empty generation output",
			completer: &fakeCompleter{response: "  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.completer, "generated_resumes", nil)
			reply := c.Compose(context.Background(), models.Opportunity{}, models.ApplicantProfile{}, models.TailoredResume{}, models.ParsedMessage{Subject: "s"})
			if reply != nil {
				t.Errorf("Compose() = %+v, want nil", reply)
			}
		})
	}
}
