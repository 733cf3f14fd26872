package models

// ParsedMessage holds the decoded subject, sender, and plain-text body of one
// inbox message. ID is the provider's durable message identifier and is the
// join key used to locate the message again when an approved reply is sent.
type ParsedMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Body    string `json:"body"`
}

// Opportunity represents structured job-posting facts extracted from one message
type Opportunity struct {
	SourceMessageID string   `json:"source_message_id"`
	JobDescription  string   `json:"job_description"`
	CompanyInfo     string   `json:"company_info"`
	KeyRequirements []string `json:"key_requirements"`
	RequiredSkills  []string `json:"required_skills"`
}

// IsEmpty reports whether extraction produced nothing usable. A message whose
// opportunity is empty does not advance past the extraction stage.
func (o Opportunity) IsEmpty() bool {
	return o.JobDescription == "" && len(o.RequiredSkills) == 0
}

// ApplicantProfile holds the applicant's details for one pipeline run
type ApplicantProfile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ResumeText string `json:"resume_text"`
}

// TailoredResume is the output of the tailoring engine for one opportunity.
// ArtifactFilename names the rendered PDF inside the generated-resumes
// directory; the file itself is owned by the filesystem, not this struct.
type TailoredResume struct {
	MarkdownContent  string   `json:"markdown_content"`
	HTMLContent      string   `json:"html_content"`
	MatchedSkills    []string `json:"matched_skills"`
	ArtifactFilename string   `json:"artifact_filename"`
}

// ComposedReply is a drafted response awaiting approval. Sent transitions to
// true exactly once, only when the mail sink succeeds. DraftID is set when
// the reply was saved to the mailbox as a draft instead of sent.
type ComposedReply struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentPath string `json:"attachment_path"`
	Sent           bool   `json:"sent"`
	DraftID        string `json:"draft_id,omitempty"`
}

// ProcessedBundle is the per-message unit the pipeline outputs for review
type ProcessedBundle struct {
	OriginalMessage ParsedMessage  `json:"original_message"`
	Opportunity     Opportunity    `json:"opportunity"`
	Resume          TailoredResume `json:"resume"`
	Reply           ComposedReply  `json:"reply"`
}

// ApprovalResult reports the outcome of dispatching one approved reply.
// Sent is true when the reply went out; DraftID is non-empty when it was
// saved as a draft instead. An unknown or failed id has both zero.
type ApprovalResult struct {
	ID      string `json:"id"`
	Sent    bool   `json:"sent"`
	DraftID string `json:"draft_id,omitempty"`
}
