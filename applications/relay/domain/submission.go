package domain

import "encoding/json"

// Submission is the six-field payload the relay receives and forwards.
// Values are kept as raw JSON so a field is forwarded exactly as the caller
// sent it, and a field the caller omitted stays omitted.
type Submission struct {
	FirstName   json.RawMessage `json:"firstName,omitempty"`
	LastName    json.RawMessage `json:"lastName,omitempty"`
	Email       json.RawMessage `json:"email,omitempty"`
	Mobile      json.RawMessage `json:"mobile,omitempty"`
	FileName    json.RawMessage `json:"fileName,omitempty"`
	FileContent json.RawMessage `json:"fileContent,omitempty"`
}

// Name returns the submitted file name for logging, or "" when it is absent
// or not a JSON string.
func (s Submission) Name() string {
	var name string
	if err := json.Unmarshal(s.FileName, &name); err != nil {
		return ""
	}
	return name
}

// NewSubmission picks the six fields out of a decoded JSON object by exact
// key. Keys differing only in case are ignored.
func NewSubmission(fields map[string]json.RawMessage) Submission {
	return Submission{
		FirstName:   fields["firstName"],
		LastName:    fields["lastName"],
		Email:       fields["email"],
		Mobile:      fields["mobile"],
		FileName:    fields["fileName"],
		FileContent: fields["fileContent"],
	}
}
