package models

// Kind discriminates the three submission variants, both in memory and in the stored document.
type Kind string

const (
	KindProject Kind = "project_request"
	KindHiring  Kind = "hiring_request"
	KindContact Kind = "contact_request"
)

const (
	ClientTypeCompany    = "company"
	ClientTypeIndividual = "individual"
)

// Kinds lists every submission variant.
func Kinds() []Kind {
	return []Kind{KindProject, KindHiring, KindContact}
}

func (k Kind) Valid() bool {
	switch k {
	case KindProject, KindHiring, KindContact:
		return true
	}
	return false
}

// Label is the short human name used in error and log messages.
func (k Kind) Label() string {
	switch k {
	case KindProject:
		return "project"
	case KindHiring:
		return "hiring"
	case KindContact:
		return "contact"
	}
	return string(k)
}

// Submission is a closed union of ProjectRequest, HiringRequest and ContactMessage.
// Consumers dispatch on Kind rather than on the dynamic type.
type Submission interface {
	Kind() Kind
	Validate() error
	isSubmission()
}

// ProjectRequest is a project inquiry. Everything except the contact email is optional.
type ProjectRequest struct {
	ClientType   *string `json:"clientType,omitempty"`
	ClientName   *string `json:"clientName,omitempty"`
	CompanyName  *string `json:"companyName,omitempty"`
	ProjectType  *string `json:"projectType,omitempty"`
	Budget       *string `json:"budget,omitempty"`
	Timeline     *string `json:"timeline,omitempty"`
	Requirements *string `json:"requirements,omitempty"`
	ContactEmail string  `json:"contactEmail" validate:"required,email"`
}

// HiringRequest is a company hiring inquiry. Every field is required.
type HiringRequest struct {
	ClientType    string `json:"clientType"`
	CompanyName   string `json:"companyName"`
	PositionTitle string `json:"positionTitle"`
	Budget        string `json:"budget"`
	Timeline      string `json:"timeline"`
	Requirements  string `json:"requirements"`
	ContactEmail  string `json:"contactEmail" validate:"required,email"`
}

// NewHiringRequest returns a request with clientType preset, so a body that omits it decodes as a company.
func NewHiringRequest() HiringRequest {
	return HiringRequest{ClientType: ClientTypeCompany}
}

// ContactMessage is a free-form message from the contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message"`
}

func (ProjectRequest) Kind() Kind { return KindProject }
func (HiringRequest) Kind() Kind  { return KindHiring }
func (ContactMessage) Kind() Kind { return KindContact }

func (ProjectRequest) isSubmission() {}
func (HiringRequest) isSubmission()  {}
func (ContactMessage) isSubmission() {}

// StringOr dereferences an optional field, falling back when it is nil or empty.
func StringOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
