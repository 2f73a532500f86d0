package model

import "time"

const (
	ResourceUser  = "User"
	ResourceEvent = "Event"
)

type User struct {
	Id        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OwnerId returns the id of the caller a record belongs to.
// A User owns itself.
func (u *User) OwnerId() string {
	return u.Id
}

type Event struct {
	Id     string `bson:"_id" json:"id"`
	UserId string `bson:"user" json:"user"`

	Location   string `bson:"location,omitempty" json:"location,omitempty"`
	EventTitle string `bson:"event-title" json:"event-title"`
	Email      string `bson:"email" json:"email"`
	Tel        string `bson:"tel,omitempty" json:"tel,omitempty"`
	BirthMonth string `bson:"birth-month,omitempty" json:"birth-month,omitempty"`
	BirthDay   string `bson:"birth-day,omitempty" json:"birth-day,omitempty"`
	BirthYear  string `bson:"birth-year,omitempty" json:"birth-year,omitempty"`

	EducationLanguage  string `bson:"education-language,omitempty" json:"education-language,omitempty"`
	EducationToYear    string `bson:"education-to-year,omitempty" json:"education-to-year,omitempty"`
	EducationToMonth   string `bson:"education-to-month,omitempty" json:"education-to-month,omitempty"`
	EducationFromYear  string `bson:"education-from-year,omitempty" json:"education-from-year,omitempty"`
	EducationFromMonth string `bson:"education-from-month,omitempty" json:"education-from-month,omitempty"`
	Specialization     string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	DegreeLevel        string `bson:"degree-level,omitempty" json:"degree-level,omitempty"`
	UniversityCountry  string `bson:"university-country,omitempty" json:"university-country,omitempty"`
	University         string `bson:"university,omitempty" json:"university,omitempty"`

	ExperienceDescription string `bson:"experience-description,omitempty" json:"experience-description,omitempty"`
	ExperienceToYear      string `bson:"experience-to-year,omitempty" json:"experience-to-year,omitempty"`
	ExperienceToMonth     string `bson:"experience-to-month,omitempty" json:"experience-to-month,omitempty"`
	ExperienceFromYear    string `bson:"experience-from-year,omitempty" json:"experience-from-year,omitempty"`
	ExperienceFromMonth   string `bson:"experience-from-month,omitempty" json:"experience-from-month,omitempty"`
	ExperiencePosition    string `bson:"experience-position,omitempty" json:"experience-position,omitempty"`
	ExperienceCompany     string `bson:"experience-company,omitempty" json:"experience-company,omitempty"`

	Source         string `bson:"source,omitempty" json:"source,omitempty"`
	Availability   string `bson:"availability,omitempty" json:"availability,omitempty"`
	AdditionalInfo string `bson:"additional-info,omitempty" json:"additional-info,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Owner is filled when the "user" relation is populated. It is never
	// stored alongside the event.
	Owner *User `bson:"-" json:"owner,omitempty"`
}

func (e *Event) OwnerId() string {
	return e.UserId
}

// UserWritableFields are the User attributes a client may supply on
// create/update. Role assignment is restricted separately by the access rules.
var UserWritableFields = []string{"email", "name", "role"}

// EventWritableFields are the Event attributes a client may supply on
// create/update: the owner reference plus the form fields.
var EventWritableFields = []string{
	"user",
	"location", "event-title", "email", "tel",
	"birth-month", "birth-day", "birth-year",
	"education-language", "education-to-year", "education-to-month",
	"education-from-year", "education-from-month", "specialization",
	"degree-level", "university-country", "university",
	"experience-description", "experience-to-year", "experience-to-month",
	"experience-from-year", "experience-from-month", "experience-position",
	"experience-company",
	"source", "availability", "additional-info",
}

var userRequiredFields = []string{"email", "name"}
var eventRequiredFields = []string{"user", "event-title", "email"}

// ValidateUserDoc checks a client-supplied User document for required fields.
func ValidateUserDoc(doc map[string]any) error {
	return requireFields(ResourceUser, doc, userRequiredFields)
}

// ValidateEventDoc checks a client-supplied Event document for required fields.
func ValidateEventDoc(doc map[string]any) error {
	return requireFields(ResourceEvent, doc, eventRequiredFields)
}

func requireFields(resource string, doc map[string]any, required []string) error {
	for _, field := range required {
		v, ok := doc[field]
		if !ok {
			return &ValidationError{Resource: resource, Field: field}
		}
		if s, isStr := v.(string); isStr && s == "" {
			return &ValidationError{Resource: resource, Field: field}
		}
	}
	return nil
}
