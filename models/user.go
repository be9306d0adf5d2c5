package models

import "time"

// Field is the column name of a user record field.
type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldDOB       Field = "dob"
	FieldGender    Field = "gender"
	FieldCountry   Field = "country"
	FieldState     Field = "state"
	FieldCity      Field = "city"
	FieldPhotoURL  Field = "profile_photo_url"
)

// TextFields lists the string fields of a record in display order.
var TextFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldDOB,
	FieldGender,
	FieldCountry,
	FieldState,
	FieldCity,
}

// Known reports whether f names a column of the users table.
func (f Field) Known() bool {
	if f == FieldPhotoURL {
		return true
	}
	for _, tf := range TextFields {
		if f == tf {
			return true
		}
	}
	return false
}

// Editable reports whether f can be changed through an edit session.
// Email is fixed and the photo column only moves through the photo pipeline.
func (f Field) Editable() bool {
	return f.Known() && f != FieldEmail && f != FieldPhotoURL
}

type UserRecord struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	DOB             string    `json:"dob"`
	Gender          string    `json:"gender"`
	Country         string    `json:"country"`
	State           string    `json:"state"`
	City            string    `json:"city"`
	ProfilePhotoURL *string   `json:"profile_photo_url"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Get returns the value of a text field. Unknown fields read as "".
func (u *UserRecord) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return u.FirstName
	case FieldLastName:
		return u.LastName
	case FieldEmail:
		return u.Email
	case FieldPhone:
		return u.Phone
	case FieldDOB:
		return u.DOB
	case FieldGender:
		return u.Gender
	case FieldCountry:
		return u.Country
	case FieldState:
		return u.State
	case FieldCity:
		return u.City
	case FieldPhotoURL:
		if u.ProfilePhotoURL != nil {
			return *u.ProfilePhotoURL
		}
	}
	return ""
}

// Set assigns a text field and reports whether f was recognised.
func (u *UserRecord) Set(f Field, value string) bool {
	switch f {
	case FieldFirstName:
		u.FirstName = value
	case FieldLastName:
		u.LastName = value
	case FieldEmail:
		u.Email = value
	case FieldPhone:
		u.Phone = value
	case FieldDOB:
		u.DOB = value
	case FieldGender:
		u.Gender = value
	case FieldCountry:
		u.Country = value
	case FieldState:
		u.State = value
	case FieldCity:
		u.City = value
	default:
		return false
	}
	return true
}

func (u *UserRecord) PhotoURL() (string, bool) {
	if u.ProfilePhotoURL == nil || *u.ProfilePhotoURL == "" {
		return "", false
	}
	return *u.ProfilePhotoURL, true
}

func (u *UserRecord) Clone() *UserRecord {
	if u == nil {
		return nil
	}
	c := *u
	if u.ProfilePhotoURL != nil {
		url := *u.ProfilePhotoURL
		c.ProfilePhotoURL = &url
	}
	return &c
}

// Patch is a partial update keyed by column. A nil value writes NULL.
type Patch map[Field]any

type DisplayField struct {
	Label    string `json:"label"`
	Key      Field  `json:"key"`
	Editable bool   `json:"editable"`
}

// DisplayFields is the field table rendered by the profile screen.
var DisplayFields = []DisplayField{
	{Label: "First Name", Key: FieldFirstName, Editable: true},
	{Label: "Last Name", Key: FieldLastName, Editable: true},
	{Label: "Email", Key: FieldEmail, Editable: false},
	{Label: "Phone", Key: FieldPhone, Editable: true},
	{Label: "Date of Birth", Key: FieldDOB, Editable: true},
	{Label: "Gender", Key: FieldGender, Editable: true},
	{Label: "Country", Key: FieldCountry, Editable: true},
	{Label: "State", Key: FieldState, Editable: true},
	{Label: "City", Key: FieldCity, Editable: true},
}
