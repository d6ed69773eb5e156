package user

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/campuskit/gradebook/core"
)

// Kind tags a User as a student or a professor. Role-specific behavior
// switches on it explicitly; there is no subtype hierarchy.
type Kind string

const (
	KindStudent   Kind = "student"
	KindProfessor Kind = "professor"
)

// ID formats: the leading digit encodes the kind.
const (
	StudentIDLen      = 9
	StudentIDPrefix   = "4"
	ProfessorIDLen    = 4
	ProfessorIDPrefix = "1"
)

type User struct {
	ID            string `json:"id"`
	Kind          Kind   `json:"kind"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PasswordHash  []byte `json:"-"`
	StaysLoggedIn bool   `json:"stays_logged_in"`

	// EnrolledCourseIDs is set for students only, in enrollment order.
	EnrolledCourseIDs []string `json:"enrolled_course_ids,omitempty"`
	// OwnedCourseIDs is set for professors only, in creation order.
	OwnedCourseIDs []string `json:"owned_course_ids,omitempty"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// Clone returns a deep copy; repositories hand these out so callers can
// stage changes without touching stored state.
func (u User) Clone() User {
	if u.PasswordHash != nil {
		hash := make([]byte, len(u.PasswordHash))
		copy(hash, u.PasswordHash)
		u.PasswordHash = hash
	}
	u.EnrolledCourseIDs = cloneStrings(u.EnrolledCourseIDs)
	u.OwnedCourseIDs = cloneStrings(u.OwnedCourseIDs)
	return u
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (u *User) IsStudent() bool {
	return u.Kind == KindStudent
}

func (u *User) IsProfessor() bool {
	return u.Kind == KindProfessor
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Kind     Kind   `json:"kind" validate:"required,userkind"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"omitempty,min=7"`
}

func (nu *NewUser) Validate() error {
	nu.Kind = Kind(core.CleanString(string(nu.Kind), true /* lower */))
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)

	if err := core.Validate.Struct(nu); err != nil {
		return core.TranslateValidationError(err)
	}
	return nil
}
