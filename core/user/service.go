package user

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/campuskit/gradebook/core"
	"github.com/campuskit/gradebook/core/session"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	randIntn = rand.Intn // mockable
)

type (
	Repository interface {
		UserExists(id string) (bool, error)
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		UpdateUser(usr User) (User, error)
	}

	Service struct {
		repo     Repository
		sessions *session.Tracker
		logger   core.Logger
	}
)

func NewService(repo Repository, sessions *session.Tracker, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// GenerateStudentID produces a unique 9-digit ID with leading '4'.
// Uniqueness holds at return time only; there is a single caller.
func (svc *Service) GenerateStudentID() (string, error) {
	return svc.generateID(StudentIDPrefix, StudentIDLen)
}

// GenerateProfessorID produces a unique 4-digit ID with leading '1'.
func (svc *Service) GenerateProfessorID() (string, error) {
	return svc.generateID(ProfessorIDPrefix, ProfessorIDLen)
}

func (svc *Service) generateID(prefix string, length int) (string, error) {
	for {
		var b strings.Builder
		b.WriteString(prefix)
		for i := len(prefix); i < length; i++ {
			b.WriteByte(byte('0' + randIntn(10)))
		}
		id := b.String()
		exists, err := svc.repo.UserExists(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
}

// Register validates nu, assigns a kind-tagged ID and stores the user.
// Nothing is persisted when validation fails.
func (svc *Service) Register(nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}

	var (
		id  string
		err error
	)
	switch nu.Kind {
	case KindStudent:
		id, err = svc.GenerateStudentID()
	case KindProfessor:
		id, err = svc.GenerateProfessorID()
	}
	if err != nil {
		return User{}, err
	}

	usr := User{
		ID:    id,
		Kind:  nu.Kind,
		Name:  nu.Name,
		Email: nu.Email,
		Phone: nu.Phone,
	}
	switch nu.Kind {
	case KindStudent:
		usr.EnrolledCourseIDs = []string{}
	case KindProfessor:
		usr.OwnedCourseIDs = []string{}
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err = svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}
	svc.logger.Info("user registered", "userID", usr.ID, "kind", string(usr.Kind))
	return usr, nil
}

// Authenticate looks the user up and checks the supplied password
// against the stored hash.
func (svc *Service) Authenticate(id, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// VerifyCredentials reports whether id/pwd identify a stored user.
func (svc *Service) VerifyCredentials(id, pwd string) bool {
	_, err := svc.Authenticate(id, pwd)
	return err == nil
}

// HasActiveSession reports whether the user is in the active-session
// set; callers use it to skip the password prompt.
func (svc *Service) HasActiveSession(id string) bool {
	return svc.sessions.Contains(id)
}

// Login authenticates the user and records the stay-logged-in choice.
// A user with an active session is returned as-is, without a password
// check; that short-circuit is what makes "remember me" work across
// restarts.
func (svc *Service) Login(id, pwd string, stayLoggedIn bool) (User, error) {
	if svc.sessions.Contains(id) {
		return svc.repo.GetUserByID(id)
	}

	usr, err := svc.Authenticate(id, pwd)
	if err != nil {
		return User{}, err
	}

	usr.StaysLoggedIn = stayLoggedIn
	if stayLoggedIn {
		svc.sessions.Add(usr.ID)
	}
	if usr, err = svc.repo.UpdateUser(usr); err != nil {
		return User{}, err
	}
	svc.logger.Info("user logged in", "userID", usr.ID, "staysLoggedIn", stayLoggedIn)
	return usr, nil
}

// Logout clears the stay-logged-in flag and closes the active session.
// Logging out a user who is not logged in is a no-op.
func (svc *Service) Logout(id string) error {
	svc.sessions.Remove(id)

	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	if usr.StaysLoggedIn {
		usr.StaysLoggedIn = false
		if _, err := svc.repo.UpdateUser(usr); err != nil {
			return err
		}
	}
	svc.logger.Info("user logged out", "userID", id)
	return nil
}

// RestoreSessions reopens sessions for every user persisted with the
// stay-logged-in flag set. Called once at startup, after load.
func (svc *Service) RestoreSessions() error {
	users, err := svc.repo.QueryAllUsers()
	if err != nil {
		return err
	}
	for _, usr := range users {
		if usr.StaysLoggedIn {
			svc.sessions.Add(usr.ID)
		}
	}
	return nil
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}
