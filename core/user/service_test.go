package user_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/campuskit/gradebook/core"
	"github.com/campuskit/gradebook/core/session"
	"github.com/campuskit/gradebook/core/user"
	inmemdb "github.com/campuskit/gradebook/storage/inmem"
	testutil "github.com/campuskit/gradebook/tests"
)

func setup(t *testing.T) (*user.Service, user.Repository, *session.Tracker) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repo := inmemdb.NewUserRepository(db)
	sessions := session.NewTracker(core.NopLogger{})
	return user.NewService(repo, sessions, core.NopLogger{}), repo, sessions
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name       string
		nu         user.NewUser
		wantPrefix string
		wantLen    int
		wantErr    bool
	}{
		{
			name:       "student gets a 9-digit ID starting with 4",
			nu:         user.NewUser{Kind: user.KindStudent, Name: "Awa Eba", Email: "awa@test.cd", Password: "s3cretZ!", Phone: "0812345678"},
			wantPrefix: "4", wantLen: 9,
		},
		{
			name:       "professor gets a 4-digit ID starting with 1",
			nu:         user.NewUser{Kind: user.KindProfessor, Name: "Di Mbala", Email: "di@test.cd", Password: "s3cretZ!", Phone: "0812345679"},
			wantPrefix: "1", wantLen: 4,
		},
		{
			name:    "invalid role selector",
			nu:      user.NewUser{Kind: "admin", Name: "X", Email: "x@test.cd", Password: "s3cretZ!"},
			wantErr: true,
		},
		{
			name:    "role selector is required",
			nu:      user.NewUser{Name: "X", Email: "x@test.cd", Password: "s3cretZ!"},
			wantErr: true,
		},
		{
			name:    "short password",
			nu:      user.NewUser{Kind: user.KindStudent, Name: "X", Email: "x@test.cd", Password: "abc"},
			wantErr: true,
		},
		{
			name:    "password similar to email",
			nu:      user.NewUser{Kind: user.KindStudent, Name: "X", Email: "x@test.cd", Password: "x@test.cd"},
			wantErr: true,
		},
		{
			name:    "missing email",
			nu:      user.NewUser{Kind: user.KindStudent, Name: "X", Password: "s3cretZ!"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := setup(t)

			usr, err := svc.Register(tt.nu)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Register() expected an error")
				}
				if _, ok := err.(*core.ValidationError); !ok {
					t.Errorf("Register() error = %T, want *core.ValidationError", err)
				}
				// nothing may be stored on invalid input
				users, _ := repo.QueryAllUsers()
				if len(users) != 0 {
					t.Errorf("Register() stored %d users on invalid input", len(users))
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() failed: %v", err)
			}
			if len(usr.ID) != tt.wantLen || !strings.HasPrefix(usr.ID, tt.wantPrefix) || !isDigits(usr.ID) {
				t.Errorf("Register() ID = %q, want %d digits starting with %q", usr.ID, tt.wantLen, tt.wantPrefix)
			}
			if usr.Kind != tt.nu.Kind {
				t.Errorf("Register() kind = %q, want %q", usr.Kind, tt.nu.Kind)
			}
			if err := usr.CheckPassword(tt.nu.Password); err != nil {
				t.Errorf("Register() stored hash does not match password: %v", err)
			}
			if bytes.Contains(usr.PasswordHash, []byte(tt.nu.Password)) {
				t.Error("Register() stored the plaintext password")
			}
			if _, err := repo.GetUserByID(usr.ID); err != nil {
				t.Errorf("Register() user not stored: %v", err)
			}
		})
	}
}

func TestService_Register_hashesNeverCollide(t *testing.T) {
	svc, _, _ := setup(t)

	a, err := svc.Register(user.NewUser{Kind: user.KindStudent, Name: "A", Email: "a@test.cd", Password: "s3cretZ!"})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	b, err := svc.Register(user.NewUser{Kind: user.KindStudent, Name: "B", Email: "b@test.cd", Password: "otherPwd9"})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if bytes.Equal(a.PasswordHash, b.PasswordHash) {
		t.Error("different passwords produced the same stored hash")
	}
	if a.CheckPassword("otherPwd9") == nil {
		t.Error("CheckPassword() accepted the wrong password")
	}
}

func TestService_GenerateStudentID_retriesOnCollision(t *testing.T) {
	svc, repo, _ := setup(t)
	testutil.CreateStudent(t, repo, "400000000", "Taken", "taken@test.cd", "")

	var calls int
	restore := user.SetRandIntn(func(n int) int {
		calls++
		if calls <= 8 {
			return 0 // first draw collides with 400000000
		}
		return 1
	})
	defer restore()

	id, err := svc.GenerateStudentID()
	if err != nil {
		t.Fatalf("GenerateStudentID() failed: %v", err)
	}
	if id != "411111111" {
		t.Errorf("GenerateStudentID() = %q, want retry result 411111111", id)
	}
}

func TestService_Login(t *testing.T) {
	svc, repo, sessions := setup(t)
	usr := testutil.CreateStudent(t, repo, "412345678", "Awa", "awa@test.cd", "s3cretZ!")

	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.Login("499999999", "s3cretZ!", false); err != user.ErrNotFound {
			t.Errorf("Login() error = %v, want ErrNotFound", err)
		}
	})
	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login(usr.ID, "nope!!", false); err != user.ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})
	t.Run("no stay-logged-in leaves no session", func(t *testing.T) {
		if _, err := svc.Login(usr.ID, "s3cretZ!", false); err != nil {
			t.Fatalf("Login() failed: %v", err)
		}
		if sessions.Contains(usr.ID) {
			t.Error("Login(stay=false) opened a session")
		}
	})
	t.Run("stay-logged-in opens a session and persists the flag", func(t *testing.T) {
		if _, err := svc.Login(usr.ID, "s3cretZ!", true); err != nil {
			t.Fatalf("Login() failed: %v", err)
		}
		if !sessions.Contains(usr.ID) {
			t.Error("Login(stay=true) did not open a session")
		}
		stored, _ := repo.GetUserByID(usr.ID)
		if !stored.StaysLoggedIn {
			t.Error("Login(stay=true) did not persist StaysLoggedIn")
		}
	})
	t.Run("active session short-circuits the password check", func(t *testing.T) {
		got, err := svc.Login(usr.ID, "definitely-wrong", false)
		if err != nil {
			t.Fatalf("Login() with active session failed: %v", err)
		}
		if got.ID != usr.ID {
			t.Errorf("Login() = %q, want %q", got.ID, usr.ID)
		}
	})
}

func TestService_Logout(t *testing.T) {
	svc, repo, sessions := setup(t)
	usr := testutil.CreateStudent(t, repo, "412345678", "Awa", "awa@test.cd", "s3cretZ!")

	if _, err := svc.Login(usr.ID, "s3cretZ!", true); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	if err := svc.Logout(usr.ID); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if sessions.Contains(usr.ID) {
		t.Error("Logout() left the session open")
	}
	stored, _ := repo.GetUserByID(usr.ID)
	if stored.StaysLoggedIn {
		t.Error("Logout() left StaysLoggedIn set")
	}

	// idempotent; unknown IDs are fine too
	if err := svc.Logout(usr.ID); err != nil {
		t.Errorf("second Logout() failed: %v", err)
	}
	if err := svc.Logout("499999999"); err != nil {
		t.Errorf("Logout() of unknown user failed: %v", err)
	}
}

func TestService_VerifyCredentials(t *testing.T) {
	svc, repo, _ := setup(t)
	usr := testutil.CreateStudent(t, repo, "412345678", "Awa", "awa@test.cd", "s3cretZ!")

	if !svc.VerifyCredentials(usr.ID, "s3cretZ!") {
		t.Error("VerifyCredentials() = false for the right password")
	}
	if svc.VerifyCredentials(usr.ID, "wrong") {
		t.Error("VerifyCredentials() = true for the wrong password")
	}
	if svc.VerifyCredentials("499999999", "s3cretZ!") {
		t.Error("VerifyCredentials() = true for an unknown user")
	}
}

func TestService_RestoreSessions(t *testing.T) {
	svc, repo, sessions := setup(t)
	usr := testutil.CreateStudent(t, repo, "412345678", "Awa", "awa@test.cd", "s3cretZ!")
	usr.StaysLoggedIn = true
	if _, err := repo.UpdateUser(usr); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}
	testutil.CreateStudent(t, repo, "423456789", "Ebi", "ebi@test.cd", "s3cretZ!")

	if err := svc.RestoreSessions(); err != nil {
		t.Fatalf("RestoreSessions() failed: %v", err)
	}
	if !sessions.Contains(usr.ID) {
		t.Error("RestoreSessions() did not reopen the flagged session")
	}
	if sessions.Len() != 1 {
		t.Errorf("RestoreSessions() opened %d sessions, want 1", sessions.Len())
	}
}
