package testutil

import (
	"testing"

	"github.com/campuskit/gradebook/core/course"
	"github.com/campuskit/gradebook/core/user"
)

func CreateStudent(t *testing.T, repo user.Repository, id, name, email, pwd string) user.User {
	t.Helper()
	return createUser(t, repo, id, user.KindStudent, name, email, pwd)
}

func CreateProfessor(t *testing.T, repo user.Repository, id, name, email, pwd string) user.User {
	t.Helper()
	return createUser(t, repo, id, user.KindProfessor, name, email, pwd)
}

func createUser(t *testing.T, repo user.Repository, id string, kind user.Kind, name, email, pwd string) user.User {
	t.Helper()
	usr := user.User{
		ID:    id,
		Kind:  kind,
		Name:  name,
		Email: email,
		Phone: "0123456789",
	}
	switch kind {
	case user.KindStudent:
		usr.EnrolledCourseIDs = []string{}
	case user.KindProfessor:
		usr.OwnedCourseIDs = []string{}
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateCourse stores a course owned by profID and mirrors it on the
// professor's owned list, the way the course service does.
func CreateCourse(
	t *testing.T,
	crsRepo course.Repository,
	usrRepo user.Repository,
	id, profID, name string,
	capacity int,
) course.Course {
	t.Helper()
	crs := course.Course{
		ID:                 id,
		Name:               name,
		ProfessorID:        profID,
		Capacity:           capacity,
		EnrolledStudentIDs: []string{},
		Components:         append([]string(nil), course.DefaultComponents...),
		Grades:             make(map[string]map[string]float64),
	}
	crs, err := crsRepo.CreateCourse(crs)
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	prof, err := usrRepo.GetUserByID(profID)
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	prof.OwnedCourseIDs = append(prof.OwnedCourseIDs, crs.ID)
	if _, err := usrRepo.UpdateUser(prof); err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}
