package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"golang.org/x/term"

	"github.com/campuskit/gradebook/core"
	"github.com/campuskit/gradebook/core/course"
	"github.com/campuskit/gradebook/core/session"
	"github.com/campuskit/gradebook/core/user"
	inmemdb "github.com/campuskit/gradebook/storage/inmem"
	testutil "github.com/campuskit/gradebook/tests"
)

func setup(t *testing.T, script string) (*commandLine, *bytes.Buffer, user.Repository, course.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	sessions := session.NewTracker(core.NopLogger{})

	// piped input: passwords are read as plain lines
	isTerminalFunc = func(fd int) bool { return false }
	t.Cleanup(func() { isTerminalFunc = term.IsTerminal })

	var out bytes.Buffer
	cli := &commandLine{
		in:     bufio.NewScanner(strings.NewReader(script)),
		out:    &out,
		usrSvc: user.NewService(usrRepo, sessions, core.NopLogger{}),
		crsSvc: course.NewService(crsRepo, usrRepo, core.NopLogger{}),
	}
	return cli, &out, usrRepo, crsRepo
}

func Test_commandLine_register(t *testing.T) {
	script := strings.Join([]string{
		"1",          // register
		"2",          // professor
		"Di Mbala",   // name
		"di@test.cd", // email
		"0812345678", // phone
		"s3cretZ!",   // password
		"3",          // exit
	}, "\n") + "\n"

	cli, out, usrRepo, _ := setup(t, script)
	if err := cli.run(); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	if !strings.Contains(out.String(), "Registration successful!") {
		t.Errorf("run() output missing confirmation:\n%s", out.String())
	}
	users, _ := usrRepo.QueryAllUsers()
	if len(users) != 1 || users[0].Kind != user.KindProfessor {
		t.Errorf("run() stored users = %+v, want one professor", users)
	}
}

func Test_commandLine_registerInvalidRole(t *testing.T) {
	script := strings.Join([]string{
		"1",         // register
		"9",         // bogus user type
		"X",         // name
		"x@test.cd", // email
		"",          // phone
		"s3cretZ!",  // password
		"3",         // exit
	}, "\n") + "\n"

	cli, out, usrRepo, _ := setup(t, script)
	if err := cli.run(); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	if !strings.Contains(out.String(), "Invalid kind") {
		t.Errorf("run() output missing role rejection:\n%s", out.String())
	}
	users, _ := usrRepo.QueryAllUsers()
	if len(users) != 0 {
		t.Errorf("run() stored %d users on invalid role", len(users))
	}
}

func Test_commandLine_createCourse(t *testing.T) {
	script := strings.Join([]string{
		"2", "1234", "s3cretZ!", "n",
		"1", "Algebra", "30",
		"6",
		"3",
	}, "\n") + "\n"

	cli, out, usrRepo, crsRepo := setup(t, script)
	testutil.CreateProfessor(t, usrRepo, "1234", "Di Mbala", "di@test.cd", "s3cretZ!")

	if err := cli.run(); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Course created successfully! Course ID: ") {
		t.Errorf("run() output missing creation confirmation:\n%s", out.String())
	}

	courses, err := crsRepo.QueryAllCourses()
	if err != nil {
		t.Fatalf("QueryAllCourses() failed: %v", err)
	}
	if len(courses) != 1 || courses[0].Name != "Algebra" || courses[0].Capacity != 30 {
		t.Errorf("stored courses = %+v, want one Algebra with capacity 30", courses)
	}
}

func Test_commandLine_professorAndStudentFlow(t *testing.T) {
	script := strings.Join([]string{
		// professor: check the course roster, then log out
		"2", "1234", "s3cretZ!", "n",
		"2",
		"6",
		// student: enroll, grades still hidden, log out
		"2", "411111111", "s3cretZ!", "n",
		"2", "1000",
		"3",
		"4",
		"3", // exit
	}, "\n") + "\n"

	cli, out, usrRepo, crsRepo := setup(t, script)
	testutil.CreateProfessor(t, usrRepo, "1234", "Di Mbala", "di@test.cd", "s3cretZ!")
	testutil.CreateStudent(t, usrRepo, "411111111", "Awa Eba", "awa@test.cd", "s3cretZ!")
	testutil.CreateCourse(t, crsRepo, usrRepo, "1000", "1234", "Algebra", 1)

	if err := cli.run(); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"ID: 1000, Name: Algebra, Students Enrolled: 0/1",
		"Awa Eba successfully enrolled.",
		"Grades for Algebra are not yet available.",
		"Goodbye!",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("run() output missing %q:\n%s", want, output)
		}
	}

	crs, err := crsRepo.GetCourseByID("1000")
	if err != nil {
		t.Fatalf("course not stored: %v", err)
	}
	if len(crs.EnrolledStudentIDs) != 1 || crs.EnrolledStudentIDs[0] != "411111111" {
		t.Errorf("enrolled = %v, want [411111111]", crs.EnrolledStudentIDs)
	}
}

func Test_commandLine_invalidCredentials(t *testing.T) {
	script := strings.Join([]string{
		"2", "411111111", "wrong-pass", "n",
		"3",
	}, "\n") + "\n"

	cli, out, usrRepo, _ := setup(t, script)
	testutil.CreateStudent(t, usrRepo, "411111111", "Awa", "awa@test.cd", "s3cretZ!")

	if err := cli.run(); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if !strings.Contains(out.String(), "Invalid credentials!") {
		t.Errorf("run() output missing credential rejection:\n%s", out.String())
	}
}
