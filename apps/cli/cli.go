package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"syscall"

	"golang.org/x/term"

	"github.com/campuskit/gradebook/core"
	"github.com/campuskit/gradebook/core/course"
	"github.com/campuskit/gradebook/core/user"
	"github.com/campuskit/gradebook/report"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	isTerminalFunc   = term.IsTerminal   // mockable
)

type commandLine struct {
	in  *bufio.Scanner
	out io.Writer

	usrSvc *user.Service
	crsSvc *course.Service
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	fmt.Fprintf(cli.out, format, args...)
}

func (cli *commandLine) prompt(label string) string {
	cli.printf("%s", label)
	if !cli.in.Scan() {
		return ""
	}
	return core.CleanString(cli.in.Text())
}

func (cli *commandLine) promptPassword(label string) string {
	if !isTerminalFunc(int(syscall.Stdin)) {
		// piped input (tests, scripts): read a plain line
		return cli.prompt(label)
	}
	cli.printf("%s", label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.printf("\n")
	if err != nil {
		return ""
	}
	return string(pwd)
}

// printErr renders core errors the way the menus expect: field errors
// one per line, sentinels as-is.
func (cli *commandLine) printErr(err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		if len(vErr.Fields) == 0 {
			cli.printf("Invalid input: %v\n", vErr)
			return
		}
		for _, fld := range vErr.Fields {
			cli.printf("Invalid %s: %s\n", fld.Field, fld.Error)
		}
		return
	}
	cli.printf("Error: %v\n", err)
}

func (cli *commandLine) run() error {
	for {
		cli.printf("\n=== %s ===\n", core.Conf.GetString("appName"))
		cli.printf("1. Register\n2. Login\n3. Exit\n")

		switch cli.prompt("Select option: ") {
		case "1":
			cli.registerUser()
		case "2":
			usr, ok := cli.login()
			if !ok {
				continue
			}
			switch usr.Kind {
			case user.KindStudent:
				cli.studentMenu(usr)
			case user.KindProfessor:
				cli.professorMenu(usr)
			}
		case "3":
			cli.printf("Goodbye!\n")
			return nil
		default:
			cli.printf("Invalid option.\n")
		}
	}
}

func (cli *commandLine) registerUser() {
	cli.printf("\n=== User Registration ===\n")
	cli.printf("1. Student\n2. Professor\n")

	var kind user.Kind
	switch sel := cli.prompt("Select user type: "); sel {
	case "1":
		kind = user.KindStudent
	case "2":
		kind = user.KindProfessor
	default:
		kind = user.Kind(sel) // rejected by the registry
	}

	nu := user.NewUser{
		Kind:  kind,
		Name:  cli.prompt("Enter full name: "),
		Email: cli.prompt("Enter email: "),
		Phone: cli.prompt("Enter phone number: "),
	}
	nu.Password = cli.promptPassword("Enter password: ")

	usr, err := cli.usrSvc.Register(nu)
	if err != nil {
		cli.printErr(err)
		return
	}
	cli.printf("Generated %s ID: %s\n", usr.Kind, usr.ID)
	cli.printf("Registration successful!\n")
}

func (cli *commandLine) login() (user.User, bool) {
	cli.printf("\n=== Login ===\n")
	id := cli.prompt("Enter ID: ")

	// an active session skips the password prompt entirely
	if cli.usrSvc.HasActiveSession(id) {
		usr, err := cli.usrSvc.Login(id, "", false)
		if err != nil {
			cli.printErr(err)
			return user.User{}, false
		}
		return usr, true
	}

	pwd := cli.promptPassword("Enter password: ")
	stay := cli.prompt("Stay logged in? (y/n): ") == "y"

	usr, err := cli.usrSvc.Login(id, pwd, stay)
	if err != nil {
		if err == user.ErrNotFound || err == user.ErrInvalidCredentials {
			cli.printf("Invalid credentials!\n")
		} else {
			cli.printErr(err)
		}
		return user.User{}, false
	}
	cli.printf("Login successful!\n")
	return usr, true
}

func (cli *commandLine) studentMenu(std user.User) {
	for {
		cli.printf("\n=== Student Menu ===\n")
		cli.printf("1. View Available Courses\n2. Enroll in Course\n3. View My Grades\n4. Logout\n")

		switch cli.prompt("Select option: ") {
		case "1":
			cli.listCourses()
		case "2":
			courseID := cli.prompt("Enter course ID: ")
			if err := cli.crsSvc.Enroll(courseID, std.ID); err != nil {
				cli.printErr(err)
				continue
			}
			cli.printf("%s successfully enrolled.\n", std.Name)
		case "3":
			cli.viewStudentGrades(std.ID)
		case "4":
			if err := cli.usrSvc.Logout(std.ID); err != nil {
				cli.printErr(err)
			}
			cli.printf("Logged out successfully!\n")
			return
		default:
			cli.printf("Invalid option.\n")
		}
	}
}

func (cli *commandLine) professorMenu(prof user.User) {
	for {
		cli.printf("\n=== Professor Menu ===\n")
		cli.printf("1. Create New Course\n2. View My Courses\n3. Manage Grades\n")
		cli.printf("4. Export Grade Sheet\n5. View Class Statistics\n6. Logout\n")

		switch cli.prompt("Select option: ") {
		case "1":
			cli.createCourse(prof.ID)
		case "2":
			cli.listProfessorCourses(prof.ID)
		case "3":
			cli.manageGrades(prof.ID)
		case "4":
			cli.exportGrades(prof.ID)
		case "5":
			cli.showStatistics(prof.ID)
		case "6":
			if err := cli.usrSvc.Logout(prof.ID); err != nil {
				cli.printErr(err)
			}
			cli.printf("Logged out successfully!\n")
			return
		default:
			cli.printf("Invalid option.\n")
		}
	}
}

func (cli *commandLine) listCourses() {
	courses, err := cli.crsSvc.ListAll()
	if err != nil {
		cli.printErr(err)
		return
	}
	cli.printf("\n=== Available Courses ===\n")
	for _, crs := range courses {
		profName := crs.ProfessorID
		if prof, err := cli.usrSvc.GetByID(crs.ProfessorID); err == nil {
			profName = prof.Name
		}
		cli.printf("\nCourse ID: %s\nName: %s\nProfessor: %s\nCapacity: %d/%d\n",
			crs.ID, crs.Name, profName, len(crs.EnrolledStudentIDs), crs.Capacity)
		for _, sched := range crs.Schedules {
			cli.printf("Schedule: %s\n", sched)
		}
	}
}

func (cli *commandLine) listProfessorCourses(professorID string) {
	courses, err := cli.crsSvc.ListByProfessor(professorID)
	if err != nil {
		cli.printErr(err)
		return
	}
	cli.printf("\n=== Your Courses ===\n")
	for _, crs := range courses {
		cli.printf("ID: %s, Name: %s, Students Enrolled: %d/%d\n",
			crs.ID, crs.Name, len(crs.EnrolledStudentIDs), crs.Capacity)
	}
}

func (cli *commandLine) createCourse(professorID string) {
	cli.printf("\n=== Create New Course ===\n")
	nc := course.NewCourse{
		ProfessorID: professorID,
		Name:        cli.prompt("Enter course name: "),
	}
	capacity, err := strconv.Atoi(cli.prompt("Enter course capacity: "))
	if err != nil {
		cli.printf("Invalid capacity!\n")
		return
	}
	nc.Capacity = capacity

	crs, err := cli.crsSvc.Create(nc)
	if err != nil {
		cli.printErr(err)
		return
	}
	cli.printf("Course created successfully! Course ID: %s\n", crs.ID)
}

func (cli *commandLine) manageGrades(professorID string) {
	cli.printf("\n=== Manage Grades ===\n")
	crs, err := cli.crsSvc.EnsureOwner(professorID, cli.prompt("Enter course ID: "))
	if err != nil {
		cli.printErr(err)
		return
	}

	cli.printf("\n1. Enter grades\n2. Toggle grade visibility\n")
	switch cli.prompt("Select option: ") {
	case "1":
		for _, studentID := range crs.EnrolledStudentIDs {
			name := studentID
			if std, err := cli.usrSvc.GetByID(studentID); err == nil {
				name = std.Name
			}
			cli.printf("\nStudent: %s (%s)\n", name, studentID)
			for _, comp := range crs.Components {
				raw := cli.prompt(fmt.Sprintf("Enter %s grade: ", comp))
				value, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					cli.printf("Invalid grade! Please enter a number.\n")
					continue
				}
				if err := cli.crsSvc.SetGrade(crs.ID, studentID, comp, value); err != nil {
					cli.printErr(err)
				}
			}
		}
		cli.printf("Grades updated successfully!\n")
	case "2":
		visible, err := cli.crsSvc.ToggleVisibility(crs.ID)
		if err != nil {
			cli.printErr(err)
			return
		}
		cli.printf("Grades visibility set to %t\n", visible)
	default:
		cli.printf("Invalid option.\n")
	}
}

func (cli *commandLine) viewStudentGrades(studentID string) {
	std, err := cli.usrSvc.GetByID(studentID)
	if err != nil {
		cli.printErr(err)
		return
	}
	cli.printf("\n=== Your Grades ===\n")
	for _, courseID := range std.EnrolledCourseIDs {
		rpt, err := cli.crsSvc.ViewGrades(studentID, courseID)
		if err != nil {
			if err == course.ErrNotFound {
				cli.printf("\nCourse %s no longer exists.\n", courseID)
				continue
			}
			cli.printErr(err)
			continue
		}
		if rpt.Hidden {
			cli.printf("\nGrades for %s are not yet available.\n", rpt.CourseName)
			continue
		}
		cli.printf("\nCourse: %s (%s)\n", rpt.CourseName, rpt.CourseID)
		for _, comp := range rpt.Components {
			cli.printf("%s: %g\n", comp, rpt.Scores[comp])
		}
		cli.printf("Total Grade: %g\n", rpt.Total)
	}
}

func (cli *commandLine) exportGrades(professorID string) {
	crs, err := cli.crsSvc.EnsureOwner(professorID, cli.prompt("Enter course ID: "))
	if err != nil {
		cli.printErr(err)
		return
	}
	sheet, err := cli.crsSvc.GradeSheet(crs.ID)
	if err != nil {
		cli.printErr(err)
		return
	}
	if len(sheet.Rows) == 0 {
		cli.printf("No grades available for this course.\n")
		return
	}

	exportDir := core.Conf.GetString("exportDir")
	var path string
	switch cli.prompt("Format (1. CSV / 2. XLSX): ") {
	case "2":
		path, err = report.SaveXLSX(exportDir, sheet)
	default:
		path, err = report.SaveCSV(exportDir, sheet)
	}
	if err != nil {
		cli.printErr(err)
		return
	}
	cli.printf("Grades exported successfully to %s!\n", path)
}

func (cli *commandLine) showStatistics(professorID string) {
	crs, err := cli.crsSvc.EnsureOwner(professorID, cli.prompt("Enter course ID: "))
	if err != nil {
		cli.printErr(err)
		return
	}
	summaries, err := cli.crsSvc.Statistics(crs.ID)
	if err != nil {
		cli.printErr(err)
		return
	}
	if len(summaries) == 0 {
		cli.printf("No grades available for this course.\n")
		return
	}

	cli.printf("\n=== Statistics for %s ===\n", crs.Name)
	cli.printf("%-12s %6s %8s %8s %8s %8s %8s %8s %8s\n",
		"Component", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max")
	for _, cs := range summaries {
		cli.printf("%-12s %6d %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f\n",
			cs.Component, cs.Count, cs.Mean, cs.Std, cs.Min, cs.Q1, cs.Median, cs.Q3, cs.Max)
	}
}
