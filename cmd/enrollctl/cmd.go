package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/noah-isme/course-enrollment-portal/internal/listing"
	"github.com/noah-isme/course-enrollment-portal/internal/models"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	portal      *service.PortalService
	courses     *service.CourseService
	enrollments *service.EnrollmentService
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  courses [-page N]                                  - list courses with active students")
	fmt.Fprintln(cli.out, "  add-course -name NAME -duration N -unit UNIT       - create a course")
	fmt.Fprintln(cli.out, "  edit-course -id ID -name NAME -duration N -unit UNIT - update a course")
	fmt.Fprintln(cli.out, "  delete-course -id ID                               - delete a course")
	fmt.Fprintln(cli.out, "  enrollments [-student S] [-course C] [-status S] [-order asc|desc] [-page N]")
	fmt.Fprintln(cli.out, "  enroll -student NAME -course ID                    - enroll a student")
	fmt.Fprintln(cli.out, "  pause|resume|drop|reenroll -id ID                  - change an enrollment status")
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch cmd := args[1]; cmd {
	case "courses":
		fs := cli.flagSet(cmd)
		page := fs.Int("page", 1, "page number")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listCourses(ctx, *page)

	case "add-course", "edit-course":
		fs := cli.flagSet(cmd)
		id := fs.Int64("id", 0, "course id (edit-course only)")
		name := fs.String("name", "", "course name")
		duration := fs.Int("duration", 0, "duration value")
		unit := fs.String("unit", string(models.DurationWeeks), "days, weeks or months")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		state := models.IdleCourseForm()
		if cmd == "edit-course" {
			if *id <= 0 {
				fs.Usage()
				return errHelp
			}
			state = models.CourseFormState{Mode: models.FormEditing, EditingID: *id}
		}
		input := models.CourseInput{CourseName: *name, DurationValue: *duration, DurationUnit: models.DurationUnit(strings.ToLower(*unit))}
		return cli.submitCourse(ctx, state, input)

	case "delete-course":
		fs := cli.flagSet(cmd)
		id := fs.Int64("id", 0, "course id")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *id <= 0 {
			fs.Usage()
			return errHelp
		}
		return cli.deleteCourse(ctx, *id)

	case "enrollments":
		fs := cli.flagSet(cmd)
		student := fs.String("student", "", "student name contains")
		course := fs.String("course", "", "course name contains")
		status := fs.String("status", "", "enrolled, paused or dropped")
		order := fs.String("order", string(listing.OrderAsc), "asc or desc")
		page := fs.Int("page", 1, "page number")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		query := service.EnrollmentsQuery{
			Filter: listing.EnrollmentFilter{Student: *student, Course: *course, Status: models.EnrollmentStatus(strings.ToLower(*status))},
			Order:  listing.ParseSortOrder(*order),
			Page:   *page,
		}
		if query.Filter.Status != "" && !query.Filter.Status.Valid() {
			return fmt.Errorf("unknown status %q", *status)
		}
		return cli.listEnrollments(ctx, query)

	case "enroll":
		fs := cli.flagSet(cmd)
		student := fs.String("student", "", "student name")
		course := fs.Int64("course", 0, "course id")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.enroll(ctx, models.EnrollmentInput{StudentName: *student, CourseID: *course})

	case string(models.ActionPause), string(models.ActionResume), string(models.ActionDrop), string(models.ActionReEnroll):
		fs := cli.flagSet(cmd)
		id := fs.Int64("id", 0, "enrollment id")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *id <= 0 {
			fs.Usage()
			return errHelp
		}
		return cli.transition(ctx, *id, models.EnrollmentAction(cmd))

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listCourses(ctx context.Context, page int) error {
	snap, err := cli.portal.Snapshot(ctx)
	if err != nil {
		return err
	}
	view := cli.portal.CoursesView(snap, service.CoursesQuery{Page: page})

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"ID", "Name", "Duration", "Active", "Students"})
	for _, row := range view.Rows {
		table.Append([]string{
			strconv.FormatInt(row.ID, 10),
			row.CourseName,
			fmt.Sprintf("%d %s", row.DurationValue, row.DurationUnit),
			strconv.Itoa(row.ActiveCount),
			strings.Join(row.ActiveStudents, ", "),
		})
	}
	table.Render()
	cli.pageLine(view.Pagination)
	return nil
}

func (cli *commandLine) listEnrollments(ctx context.Context, query service.EnrollmentsQuery) error {
	snap, err := cli.portal.Snapshot(ctx)
	if err != nil {
		return err
	}
	view := cli.portal.EnrollmentsView(snap, query)

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"ID", "Student", "Course", "Status", "Actions"})
	table.SetAutoMergeCellsByColumnIndex([]int{1})
	for _, group := range view.Groups {
		for _, row := range group.Rows {
			actions := make([]string, 0, len(row.Actions))
			for _, a := range row.Actions {
				actions = append(actions, string(a.Action))
			}
			table.Append([]string{
				strconv.FormatInt(row.ID, 10),
				group.Student,
				row.CourseName,
				string(row.Status),
				strings.Join(actions, " "),
			})
		}
	}
	table.Render()
	cli.pageLine(view.Pagination)
	return nil
}

func (cli *commandLine) pageLine(p models.Pagination) {
	total := p.TotalPages
	if total == 0 {
		total = 1
	}
	color.New(color.FgCyan).Fprintf(cli.out, "Page %d of %d (%d total)\n", p.Page, total, p.TotalCount)
}

func (cli *commandLine) submitCourse(ctx context.Context, state models.CourseFormState, input models.CourseInput) error {
	snap, err := cli.portal.Snapshot(ctx)
	if err != nil {
		return err
	}
	if id, editing := state.Editing(); editing {
		if _, ok := listing.FindCourse(snap.Courses, id); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, service.MsgCourseNotFound)
		}
	}
	result, err := cli.courses.Submit(ctx, state, input, snap.Courses)
	if result == nil {
		return err
	}
	cli.success("Saved course %d: %s", result.Course.ID, result.Course.CourseName)
	return err
}

func (cli *commandLine) deleteCourse(ctx context.Context, id int64) error {
	result, err := cli.courses.Delete(ctx, models.IdleCourseForm(), id)
	if result == nil {
		return err
	}
	cli.success("Deleted course %d", id)
	return err
}

func (cli *commandLine) enroll(ctx context.Context, input models.EnrollmentInput) error {
	snap, err := cli.portal.Snapshot(ctx)
	if err != nil {
		return err
	}
	result, err := cli.enrollments.Enroll(ctx, input, snap.Enrollments, snap.Courses)
	if result == nil {
		return err
	}
	cli.success("Enrolled %s (enrollment %d)", result.Enrollment.StudentName, result.Enrollment.ID)
	return err
}

func (cli *commandLine) transition(ctx context.Context, id int64, action models.EnrollmentAction) error {
	snap, err := cli.portal.Snapshot(ctx)
	if err != nil {
		return err
	}
	result, err := cli.enrollments.Transition(ctx, id, action, snap.Enrollments)
	if result == nil {
		return err
	}
	target, _ := action.Target()
	cli.success("Enrollment %d is now %s", id, target)
	return err
}

func (cli *commandLine) success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(cli.out, format+"\n", args...)
}

func (cli *commandLine) failure(err error) {
	kind, message := service.NoticeFromError(err)
	c := color.New(color.FgRed)
	if kind == models.NoticeValidation {
		c = color.New(color.FgYellow)
	}
	c.Fprintln(cli.out, message)
}
