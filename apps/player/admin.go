package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/user"
)

var errNotAdmin = errors.New("permission denied: admin only")

func (cli *commandLine) printAdminUsage() {
	fmt.Fprintln(cli.out, "Usage: admin COMMAND")
	fmt.Fprintln(cli.out, "  dashboard                                  - catalog and user counts")
	fmt.Fprintln(cli.out, "  courses                                    - list courses with their modules and lectures")
	fmt.Fprintln(cli.out, "  add-course -title T -thumbnail URL [-description D] [-price P]")
	fmt.Fprintln(cli.out, "  add-module -course ID -title T [-number N]")
	fmt.Fprintln(cli.out, "  add-lecture -module ID -title T -video URL [-number N] [-notes URL,URL]")
	fmt.Fprintln(cli.out, "  delete-course -id ID")
	fmt.Fprintln(cli.out, "  users                                      - list users")
	fmt.Fprintln(cli.out, "  set-role -user ID -role admin|user")
}

func (cli *commandLine) admin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		cli.printAdminUsage()
		return errHelp
	}
	claims, err := cli.tokens.Claims()
	if err != nil {
		return err
	}
	if !claims.IsAdmin() {
		return errNotAdmin
	}

	addCourseCmd := cli.newFlagSet("add-course")
	courseTitle := addCourseCmd.String("title", "", "The course title.")
	courseThumb := addCourseCmd.String("thumbnail", "", "The thumbnail image URL.")
	courseDesc := addCourseCmd.String("description", "", "The course description.")
	coursePrice := addCourseCmd.Float64("price", 0, "The course price.")

	addModuleCmd := cli.newFlagSet("add-module")
	moduleCourse := addModuleCmd.String("course", "", "The course ID.")
	moduleTitle := addModuleCmd.String("title", "", "The module title.")
	moduleNumber := addModuleCmd.Int("number", 0, "The module number (default: last + 1).")

	addLectureCmd := cli.newFlagSet("add-lecture")
	lectureModule := addLectureCmd.String("module", "", "The module ID.")
	lectureTitle := addLectureCmd.String("title", "", "The lecture title.")
	lectureVideo := addLectureCmd.String("video", "", "The video URL.")
	lectureNumber := addLectureCmd.Int("number", 0, "The lecture number (default: last + 1).")
	lectureNotes := addLectureCmd.String("notes", "", "Comma-separated PDF note URLs.")

	deleteCourseCmd := cli.newFlagSet("delete-course")
	deleteCourseID := deleteCourseCmd.String("id", "", "The course ID.")

	setRoleCmd := cli.newFlagSet("set-role")
	setRoleUser := setRoleCmd.String("user", "", "The user ID.")
	setRoleRole := setRoleCmd.String("role", "", "admin or user.")

	switch args[0] {
	case "dashboard":
		return cli.dashboard(ctx)

	case "courses":
		return cli.adminCourses(ctx)

	case "add-course":
		if err := parse(addCourseCmd, args[1:]); err != nil {
			return err
		}
		if *courseTitle == "" || *courseThumb == "" {
			addCourseCmd.Usage()
			return errHelp
		}
		crs, err := cli.api.CreateCourse(ctx, course.NewCourse{
			Title:       *courseTitle,
			Thumbnail:   *courseThumb,
			Description: *courseDesc,
			Price:       *coursePrice,
		})
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cli.out, "Created course %s (%s).\n", crs.ID, crs.Title)
		return nil

	case "add-module":
		if err := parse(addModuleCmd, args[1:]); err != nil {
			return err
		}
		if *moduleCourse == "" || *moduleTitle == "" {
			addModuleCmd.Usage()
			return errHelp
		}
		mod, err := cli.api.CreateModule(ctx, course.NewModule{
			CourseID:     *moduleCourse,
			Title:        *moduleTitle,
			ModuleNumber: *moduleNumber,
		})
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cli.out, "Created module %s (Module %d: %s).\n", mod.ID, mod.ModuleNumber, mod.Title)
		return nil

	case "add-lecture":
		if err := parse(addLectureCmd, args[1:]); err != nil {
			return err
		}
		if *lectureModule == "" || *lectureTitle == "" || *lectureVideo == "" {
			addLectureCmd.Usage()
			return errHelp
		}
		notes := make([]string, 0)
		for _, note := range strings.Split(*lectureNotes, ",") {
			if note = strings.TrimSpace(note); note != "" {
				notes = append(notes, note)
			}
		}
		lec, err := cli.api.CreateLecture(ctx, course.NewLecture{
			ModuleID:      *lectureModule,
			Title:         *lectureTitle,
			VideoURL:      *lectureVideo,
			LectureNumber: *lectureNumber,
			PDFNotes:      notes,
		})
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cli.out, "Created lecture %s (Lecture %d: %s).\n", lec.ID, lec.LectureNumber, lec.Title)
		return nil

	case "delete-course":
		if err := parse(deleteCourseCmd, args[1:]); err != nil {
			return err
		}
		if *deleteCourseID == "" {
			deleteCourseCmd.Usage()
			return errHelp
		}
		if err := cli.api.DeleteCourse(ctx, *deleteCourseID); err != nil {
			return explain(err)
		}
		fmt.Fprintln(cli.out, "Course deleted.")
		return nil

	case "users":
		users, err := cli.api.ListUsers(ctx)
		if err != nil {
			return explain(err)
		}
		for _, usr := range users {
			fmt.Fprintf(cli.out, "%s  %-6s %s <%s>\n", usr.ID, usr.Role, usr.Name, usr.Email)
		}
		return nil

	case "set-role":
		if err := parse(setRoleCmd, args[1:]); err != nil {
			return err
		}
		if *setRoleUser == "" || *setRoleRole == "" {
			setRoleCmd.Usage()
			return errHelp
		}
		usr, err := cli.api.SetUserRole(ctx, *setRoleUser, *setRoleRole)
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cli.out, "%s is now %s.\n", usr.Email, usr.Role)
		return nil

	default:
		cli.printAdminUsage()
		return errHelp
	}
}

// dashboard fetches every course detail and the user list concurrently.
func (cli *commandLine) dashboard(ctx context.Context) error {
	courses, err := cli.api.ListCourses(ctx)
	if err != nil {
		return explain(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	details := make([]course.Course, len(courses))
	for i, c := range courses {
		i, id := i, c.ID
		g.Go(func() error {
			crs, err := cli.api.FetchCourseDetail(gctx, id)
			if err != nil {
				return errors.Wrapf(err, "fetching course %s", id)
			}
			details[i] = crs
			return nil
		})
	}
	var users []user.User
	g.Go(func() error {
		var err error
		users, err = cli.api.ListUsers(gctx)
		return errors.Wrap(err, "listing users")
	})
	if err := g.Wait(); err != nil {
		return explain(err)
	}

	var modules, lectures, admins int
	for _, crs := range details {
		modules += len(crs.Modules)
		lectures += crs.LectureCount()
	}
	for _, usr := range users {
		if usr.IsAdmin() {
			admins++
		}
	}
	fmt.Fprintf(cli.out, "courses: %d, modules: %d, lectures: %d\n", len(details), modules, lectures)
	fmt.Fprintf(cli.out, "users: %d (admins: %d)\n", len(users), admins)
	return nil
}

func (cli *commandLine) adminCourses(ctx context.Context) error {
	courses, err := cli.api.ListCourses(ctx)
	if err != nil {
		return explain(err)
	}
	for _, c := range courses {
		crs, err := cli.api.FetchCourseDetail(ctx, c.ID)
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cli.out, "%s  %s\n", crs.ID, crs.Title)
		for _, mod := range crs.Modules {
			fmt.Fprintf(cli.out, "  %s  Module %d: %s\n", mod.ID, mod.ModuleNumber, mod.Title)
			for _, lec := range mod.Lectures {
				fmt.Fprintf(cli.out, "    %s  %d. %s\n", lec.ID, lec.LectureNumber, lec.Title)
			}
		}
	}
	return nil
}
