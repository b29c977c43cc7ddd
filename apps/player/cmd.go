package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/progress"
	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/services/lmsapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api    *lmsapi.Client
	tokens *tokenFile
	policy progress.Policy
	logger core.Logger
	in     io.Reader
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL           - log in (the password is prompted)")
	fmt.Fprintln(cli.out, "  logout                       - forget the stored session")
	fmt.Fprintln(cli.out, "  register -name NAME -email EMAIL - create a learner account")
	fmt.Fprintln(cli.out, "  courses                      - list the catalog")
	fmt.Fprintln(cli.out, "  enroll -course ID            - enroll in a course")
	fmt.Fprintln(cli.out, "  classes                      - list the courses you are enrolled in")
	fmt.Fprintln(cli.out, "  learn -course ID             - open the course player")
	fmt.Fprintln(cli.out, "  admin COMMAND                - manage courses and users (admin only)")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses args into fs; a help request or a bad flag is reported as errHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	return nil
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := cli.newFlagSet("login")
	loginEmail := loginCmd.String("email", "", "Your email. The password will be prompted next.")

	registerCmd := cli.newFlagSet("register")
	registerName := registerCmd.String("name", "", "Your full name.")
	registerEmail := registerCmd.String("email", "", "Your email. The password will be prompted next.")

	enrollCmd := cli.newFlagSet("enroll")
	enrollCourse := enrollCmd.String("course", "", "The course ID.")

	learnCmd := cli.newFlagSet("learn")
	learnCourse := learnCmd.String("course", "", "The course ID.")

	switch args[1] {
	case "login":
		if err := parse(loginCmd, args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail, pwd)

	case "logout":
		if err := cli.tokens.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Logged out.")
		return nil

	case "register":
		if err := parse(registerCmd, args[2:]); err != nil {
			return err
		}
		if *registerName == "" || *registerEmail == "" {
			registerCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		usr, err := cli.api.Register(ctx, user.NewUser{Name: *registerName, Email: *registerEmail, Password: pwd})
		if err != nil {
			return explain(err)
		}
		fmt.Fprintf(cli.out, "Registered %s, you can now log in.\n", usr.Email)
		return nil

	case "courses":
		return cli.courses(ctx)

	case "enroll":
		if err := parse(enrollCmd, args[2:]); err != nil {
			return err
		}
		if *enrollCourse == "" {
			enrollCmd.Usage()
			return errHelp
		}
		if _, err := cli.tokens.Claims(); err != nil {
			return err
		}
		return cli.enroll(ctx, *enrollCourse)

	case "classes":
		if _, err := cli.tokens.Claims(); err != nil {
			return err
		}
		return cli.classes(ctx)

	case "learn":
		if err := parse(learnCmd, args[2:]); err != nil {
			return err
		}
		if *learnCourse == "" {
			learnCmd.Usage()
			return errHelp
		}
		if _, err := cli.tokens.Claims(); err != nil {
			return err
		}
		return cli.learn(ctx, *learnCourse)

	case "admin":
		return cli.admin(ctx, args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	token, err := cli.api.Login(ctx, user.Credentials{Email: email, Password: pwd})
	if err != nil {
		return explain(err)
	}
	if err := cli.tokens.Save(token); err != nil {
		return err
	}
	claims, err := cli.tokens.Claims()
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s (%s).\n", claims.Email, claims.Role)
	return nil
}

func (cli *commandLine) courses(ctx context.Context) error {
	courses, err := cli.api.ListCourses(ctx)
	if err != nil {
		return explain(err)
	}
	if len(courses) == 0 {
		fmt.Fprintln(cli.out, "No courses yet.")
	}
	for _, c := range courses {
		fmt.Fprintf(cli.out, "%s  %s ($%.2f)\n", c.ID, c.Title, c.Price)
	}
	return nil
}

func (cli *commandLine) enroll(ctx context.Context, courseID string) error {
	if _, err := cli.api.Enroll(ctx, courseID); err != nil {
		if err == lmsapi.ErrAlreadyEnrolled {
			fmt.Fprintln(cli.out, "You are already enrolled in this course.")
			return nil
		}
		return explain(err)
	}
	fmt.Fprintf(cli.out, "Enrolled. Start with `masomo learn -course %s`.\n", courseID)
	return nil
}

func (cli *commandLine) classes(ctx context.Context) error {
	courses, err := cli.api.ListEnrolledCourses(ctx)
	if err != nil {
		return explain(err)
	}
	if len(courses) == 0 {
		fmt.Fprintln(cli.out, "You are not enrolled in any course.")
	}
	for _, c := range courses {
		fmt.Fprintf(cli.out, "%s  %s\n", c.ID, c.Title)
	}
	return nil
}

// explain turns API errors into messages fit for the terminal.
func explain(err error) error {
	var apiErr *lmsapi.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Status == http.StatusUnauthorized && apiErr.Message == "missing or malformed jwt" {
		return errNotLoggedIn
	}
	if len(apiErr.Fields) == 0 {
		return err
	}

	flds := make([]string, 0, len(apiErr.Fields))
	for fld := range apiErr.Fields {
		flds = append(flds, fld)
	}
	sort.Strings(flds)
	msg := apiErr.Message
	for _, fld := range flds {
		msg += fmt.Sprintf("\n  %s: %s", fld, apiErr.Fields[fld])
	}
	return errors.New(msg)
}
