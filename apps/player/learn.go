package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/player"
	"github.com/trezcool/masomo/core/progress"
)

func (cli *commandLine) printLearnUsage() {
	fmt.Fprintln(cli.out, "Commands:")
	fmt.Fprintln(cli.out, "  list       - show the course outline")
	fmt.Fprintln(cli.out, "  play N|ID  - play lecture N of the outline (or by ID)")
	fmt.Fprintln(cli.out, "  done       - mark the playing lecture complete")
	fmt.Fprintln(cli.out, "  next, prev - move within the current module")
	fmt.Fprintln(cli.out, "  status     - show your progress")
	fmt.Fprintln(cli.out, "  quit       - leave the player")
}

// learn runs the course player over cli.in until quit or EOF.
func (cli *commandLine) learn(ctx context.Context, courseID string) error {
	sess := player.NewSession(cli.api, cli.api, cli.policy, cli.logger)
	if err := sess.Load(ctx, courseID); err != nil {
		return explain(err)
	}
	defer sess.Leave()

	crs, err := sess.Course()
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s\n\n", crs.Title)
	if err := cli.printOutline(sess); err != nil {
		return err
	}
	cli.printActive(sess)

	scanner := bufio.NewScanner(cli.in)
	for {
		fmt.Fprint(cli.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(cli.out)
			return errors.Wrap(scanner.Err(), "reading command")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		quit, err := cli.learnCommand(ctx, sess, fields)
		switch player.Classify(err) {
		case player.SeverityNone, player.SeverityIgnorable:
		case player.SeverityRetryable:
			fmt.Fprintf(cli.out, "Your progress could not be saved (%v). Try `done` again.\n", errors.Cause(err))
		default:
			fmt.Fprintf(cli.out, "%v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (cli *commandLine) learnCommand(ctx context.Context, sess *player.Session, fields []string) (quit bool, err error) {
	switch fields[0] {
	case "list", "ls":
		return false, cli.printOutline(sess)

	case "play":
		if len(fields) < 2 {
			return false, errors.New("usage: play N|ID")
		}
		id, err := lectureID(sess, fields[1])
		if err != nil {
			return false, err
		}
		if _, err := sess.SelectLecture(id); err != nil {
			return false, err
		}
		cli.printActive(sess)

	case "done":
		lec, ok := sess.ActiveLecture()
		if !ok {
			return false, errors.New("no lecture is playing")
		}
		if err := sess.MarkComplete(ctx, lec.ID); err != nil {
			return false, err
		}
		fmt.Fprintf(cli.out, "Completed %q.\n", lec.Title)
		return false, cli.printSummary(sess)

	case "next", "prev":
		move := sess.Next
		if fields[0] == "prev" {
			move = sess.Previous
		}
		if _, err := move(); err != nil {
			if err == player.ErrModuleBoundary {
				return false, errors.New("no more lectures that way in this module; use `list` and `play`")
			}
			return false, err
		}
		cli.printActive(sess)

	case "status":
		return false, cli.printSummary(sess)

	case "help":
		cli.printLearnUsage()

	case "quit", "exit", "q":
		return true, nil

	default:
		fmt.Fprintf(cli.out, "Unknown command %q.\n", fields[0])
		cli.printLearnUsage()
	}
	return false, nil
}

// lectureID resolves arg as a 1-based outline number, else as a lecture ID.
func lectureID(sess *player.Session, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	if n < 1 {
		return "", errors.Errorf("no lecture number %s", arg)
	}
	outline, err := sess.Outline()
	if err != nil {
		return "", err
	}
	for _, mod := range outline {
		if n <= len(mod.Lectures) {
			return mod.Lectures[n-1].Lecture.ID, nil
		}
		n -= len(mod.Lectures)
	}
	return "", errors.Errorf("no lecture number %s", arg)
}

func stateMark(st progress.State) string {
	switch st {
	case progress.UnlockedCompleted:
		return "[x]"
	case progress.UnlockedUnvisited:
		return "[ ]"
	default:
		return "[-]"
	}
}

func (cli *commandLine) printOutline(sess *player.Session) error {
	outline, err := sess.Outline()
	if err != nil {
		return err
	}
	var n int
	for _, mod := range outline {
		fmt.Fprintf(cli.out, "Module %d: %s\n", mod.Number, mod.Title)
		for _, row := range mod.Lectures {
			n++
			cursor := " "
			if row.Active {
				cursor = ">"
			}
			fmt.Fprintf(cli.out, " %s %2d %s %s\n", cursor, n, stateMark(row.State), row.Lecture.Title)
		}
	}
	return nil
}

func (cli *commandLine) printActive(sess *player.Session) {
	outline, err := sess.Outline()
	if err != nil {
		return
	}
	for _, mod := range outline {
		for _, row := range mod.Lectures {
			if row.Active {
				cli.printLecture(row.Lecture, row.Position)
				return
			}
		}
	}
}

func (cli *commandLine) printLecture(lec course.Lecture, pos course.Position) {
	fmt.Fprintf(cli.out, "\nNow playing: %s\n  %s\n  video: %s\n", lec.Title, pos, lec.VideoURL)
	for _, note := range lec.PDFNotes {
		fmt.Fprintf(cli.out, "  notes: %s\n", note)
	}
}

func (cli *commandLine) printSummary(sess *player.Session) error {
	sum, err := sess.Summary()
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d/%d lectures completed (%.0f%%)\n", sum.Completed, sum.Total, sum.Percent)
	return nil
}
