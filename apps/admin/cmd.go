package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/identity"
	"github.com/trezcool/studio/core/safety"
	"github.com/trezcool/studio/core/tier"
	"github.com/trezcool/studio/storage/database"
)

const maxStdinText = 1 << 20

var (
	// mockable
	isTerminalFunc = term.IsTerminal
	migrateFunc    = database.Migrate

	errHelp    = errors.New("help provided")
	errFlagged = errors.New("text flagged")
)

type commandLine struct {
	catalog *tier.Catalog
	filter  *safety.Filter
	idStore identity.Store
	openDB  func(ctx context.Context) (*sqlx.DB, error)

	in  io.Reader
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  tiers                          - list the catalog tiers")
	fmt.Fprintln(cli.out, "  progress -completed a,b [-json] - evaluate tier progress for the completed course ids")
	fmt.Fprintln(cli.out, "  filter -text TEXT              - check TEXT (or stdin) against the content filter")
	fmt.Fprintln(cli.out, "  whoami [-voter]                - print this machine's anonymous (or voter) id")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]         - run a migration command (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	progressCmd := flag.NewFlagSet("progress", flag.ContinueOnError)
	progressCompleted := progressCmd.String("completed", "", "Comma separated completed course ids.")
	progressJSON := progressCmd.Bool("json", false, "Print JSON.")

	filterCmd := flag.NewFlagSet("filter", flag.ContinueOnError)
	filterText := filterCmd.String("text", "", "The text to check. Read from stdin when empty.")

	whoamiCmd := flag.NewFlagSet("whoami", flag.ContinueOnError)
	whoamiVoter := whoamiCmd.Bool("voter", false, "Print the voter id instead of the anonymous id.")

	for _, fs := range []*flag.FlagSet{progressCmd, filterCmd, whoamiCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "tiers":
		return cli.tiers()
	case "progress":
		if err := progressCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.progress(splitCourses(*progressCompleted), *progressJSON)
	case "filter":
		if err := filterCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		text := *filterText
		if text == "" {
			var err error
			if text, err = cli.readStdin(); err != nil {
				return err
			}
		}
		if text == "" {
			filterCmd.Usage()
			return errHelp
		}
		return cli.check(text)
	case "whoami":
		if err := whoamiCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.whoami(*whoamiVoter)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func splitCourses(s string) []string {
	courses := make([]string, 0)
	for _, c := range strings.Split(s, ",") {
		if c = core.CleanString(c, true /* lower */); c != "" {
			courses = append(courses, c)
		}
	}
	return courses
}

// readStdin reads the piped input; nothing is read from an interactive terminal.
func (cli *commandLine) readStdin() (string, error) {
	if f, ok := cli.in.(*os.File); ok && isTerminalFunc(int(f.Fd())) {
		return "", nil
	}
	data, err := io.ReadAll(io.LimitReader(cli.in, maxStdinText))
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (cli *commandLine) tiers() error {
	for _, t := range cli.catalog.Tiers() {
		fmt.Fprintf(cli.out, "%d. %s (%d courses)\n", t.ID, t.Name, len(t.CourseIDs))
		if t.UnlockCriteria != "" {
			fmt.Fprintf(cli.out, "   unlock: %s\n", t.UnlockCriteria)
		}
		for _, c := range t.CourseIDs {
			fmt.Fprintf(cli.out, "   - %s\n", c)
		}
	}
	return nil
}

func (cli *commandLine) progress(completed []string, asJSON bool) error {
	set := tier.NewSet(completed...)
	sums := cli.catalog.Summaries(set)
	unlocked := cli.catalog.UnlockedTierIDs(set)

	if asJSON {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"tiers": sums, "unlocked_tier_ids": unlocked})
	}

	for _, s := range sums {
		fmt.Fprintf(cli.out, "%d. %-24s %-11s %3d%% (%d/%d)\n", s.TierID, s.Name, s.Status, s.Progress, s.Completed, s.Total)
	}
	for _, c := range completed {
		if !cli.catalog.HasCourse(c) {
			fmt.Fprintf(cli.out, "unknown course: %s\n", c)
		}
	}
	return nil
}

func (cli *commandLine) check(text string) error {
	res := cli.filter.Check(text)
	if res.IsClean {
		fmt.Fprintln(cli.out, "clean")
		return nil
	}
	fmt.Fprintf(cli.out, "flagged: %s\n", res.Reason)
	if len(res.FlaggedWords) > 0 {
		fmt.Fprintf(cli.out, "words: %s\n", strings.Join(res.FlaggedWords, ", "))
	}
	return errFlagged
}

func (cli *commandLine) whoami(voter bool) error {
	p := identity.NewAnonymousProvider(cli.idStore)
	if voter {
		p = identity.NewVoterProvider(cli.idStore)
	}
	id, err := p.ID(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, id)
	return nil
}

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.openDB(context.Background())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return migrateFunc(db, args[0], args[1:]...)
}
