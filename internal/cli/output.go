package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/service"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeTasks(w io.Writer, tasks []domain.Task, names service.Names, withUser bool, now time.Time) {
	tw := newTable(w)
	if withUser {
		fmt.Fprintln(tw, "ID\tSTATUS\tTITEL\tPRIORITÄT\tPROJEKT\tMITARBEITER\tFÄLLIG")
	} else {
		fmt.Fprintln(tw, "ID\tSTATUS\tTITEL\tPRIORITÄT\tPROJEKT\tFÄLLIG")
	}
	for _, t := range tasks {
		status := "[ ]"
		if t.Done {
			status = "[x]"
		}
		due := t.DueDate
		if service.Overdue(t, now) {
			due += " !"
		}
		if withUser {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, status, t.Title,
				names.Priority(t), names.Project(t), names.User(t), due)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, status, t.Title,
			names.Priority(t), names.Project(t), due)
	}
	_ = tw.Flush()
	if len(tasks) == 0 {
		fmt.Fprintln(w, "Keine Aufgaben")
	}
}

func writeTask(w io.Writer, t domain.Task, names service.Names) {
	status := "offen"
	if t.Done {
		status = "erledigt"
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%d\n", t.ID)
	fmt.Fprintf(tw, "Titel\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status\t%s\n", status)
	fmt.Fprintf(tw, "Beschreibung\t%s\n", t.Description)
	fmt.Fprintf(tw, "Fällig\t%s\n", t.DueDate)
	fmt.Fprintf(tw, "Priorität\t%s\n", names.Priority(t))
	fmt.Fprintf(tw, "Projekt\t%s\n", names.Project(t))
	fmt.Fprintf(tw, "Mitarbeiter\t%s\n", names.User(t))
	_ = tw.Flush()
}

func writeUsers(w io.Writer, users []domain.User) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tBENUTZERNAME\tROLLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
	}
	_ = tw.Flush()
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// splitID parses a leading id argument and returns the rest, so flags may
// follow the id as in "users edit 3 -role Mitarbeiter".
func splitID(args []string) (int64, []string, error) {
	id, err := parseID(args)
	if err != nil {
		return 0, nil, err
	}
	return id, args[1:], nil
}
