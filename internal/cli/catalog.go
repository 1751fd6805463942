package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/ports"
	"github.com/lf9/taskdesk/internal/core/service"
)

// catalogCommand serves both "projects" and "priorities".
func catalogCommand[T ports.NamedResource](ctx context.Context, c *command, cat *service.Catalog[T], route string, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	if _, err := c.enterRoute(ctx, route, 0); err != nil {
		return err
	}

	switch sub {
	case "list":
		items, err := cat.List(ctx)
		if err != nil {
			return c.finish(err)
		}
		tw := newTable(c.s.out)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, item := range items {
			id, name := entry(item)
			fmt.Fprintf(tw, "%d\t%s\n", id, name)
		}
		_ = tw.Flush()
		return c.finish(nil)
	case "add":
		_, err := cat.Create(ctx, forms.NameForm{Name: strings.Join(args, " ")})
		return c.finish(err)
	case "rename":
		id, rest, err := splitID(args)
		if err != nil {
			return err
		}
		return c.finish(cat.Rename(ctx, id, forms.NameForm{Name: strings.Join(rest, " ")}))
	case "delete":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return c.finish(cat.Delete(ctx, id))
	default:
		return fmt.Errorf("unknown %s command: %s", route, sub)
	}
}

func entry(item any) (int64, string) {
	switch v := item.(type) {
	case domain.Project:
		return v.ID, v.Name
	case domain.Priority:
		return v.ID, v.Name
	default:
		return 0, ""
	}
}
