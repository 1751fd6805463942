package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/service"
)

func (c *command) tasks(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		return c.listTasks(ctx, args, false)
	case "team":
		return c.listTasks(ctx, args, true)
	case "show":
		return c.showTask(ctx, args)
	case "new":
		return c.newTask(ctx, args)
	case "edit":
		return c.editTask(ctx, args)
	case "done":
		return c.toggleTask(ctx, args, true)
	case "undone":
		return c.toggleTask(ctx, args, false)
	case "delete":
		return c.deleteTask(ctx, args)
	default:
		return fmt.Errorf("unknown tasks command: %s", sub)
	}
}

func (c *command) listTasks(ctx context.Context, args []string, team bool) error {
	route := service.RouteMyTasks
	name := "taskdesk tasks list"
	if team {
		route, name = service.RouteTeamTasks, "taskdesk tasks team"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.s.err)
	var f service.TaskFilter
	if team {
		fs.Int64Var(&f.UserID, "user", 0, "Filter by user id")
	}
	fs.Int64Var(&f.ProjectID, "project", 0, "Filter by project id")
	fs.Int64Var(&f.PriorityID, "priority", 0, "Filter by priority id")
	sort := fs.String("sort", "", "Sort by priority or date")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch service.SortOrder(*sort) {
	case service.SortNone, service.SortPriority, service.SortDate:
		f.Sort = service.SortOrder(*sort)
	default:
		return fmt.Errorf("invalid sort %q", *sort)
	}

	if _, err := c.enterRoute(ctx, route, 0); err != nil {
		return err
	}
	all, err := c.app.Tasks.Tasks(ctx)
	if err != nil {
		return c.finish(err)
	}
	names, err := c.app.Names(ctx, team)
	if err != nil {
		return c.finish(err)
	}

	if team {
		writeTasks(c.s.out, service.TeamTasks(all, f), names, true, time.Now())
	} else {
		writeTasks(c.s.out, service.MyTasks(all, c.app.Session.User().ID, f), names, false, time.Now())
	}
	return c.finish(nil)
}

func (c *command) showTask(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	nav, err := c.enterRoute(ctx, service.RouteTaskDetail, id)
	if err != nil {
		return err
	}
	id, _ = nav.ID()
	task, err := c.app.Tasks.Task(ctx, id)
	if err != nil {
		return c.finish(err)
	}
	names, err := c.app.Names(ctx, false)
	if err != nil {
		return c.finish(err)
	}
	writeTask(c.s.out, *task, names)
	return c.finish(nil)
}

func (c *command) newTask(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdesk tasks new", flag.ContinueOnError)
	fs.SetOutput(c.s.err)
	var form forms.NewTaskForm
	fs.StringVar(&form.Title, "title", "", "Title")
	fs.StringVar(&form.Description, "desc", "", "Description")
	fs.StringVar(&form.DueDate, "due", "", "Due date YYYY-MM-DD")
	fs.Int64Var(&form.UserID, "user", 0, "Assignee id")
	fs.Int64Var(&form.PriorityID, "priority", 0, "Priority id")
	fs.Int64Var(&form.ProjectID, "project", 0, "Project id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := c.enterRoute(ctx, service.RouteNewTask, 0); err != nil {
		return err
	}
	task, err := c.app.Tasks.Create(ctx, form)
	if err != nil {
		return c.finish(err)
	}
	fmt.Fprintf(c.s.out, "Aufgabe %d angelegt\n", task.ID)
	return c.finish(nil)
}

func (c *command) editTask(ctx context.Context, args []string) error {
	id, args, err := splitID(args)
	if err != nil {
		return err
	}
	if _, err := c.enterRoute(ctx, service.RouteTeamTasks, 0); err != nil {
		return err
	}
	task, err := c.app.Tasks.Task(ctx, id)
	if err != nil {
		return c.finish(err)
	}

	form := forms.EditTaskFormFrom(*task)
	fs := flag.NewFlagSet("taskdesk tasks edit", flag.ContinueOnError)
	fs.SetOutput(c.s.err)
	fs.StringVar(&form.Title, "title", form.Title, "Title")
	fs.StringVar(&form.Description, "desc", form.Description, "Description")
	fs.StringVar(&form.DueDate, "due", form.DueDate, "Due date YYYY-MM-DD")
	fs.Int64Var(&form.UserID, "user", form.UserID, "Assignee id")
	fs.Int64Var(&form.PriorityID, "priority", form.PriorityID, "Priority id")
	fs.Int64Var(&form.ProjectID, "project", form.ProjectID, "Project id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.app.Tasks.Update(ctx, id, form); err != nil {
		return c.finish(err)
	}
	fmt.Fprintf(c.s.out, "Aufgabe %d gespeichert\n", id)
	return c.finish(nil)
}

func (c *command) toggleTask(ctx context.Context, args []string, done bool) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if _, err := c.enterRoute(ctx, service.RouteMyTasks, 0); err != nil {
		return err
	}
	// Load the collection first so the change is applied optimistically.
	if _, err := c.app.Tasks.Tasks(ctx); err != nil {
		return c.finish(err)
	}
	return c.finish(c.app.Tasks.ToggleDone(ctx, id, done))
}

func (c *command) deleteTask(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if _, err := c.enterRoute(ctx, service.RouteTeamTasks, 0); err != nil {
		return err
	}
	return c.finish(c.app.Tasks.Delete(ctx, id))
}
