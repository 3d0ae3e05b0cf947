// Package console is the interactive numbered menu an operator uses to manage
// the institute from a terminal.
package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/alem-hub/institute-hub/internal/application/registry"
	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/pkg/logger"
)

// action is one menu entry.
type action struct {
	key         string
	description string
	run         func(c *Console, ctx context.Context) error
}

// menu lists the entries in display order. "0" is handled by Run.
var menu = []action{
	{"1", "Show institute info", (*Console).showInfo},
	{"2", "Add course", (*Console).addCourse},
	{"3", "Remove course", (*Console).removeCourse},
	{"4", "Add faculty to course", (*Console).addFaculty},
	{"5", "Remove faculty from course", (*Console).removeFaculty},
	{"6", "Add department to faculty", (*Console).addDepartment},
	{"7", "Remove department from faculty", (*Console).removeDepartment},
	{"8", "Add group to department", (*Console).addGroup},
	{"9", "Remove group from department", (*Console).removeGroup},
	{"10", "Add student to group", (*Console).addStudent},
	{"11", "Remove student from group", (*Console).removeStudent},
	{"12", "Save data", (*Console).save},
	{"13", "Update student grade", (*Console).updateGrade},
	{"14", "Rename institute, course, faculty, department or group", (*Console).rename},
	{"15", "Show saved revisions", (*Console).showHistory},
}

// Console runs the menu loop over one institute.
type Console struct {
	svc      *registry.Service
	inst     *institute.Institute
	p        *prompter
	log      *logger.Logger
	location string

	now func() time.Time
	loc *time.Location
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the console logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLocation names where saves go, for the "Data saved to ..." line.
func WithLocation(location string) Option {
	return func(c *Console) {
		c.location = location
	}
}

// New creates a Console reading answers from in and writing to out.
func New(svc *registry.Service, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		svc: svc,
		p:   newPrompter(in, out),
		log: logger.NewNop(),
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("console"))
	return c
}

// Institute returns the institute being managed, nil before Run opens it.
func (c *Console) Institute() *institute.Institute {
	return c.inst
}

// Run opens the institute, asking for a name if there is none yet, and serves
// the menu until the operator chooses 0 or input ends. Both save before
// returning.
func (c *Console) Run(ctx context.Context) error {
	inst, err := c.svc.Open(ctx, c.askInstituteName)
	if err != nil {
		return err
	}
	c.inst = inst

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.printMenu()
		choice, err := c.p.trimmed("Choose an option: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.p.println()
				return c.saveAndExit(ctx)
			}
			return err
		}

		if choice == "0" {
			return c.saveAndExit(ctx)
		}

		act, ok := lookup(choice)
		if !ok {
			c.p.println("Unknown option. Please try again.")
			continue
		}

		c.p.printf("\n-- %s --\n", act.description)
		if err := act.run(c, ctx); err != nil {
			if errors.Is(err, io.EOF) {
				c.p.println()
				return c.saveAndExit(ctx)
			}
			return err
		}
	}
}

func lookup(key string) (action, bool) {
	for _, a := range menu {
		if a.key == key {
			return a, true
		}
	}
	return action{}, false
}

func (c *Console) printMenu() {
	c.p.println("\n==== Institute Management ====")
	for _, a := range menu {
		c.p.printf("%s. %s\n", a.key, a.description)
	}
	c.p.println("0. Save and exit")
}

func (c *Console) askInstituteName() string {
	name, err := c.p.trimmed("Enter the name of the institute: ")
	if err != nil {
		return ""
	}
	return name
}

func (c *Console) saveAndExit(ctx context.Context) error {
	if err := c.persist(ctx); err != nil {
		return err
	}
	c.p.println("Goodbye!")
	return nil
}

// save is menu entry 12. A failed save is reported and the session goes on.
func (c *Console) save(ctx context.Context) error {
	_ = c.persist(ctx)
	return nil
}

func (c *Console) persist(ctx context.Context) error {
	if err := c.svc.Save(ctx, c.inst); err != nil {
		c.p.printf("Failed to save data: %v\n", err)
		return err
	}
	if c.location != "" {
		c.p.printf("Data saved to %s\n", c.location)
	} else {
		c.p.println("Data saved.")
	}
	return nil
}

func (c *Console) showInfo(context.Context) error {
	c.p.println("\n=== Institute Overview ===")
	c.p.println(c.inst.String())
	c.p.println(strings.Repeat("=", 26) + "\n")
	return nil
}
