// Package console drives the interactive menu session: a single
// "awaiting menu selection" state whose operations are nested prompt loops
// that end in success or an explicit abort.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/zjrosen/carreg/internal/log"
	"github.com/zjrosen/carreg/internal/registry"
	"github.com/zjrosen/carreg/internal/store"
	"github.com/zjrosen/carreg/internal/vehicle"
)

// QuitWord is always accepted as an abort, in any case, alongside the
// configured sentinel.
const QuitWord = "quit"

// DefaultSentinel is used when no sentinel option is given. It matches the
// Exit menu key, so the same key backs out everywhere.
const DefaultSentinel = "5"

// errExit ends the menu loop normally.
var errExit = errors.New("exit requested")

// Session owns the registry for one interactive run.
type Session struct {
	id       string
	in       *lineReader
	out      *Printer
	reg      *registry.Registry
	store    store.Store
	sentinel string
	handlers map[Command]func(context.Context) error
}

// Option configures a Session.
type Option func(*Session)

// WithSentinel sets the input that aborts add/delete/find.
func WithSentinel(sentinel string) Option {
	return func(s *Session) {
		if sentinel != "" {
			s.sentinel = sentinel
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession wires a session over in/out. reg is owned by the session
// from here on.
func NewSession(in io.Reader, out io.Writer, reg *registry.Registry, st store.Store, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		in:       newLineReader(in),
		out:      NewPrinter(out),
		reg:      reg,
		store:    st,
		sentinel: DefaultSentinel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handlers = map[Command]func(context.Context) error{
		CmdAdd:    s.Add,
		CmdDelete: s.Delete,
		CmdFind:   s.Find,
		CmdList:   func(context.Context) error { s.List(); return nil },
		CmdExit:   func(context.Context) error { return errExit },
	}
	return s
}

// ID returns the session id used to correlate log lines.
func (s *Session) ID() string { return s.id }

// Registry returns the registry owned by the session.
func (s *Session) Registry() *registry.Registry { return s.reg }

// Run performs startup and then serves the menu until Exit or EOF.
// Both end with a save and a nil error. EOF before startup completes
// returns nil without saving.
func (s *Session) Run(ctx context.Context) error {
	log.Info(log.CatConsole, "Session started", "session", s.id, "store", s.store.Location())

	if err := s.Start(ctx); err != nil {
		if errors.Is(err, ErrInputClosed) {
			// Nothing was loaded, so saving now would overwrite the database.
			log.Info(log.CatConsole, "Input closed before startup finished", "session", s.id)
			s.out.Println("Exiting program...")
			return nil
		}
		log.ErrorErr(log.CatConsole, "Session failed", err, "session", s.id)
		return err
	}

	err := s.menuLoop(ctx)
	switch {
	case err == nil, errors.Is(err, errExit), errors.Is(err, ErrInputClosed):
		log.Info(log.CatConsole, "Session ending", "session", s.id, "count", s.reg.Len())
		return s.exit(ctx)
	default:
		log.ErrorErr(log.CatConsole, "Session failed", err, "session", s.id)
		return err
	}
}

// Start asks whether to load an existing database or create a new one.
// With no database present a new one is created without asking.
func (s *Session) Start(ctx context.Context) error {
	exists, err := s.store.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return s.CreateNew(ctx)
	}

	for {
		answer, err := s.prompt("Database exists. Load existing database or create new? (L/N): ")
		if err != nil {
			return err
		}
		switch strings.ToUpper(strings.TrimSpace(answer)) {
		case "L":
			return s.Load(ctx)
		case "N":
			return s.CreateNew(ctx)
		default:
			s.out.Error("Please enter 'L' to load or 'N' to create new database.")
		}
	}
}

// Load replaces the registry with the stored records. A missing or
// corrupted database leaves the registry empty and is reported, not returned.
func (s *Session) Load(ctx context.Context) error {
	cars, err := s.store.Load(ctx)
	switch {
	case err == nil:
		s.reg.Replace(cars)
		s.out.Success("Database loaded successfully.")
		s.out.Println("")
	case errors.Is(err, store.ErrNotExist):
		s.reg.Reset()
		s.out.Println("No existing database found. Starting new database.")
	case errors.Is(err, store.ErrCorrupt):
		log.Warn(log.CatConsole, "Corrupted database replaced with empty registry", "session", s.id, "error", err)
		s.reg.Reset()
		s.out.Warn("Warning: Database file is corrupted. Starting new database.")
	default:
		return fmt.Errorf("loading database: %w", err)
	}
	return nil
}

// CreateNew discards every record and writes the empty registry.
func (s *Session) CreateNew(ctx context.Context) error {
	s.reg.Reset()
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.out.Success("New database created.")
	s.out.Println("")
	return nil
}

func (s *Session) menuLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.showMenu()
		choice, err := s.prompt("Please select an option: ")
		if err != nil {
			return err
		}

		cmd := ParseCommand(choice)
		handler, ok := s.handlers[cmd]
		if !ok {
			log.Debug(log.CatConsole, "Invalid menu selection", "input", choice)
			s.out.Error("Invalid selection. Please choose a valid option.")
			continue
		}
		log.Debug(log.CatConsole, "Menu selection", "command", cmd.String())
		if err := handler(ctx); err != nil {
			return err
		}
	}
}

func (s *Session) showMenu() {
	s.out.Println("")
	s.out.Title("Car Management System")
	s.out.Println("")
	for _, cmd := range menuOrder {
		s.out.Printf("%s. %s\n", cmd.Key(), cmd)
	}
	s.out.Println("")
}

func (s *Session) exit(ctx context.Context) error {
	s.out.Println("Exiting program...")
	return s.persist(ctx)
}

// Add prompts for how many cars to add, then for each car's details.
// The sentinel at the registration prompt abandons the remaining cars.
func (s *Session) Add(ctx context.Context) error {
	count, err := s.promptCount()
	if err != nil {
		return err
	}

	for i := 1; i <= count; i++ {
		s.out.Printf("\nEnter details for car %d or press %s to quit to menu:\n", i, s.sentinel)

		reg, aborted, err := s.promptNewRegistration()
		if err != nil || aborted {
			return err
		}
		mk, err := s.promptDetail("Enter Make: ")
		if err != nil {
			return err
		}
		model, err := s.promptDetail("Enter Model: ")
		if err != nil {
			return err
		}
		year, err := s.promptYear()
		if err != nil {
			return err
		}

		v, err := vehicle.New(mk, model, year)
		if err != nil {
			return fmt.Errorf("adding %s: %w", reg, err)
		}
		if _, err := s.reg.Add(reg, v); err != nil {
			return fmt.Errorf("adding %s: %w", reg, err)
		}
		if err := s.persist(ctx); err != nil {
			return err
		}
		s.out.Println("")
		s.out.Success("Car added successfully!")
		s.List()
	}
	return nil
}

func (s *Session) promptCount() (int, error) {
	for {
		raw, err := s.prompt("How many cars would you like to add? ")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil && n > 0 {
			return n, nil
		}
		s.out.Error("Please input numerical value only.")
	}
}

func (s *Session) promptNewRegistration() (string, bool, error) {
	for {
		raw, err := s.prompt("Enter Registration Number: ")
		if err != nil {
			return "", false, err
		}
		if s.isAbort(raw) {
			return "", true, nil
		}
		key, err := vehicle.ParseRegistration(raw)
		if err != nil {
			s.out.Error(fmt.Sprintf("Invalid UK registration. Try again or press %s.", s.sentinel))
			continue
		}
		if s.reg.Contains(key) {
			s.out.Error(fmt.Sprintf("A car with registration '%s' already exists.", key))
			continue
		}
		return key, false, nil
	}
}

func (s *Session) promptDetail(label string) (string, error) {
	for {
		raw, err := s.prompt(label)
		if err != nil {
			return "", err
		}
		detail, err := vehicle.ParseDetail(raw)
		if err == nil {
			return detail, nil
		}
		s.out.Error("Field cannot be empty.")
	}
}

func (s *Session) promptYear() (string, error) {
	for {
		raw, err := s.prompt("Enter Year: ")
		if err != nil {
			return "", err
		}
		year, err := vehicle.ParseYear(raw)
		if err == nil {
			return year, nil
		}
		s.out.Error("Please enter a valid 4-digit year.")
	}
}

// Delete removes one car by registration, reprompting until a registered
// plate or the sentinel is entered.
func (s *Session) Delete(ctx context.Context) error {
	for {
		raw, err := s.prompt(fmt.Sprintf("Enter registration to delete or press %s to quit: ", s.sentinel))
		if err != nil {
			return err
		}
		if s.isAbort(raw) {
			return nil
		}
		key, err := s.reg.Delete(raw)
		if errors.Is(err, registry.ErrNotFound) {
			s.out.Error("Registration not found. Try again.")
			continue
		}
		if err != nil {
			return err
		}
		if err := s.persist(ctx); err != nil {
			return err
		}
		s.out.Success(fmt.Sprintf("Car '%s' deleted successfully.", key))
		return nil
	}
}

// Find shows one car by registration, reprompting until a registered
// plate or the sentinel is entered.
func (s *Session) Find(ctx context.Context) error {
	for {
		raw, err := s.prompt(fmt.Sprintf("Enter registration to find or press %s to quit: ", s.sentinel))
		if err != nil {
			return err
		}
		if s.isAbort(raw) {
			return nil
		}
		v, err := s.reg.Find(raw)
		if err != nil {
			s.out.Error("Car not found. Try again.")
			continue
		}
		s.out.Details(vehicle.NormalizeRegistration(raw), v)
		return nil
	}
}

// List prints every car.
func (s *Session) List() {
	s.out.List(s.reg.List())
}

func (s *Session) isAbort(raw string) bool {
	in := strings.TrimSpace(raw)
	return strings.EqualFold(in, s.sentinel) || strings.EqualFold(in, QuitWord)
}

func (s *Session) prompt(label string) (string, error) {
	s.out.Printf("%s", label)
	return s.in.readLine()
}

func (s *Session) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.reg.Snapshot()); err != nil {
		return fmt.Errorf("saving database: %w", err)
	}
	return nil
}
