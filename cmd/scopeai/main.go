package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/scopeai/scopeai/internal/api"
	"github.com/scopeai/scopeai/internal/app"
	"github.com/scopeai/scopeai/internal/config"
	"github.com/scopeai/scopeai/internal/domain/chat"
	"github.com/scopeai/scopeai/internal/domain/export"
	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scope"
	"github.com/scopeai/scopeai/internal/domain/scoping"
	"github.com/scopeai/scopeai/internal/session"
	"github.com/scopeai/scopeai/internal/tokenstore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout stays clean for command output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDir(cfg.Token.Path); err != nil {
		logger.Error("failed to prepare token database path", "error", err)
		os.Exit(1)
	}
	tokens, err := tokenstore.Open(cfg.Token.Path)
	if err != nil {
		logger.Error("failed to open token database", "error", err)
		os.Exit(1)
	}
	defer tokens.Close()

	client := api.NewClient(cfg.API.BaseURL, tokens, logger,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second))
	a := app.New(client, tokens, logger)

	ctx := context.Background()
	if ok, err := a.Restore(ctx); err != nil {
		logger.Warn("session restore failed", "error", err)
	} else if ok {
		fmt.Println("session restored")
	}

	shell := &shell{app: a, exportDir: cfg.Export.Dir, out: os.Stdout}
	shell.run(ctx, bufio.NewScanner(os.Stdin))
}

type shell struct {
	app       *app.App
	exportDir string
	out       *os.File
}

func (s *shell) run(ctx context.Context, in *bufio.Scanner) {
	s.printf("scopeai - type 'help' for commands\n")
	for {
		s.printf("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := s.dispatch(ctx, cmd, strings.TrimSpace(rest)); err != nil {
			s.printf("error: %v\n", err)
		}
	}
}

func (s *shell) dispatch(ctx context.Context, cmd, rest string) error {
	switch cmd {
	case "help":
		s.printHelp()
		return nil
	case "login":
		return s.login(ctx, rest)
	case "register":
		return s.register(ctx, rest)
	case "logout":
		s.app.Logout(ctx)
		s.printf("logged out\n")
		return nil
	case "projects":
		return s.listProjects(ctx)
	case "create":
		return s.createProject(ctx, rest)
	case "select":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return fmt.Errorf("usage: select <project-id>")
		}
		s.app.SelectProject(id)
		s.printf("selected project %d\n", id)
		return nil
	case "generate":
		return s.generate(ctx, rest)
	case "preview":
		return s.preview()
	case "export":
		return s.export(ctx, rest)
	case "chat":
		return s.chat(ctx, rest)
	case "suggestions":
		for _, suggestion := range s.app.Chat.Suggestions() {
			s.printf("  %s\n", suggestion)
		}
		return nil
	case "tab":
		if err := s.app.SetActiveTab(app.Tab(rest)); err != nil {
			return err
		}
		s.printf("switched to %s\n", rest)
		return nil
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

func (s *shell) login(ctx context.Context, rest string) error {
	email, password, ok := strings.Cut(rest, " ")
	if !ok {
		return fmt.Errorf("usage: login <email> <password>")
	}
	user, err := s.app.Login(ctx, session.Credentials{Email: email, Password: password})
	if errors.Is(err, session.ErrInvalidCredentials) {
		return fmt.Errorf("incorrect email or password")
	}
	if err != nil {
		return err
	}
	s.printf("signed in as %s\n", user.Email)
	return nil
}

func (s *shell) register(ctx context.Context, rest string) error {
	parts := strings.SplitN(rest, " ", 3)
	if len(parts) < 2 {
		return fmt.Errorf("usage: register <email> <password> [full name]")
	}
	creds := session.Credentials{Email: parts[0], Password: parts[1]}
	if len(parts) == 3 {
		creds.FullName = parts[2]
	}
	user, err := s.app.Register(ctx, creds)
	if err != nil {
		return err
	}
	s.printf("registered %s\n", user.Email)
	return nil
}

func (s *shell) listProjects(ctx context.Context) error {
	if err := s.app.Projects.Refresh(ctx); err != nil {
		return err
	}
	currentID, hasCurrent := s.app.Projects.CurrentID()
	for _, p := range s.app.Projects.Projects() {
		marker := " "
		if hasCurrent && p.ID == currentID {
			marker = "*"
		}
		s.printf("%s %d  %-30s %s\n", marker, p.ID, p.Name, p.Status)
	}
	return nil
}

// createProject reads "name | industry | type | description" so fields can
// contain spaces.
func (s *shell) createProject(ctx context.Context, rest string) error {
	parts := strings.Split(rest, "|")
	if len(parts) != 4 {
		return fmt.Errorf("usage: create <name> | <industry> | <project type> | <description>")
	}
	created, err := s.app.CreateProject(ctx, project.CreateInput{
		Name:        strings.TrimSpace(parts[0]),
		Industry:    strings.TrimSpace(parts[1]),
		ProjectType: strings.TrimSpace(parts[2]),
		Description: strings.TrimSpace(parts[3]),
	})
	if errors.Is(err, project.ErrInvalidInput) {
		return fmt.Errorf("all of name, industry, project type and description are required")
	}
	if err != nil {
		return err
	}
	s.printf("created project %d: %s\n", created.ID, created.Name)
	return nil
}

func (s *shell) generate(ctx context.Context, description string) error {
	current := s.app.Projects.Current()
	if current == nil {
		return app.ErrNoProject
	}
	if description == "" {
		description = current.Description
	}

	s.printf("generating scope for %s...\n", current.Name)
	generated, err := s.app.GenerateScope(ctx, scoping.GenerateInput{
		ProjectDescription:     description,
		Industry:               current.Industry,
		ProjectType:            current.ProjectType,
		TechStack:              current.TechStack,
		Complexity:             string(current.Complexity),
		ComplianceRequirements: current.ComplianceRequirements,
	})
	if errors.Is(err, scoping.ErrSuperseded) {
		s.printf("generation superseded\n")
		return nil
	}
	if err != nil {
		return err
	}
	s.printScope(generated)
	return nil
}

func (s *shell) preview() error {
	preview := s.app.PreviewScope()
	if preview == nil {
		return fmt.Errorf("no scope to preview")
	}
	s.printScope(preview)
	return nil
}

func (s *shell) export(ctx context.Context, format string) error {
	artifact, err := s.app.Export(ctx, export.Format(format))
	if errors.Is(err, export.ErrUnsupportedFormat) {
		return fmt.Errorf("format must be one of excel, pdf, json, project, jira, devops")
	}
	if err != nil {
		return err
	}
	path, err := artifact.WriteFile(s.exportDir)
	if err != nil {
		return err
	}
	s.printf("saved %s\n", path)
	return nil
}

func (s *shell) chat(ctx context.Context, message string) error {
	if s.app.Chat.State() == chat.StateClosed {
		s.app.Chat.Open(ctx)
	}
	if message == "" {
		for _, msg := range s.app.Chat.Transcript() {
			s.printf("[%s] %s\n", msg.Role, msg.Text)
		}
		return nil
	}
	reply, err := s.app.Chat.Send(ctx, message)
	if err != nil {
		return err
	}
	if reply != nil {
		s.printf("assistant: %s\n", reply.Text)
	}
	return nil
}

func (s *shell) printScope(sc *scope.Scope) {
	for _, phase := range sc.Phases {
		s.printf("%s\n", phase.Name)
		for _, activity := range phase.Activities {
			s.printf("  - %s (%.0fh)\n", activity.Name, activity.EffortHours)
		}
	}
	if sc.Timeline.TotalWeeks > 0 {
		s.printf("timeline: %.0f weeks\n", sc.Timeline.TotalWeeks)
	}
	if sc.CostEstimate.TotalCost > 0 {
		s.printf("estimated cost: %.2f\n", sc.CostEstimate.TotalCost)
	}
}

func (s *shell) printHelp() {
	s.printf(`commands:
  login <email> <password>
  register <email> <password> [full name]
  logout
  projects
  create <name> | <industry> | <project type> | <description>
  select <project-id>
  generate [description]
  preview
  export <excel|pdf|json|project|jira|devops>
  chat [message]
  suggestions
  tab <scope-library|scoping-workbench|exports|activity-files|integrations|settings>
  quit
`)
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
