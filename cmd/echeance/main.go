package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/echeance/internal/cli"
	"github.com/alexanderramin/echeance/internal/config"
	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/generation"
	"github.com/alexanderramin/echeance/internal/repository"
	"github.com/alexanderramin/echeance/internal/rules"
	"github.com/alexanderramin/echeance/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("ECHEANCE_CONFIG"))
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	// Plain output when piped or when NO_COLOR is set.
	if os.Getenv("NO_COLOR") != "" || !(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	clientRepo := repository.NewSQLiteClientRepo(database)
	ruleRepo := repository.NewSQLiteRuleRepo(database)
	runRepo := repository.NewSQLiteRunRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	observer := service.NewLogUseCaseObserver(cfg.UseCaseLogger(os.Stderr))

	generator := generation.New(
		generation.WithMatchOptions(rules.MatchOptions{CaseInsensitive: cfg.CaseInsensitiveMatch}),
		generation.WithLogger(logger),
	)

	app := &cli.App{
		Obligations: service.NewObligationService(runRepo, taskRepo, uow, generator, observer),
		Rules:       service.NewRuleService(ruleRepo, uow, observer),
		Clients:     service.NewClientService(clientRepo, uow, observer),
		RulesDir:    cfg.RulesDir,
	}

	return cli.NewRootCmd(app).Execute()
}
