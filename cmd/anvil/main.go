package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/repository"
	"anvil-esign/internal/infrastructure/database"
	"anvil-esign/internal/infrastructure/httpclient"
	"anvil-esign/internal/infrastructure/logger"
	infrarepo "anvil-esign/internal/infrastructure/repository"
	"anvil-esign/internal/usecase"
	"anvil-esign/internal/version"
)

type CLI struct {
	Config string `help:"Path to config.yaml. Defaults to ./config.yaml or ./config/config.yaml." type:"path"`
	Debug  bool   `help:"Log requests and responses." short:"d"`

	CurrentUser       CurrentUserCmd       `cmd:"" help:"Show details about your API user."`
	Cast              CastCmd              `cmd:"" help:"Fetch a cast by eid, or list casts."`
	Weld              WeldCmd              `cmd:"" help:"List welds."`
	FillPDF           FillPDFCmd           `cmd:"" name:"fill-pdf" help:"Fill a PDF template with each row of a CSV file."`
	GeneratePDF       GeneratePDFCmd       `cmd:"" name:"generate-pdf" help:"Generate a PDF from a payload file."`
	CreateEtch        CreateEtchCmd        `cmd:"" help:"Create an etch packet from a payload file."`
	GenerateEtchURL   GenerateEtchURLCmd   `cmd:"" name:"generate-etch-url" help:"Generate a signing URL for an embedded signer."`
	DownloadDocuments DownloadDocumentsCmd `cmd:"" help:"Download the documents of a document group."`
	GQLQuery          GQLQueryCmd          `cmd:"" name:"gql-query" help:"Run a raw GraphQL query."`
	Version           VersionCmd           `cmd:"" help:"Print version information."`
}

// env carries what the commands need, built once after parsing.
type env struct {
	ctx    context.Context
	logger *zap.Logger
	repo   repository.AnvilRepository
	anvil  usecase.AnvilUsecase
	pdf    usecase.PDFUsecase
	close  func()
}

func newEnv(cli *CLI) (*env, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Anvil.APIKey == "" {
		return nil, fmt.Errorf("ANVIL_API_KEY must be defined in your environment variables or config")
	}
	if cli.Debug {
		cfg.Logging.Level = "debug"
	} else if cfg.Logging.Level == "" || cfg.Logging.Level == "info" {
		cfg.Logging.Level = "warn"
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	e := &env{
		ctx:    context.Background(),
		logger: log,
		close:  func() { _ = log.Sync() },
	}

	var saver httpclient.APILogSaver
	if cfg.Database.Enabled {
		db, err := database.Open(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		saver = infrarepo.NewAPILogRepository(db, log)
		e.close = func() {
			_ = db.Close()
			_ = log.Sync()
		}
	}

	client := httpclient.NewHTTPClient(cfg, saver, log)
	e.repo = infrarepo.NewAnvilRepository(cfg, client, log)
	e.anvil = usecase.NewAnvilUsecase(e.repo, log)
	e.pdf = usecase.NewPDFUsecase(e.repo, log)
	return e, nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(version.Version)
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("anvil"),
		kong.Description("Command line client for the Anvil API."),
		kong.UsageOnError(),
	)

	if ctx.Command() == "version" {
		ctx.FatalIfErrorf(ctx.Run())
		return
	}

	e, err := newEnv(cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = ctx.Run(e)
	e.close()
	ctx.FatalIfErrorf(err)
}
