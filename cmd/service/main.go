package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"anvil-esign/internal/service"
	"anvil-esign/internal/version"
)

type CLI struct {
	Run       RunCmd       `cmd:"" default:"1" help:"Run the service (console mode unless started by the service manager)."`
	Install   InstallCmd   `cmd:"" help:"Install and start the Windows service."`
	Uninstall UninstallCmd `cmd:"" help:"Stop and uninstall the Windows service."`
	Start     StartCmd     `cmd:"" help:"Start the service."`
	Stop      StopCmd      `cmd:"" help:"Stop the service."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

type RunCmd struct {
	Debug bool `help:"Run in debug/console mode with the service event log." short:"d"`
}

func (c *RunCmd) Run() error {
	isService, err := service.IsWindowsService()
	if err != nil {
		log.Printf("Warning: could not determine if running as service: %v", err)
	}

	app := service.NewApplication()

	switch {
	case isService:
		return service.RunService(false, app)
	case c.Debug:
		return service.RunService(true, app)
	default:
		fmt.Println("Anvil E-Sign Service")
		fmt.Printf("Version: %s\n", version.Version)
		fmt.Println("Running in console mode. Press Ctrl+C to stop.")
		fmt.Println()
		return app.Run()
	}
}

type InstallCmd struct{}

func (c *InstallCmd) Run(exePath string) error {
	if err := service.InstallService(exePath); err != nil {
		return fmt.Errorf("failed to install service: %w", err)
	}
	fmt.Println("Service installed successfully")

	// Start the service after installation
	if err := service.StartService(); err != nil {
		log.Printf("Warning: Failed to start service: %v", err)
		fmt.Println("You may need to start the service manually")
		return nil
	}
	fmt.Println("Service started")
	return nil
}

type UninstallCmd struct{}

func (c *UninstallCmd) Run() error {
	// Try to stop service first
	_ = service.StopService()

	if err := service.UninstallService(); err != nil {
		return fmt.Errorf("failed to uninstall service: %w", err)
	}
	fmt.Println("Service uninstalled successfully")
	return nil
}

type StartCmd struct{}

func (c *StartCmd) Run() error {
	if err := service.StartService(); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	fmt.Println("Service started")
	return nil
}

type StopCmd struct{}

func (c *StopCmd) Run() error {
	if err := service.StopService(); err != nil {
		return fmt.Errorf("failed to stop service: %w", err)
	}
	fmt.Println("Service stopped")
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("Anvil E-Sign Service")
	fmt.Printf("Version: %s\n", version.Version)
	return nil
}

func main() {
	exePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}

	// Change to executable directory for config loading
	if err := os.Chdir(filepath.Dir(exePath)); err != nil {
		log.Printf("Warning: could not change to executable directory: %v", err)
	}

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("anvil-esign-service"),
		kong.Description("Anvil E-Sign service manager."),
		kong.UsageOnError(),
	)
	err = ctx.Run(exePath)
	ctx.FatalIfErrorf(err)
}
