//go:build !windows
// +build !windows

package service

// Outside Windows the service manager commands are no-ops and the
// application runs in the foreground.

func RunService(isDebug bool, app *Application) error {
	return app.Run()
}

func InstallService(exePath string) error {
	return nil
}

func UninstallService() error {
	return nil
}

func StartService() error {
	return nil
}

func StopService() error {
	return nil
}

func IsWindowsService() (bool, error) {
	return false, nil
}
