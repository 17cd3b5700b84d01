package launcher

import "fiber-launcher/config"

const (
	DevelopmentExecutable = "./my-fiber-app.exe"
	ProductionExecutable  = "./my-fiber-app"
)

// SelectExecutable returns the fixed binary path for mode.
func SelectExecutable(mode config.Mode) string {
	if mode == config.Development {
		return DevelopmentExecutable
	}
	return ProductionExecutable
}
