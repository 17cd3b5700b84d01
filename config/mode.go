package config

// ModeVariable selects the deployment mode.
const ModeVariable = "NODE_ENV"

type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
)

// ModeFromEnviron reports Development only for an exact "development" value.
func ModeFromEnviron(environ map[string]string) Mode {
	if environ[ModeVariable] == string(Development) {
		return Development
	}
	return Production
}

func (m Mode) String() string {
	return string(m)
}
