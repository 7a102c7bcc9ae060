package app

// Config holds everything an App instance needs to run one job.
type Config struct {
	// ScenePath points at a .hcl scene file or a directory of them. It may
	// be empty when an archive is being restored instead.
	ScenePath string `yaml:"scene"`

	// SavePath, when set, serializes the tree to this file after the scene
	// directives run.
	SavePath string `yaml:"save"`

	// LoadPath, when set, restores the tree from this archive before any
	// scene directives run.
	LoadPath string `yaml:"load"`

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`

	// Workers is the render pool size; zero means one worker per CPU. It
	// is injected into render directives that do not set their own.
	Workers int `yaml:"workers"`
}
