package recipe

// Settings are the build-context axes supplied by the driving process
// before any stage runs. The recipe reads them but never writes them.
type Settings struct {
	OS              string `yaml:"os"`
	Arch            string `yaml:"arch"`
	Compiler        string `yaml:"compiler"`
	CompilerVersion string `yaml:"compiler_version"`
	Cppstd          string `yaml:"cppstd"`
	BuildType       string `yaml:"build_type"`
}

// IsWindows reports whether the target operating system is
// Windows-family, where the static/PIC distinction does not exist.
func (s *Settings) IsWindows() bool {
	return s.OS == "Windows"
}
